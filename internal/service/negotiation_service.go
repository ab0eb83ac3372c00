package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-promptscope-be/internal/dto"
	"ai-promptscope-be/internal/entity"
	"ai-promptscope-be/internal/pkg/logger"
	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/internal/repository/specification"
	"ai-promptscope-be/pkg/events"
	"ai-promptscope-be/pkg/facet"
	"ai-promptscope-be/pkg/facet/discovery"
	"ai-promptscope-be/pkg/facet/ranker"
	"ai-promptscope-be/pkg/llm"
	"ai-promptscope-be/pkg/negotiation"
	"ai-promptscope-be/pkg/prompt"
	"ai-promptscope-be/pkg/trace"

	"github.com/google/uuid"
)

type INegotiationService interface {
	Discover(ctx context.Context, req *dto.DiscoverRequest) (*dto.DiscoverResponse, error)
	Refine(ctx context.Context, req *dto.RefineRequest) (*dto.RefineResponse, error)
	Answer(ctx context.Context, req *dto.AnswerRequest) (*dto.AnswerResponse, error)
	Trace(ctx context.Context, requestId string) (*dto.TraceResponse, error)
}

type NegotiationServiceConfig struct {
	Model             string
	MaxFacetsPerRound int
	MaxRefineRounds   int
	GenerationTimeout time.Duration
}

type negotiationService struct {
	requestRepo      contract.NegotiationRequestRepository
	sessionRepo      contract.SessionRepository
	engine           *discovery.Engine
	compiler         *prompt.Compiler
	provider         llm.LLMProvider
	ledger           *trace.Ledger
	locks            *negotiation.LockRegistry
	publisherService IPublisherService
	logger           logger.ILogger
	cfg              NegotiationServiceConfig
}

func NewNegotiationService(
	requestRepo contract.NegotiationRequestRepository,
	sessionRepo contract.SessionRepository,
	engine *discovery.Engine,
	compiler *prompt.Compiler,
	provider llm.LLMProvider,
	ledger *trace.Ledger,
	publisherService IPublisherService,
	log logger.ILogger,
	cfg NegotiationServiceConfig,
) INegotiationService {
	return &negotiationService{
		requestRepo:      requestRepo,
		sessionRepo:      sessionRepo,
		engine:           engine,
		compiler:         compiler,
		provider:         provider,
		ledger:           ledger,
		locks:            negotiation.NewLockRegistry(),
		publisherService: publisherService,
		logger:           log,
		cfg:              cfg,
	}
}

// Discover opens a negotiation: it proposes ranked facets for the raw
// query and returns them with the proceed defaults. A model failure is
// absorbed by the fallback facet set, never surfaced to the requester.
func (s *negotiationService) Discover(ctx context.Context, req *dto.DiscoverRequest) (*dto.DiscoverResponse, error) {
	requestId := uuid.New()
	now := time.Now()

	domainLabel := strings.TrimSpace(req.DomainHint)
	if domainLabel == "" {
		domainLabel = "general"
	}

	record := entity.NegotiationRequest{
		Id:          requestId,
		RawQuery:    req.RawQuery,
		DomainHint:  req.DomainHint,
		DomainLabel: domainLabel,
		Status:      string(negotiation.StatusDiscovering),
		CreatedAt:   now,
	}
	if err := s.requestRepo.Create(ctx, &record); err != nil {
		return nil, err
	}

	s.ledger.Append(ctx, requestId.String(), trace.KindDomainDetected, map[string]interface{}{
		"domain_label": domainLabel,
		"from_hint":    strings.TrimSpace(req.DomainHint) != "",
	})

	session := negotiation.NewSession(requestId.String(), req.RawQuery, req.DomainHint, now)

	candidates, err := s.engine.Discover(ctx, discovery.Params{
		RawQuery:   req.RawQuery,
		DomainHint: req.DomainHint,
		Round:      1,
		MaxFacets:  s.cfg.MaxFacetsPerRound,
	})
	if err != nil {
		s.logger.Warn("NegotiationService", "Discovery failed, using fallback facets", map[string]interface{}{
			"request_id": requestId,
			"error":      err.Error(),
		})
		candidates = discovery.Fallback(nil, s.cfg.MaxFacetsPerRound)
		s.ledger.Append(ctx, requestId.String(), trace.KindDiscoveryFallback, map[string]interface{}{
			"error":     err.Error(),
			"facet_ids": facetIds(candidates),
		})
	} else {
		s.ledger.Append(ctx, requestId.String(), trace.KindFacetsDiscovered, map[string]interface{}{
			"facet_ids": facetIds(candidates),
		})
	}

	ranked := ranker.Rank(candidates, nil, s.cfg.MaxFacetsPerRound)
	s.ledger.Append(ctx, requestId.String(), trace.KindFacetsRanked, map[string]interface{}{
		"facet_ids": facetIds(ranked),
	})

	session.RegisterIssued(ranked)
	if err := session.Transition(negotiation.StatusRefining); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeNegotiationStarted, requestId.String(), map[string]interface{}{
		"domain_label": domainLabel,
		"facet_count":  len(ranked),
	})

	return &dto.DiscoverResponse{
		RequestId:       requestId.String(),
		DomainLabel:     domainLabel,
		Round:           1,
		Facets:          toFacetDTOs(ranked),
		WhyTheseFacets:  whyTheseFacets(ranked),
		ProceedDefaults: toControlsDTO(negotiation.DefaultControls()),
	}, nil
}

// Refine folds a round of selections into the session and proposes the
// next round of facets conditioned on them. The stored session only
// changes when the whole round succeeds.
func (s *negotiationService) Refine(ctx context.Context, req *dto.RefineRequest) (*dto.RefineResponse, error) {
	release := s.locks.Acquire(req.RequestId)
	defer release()

	session, err := s.loadSession(ctx, req.RequestId)
	if err != nil {
		return nil, err
	}

	// Mutate a clone; commit only after every fallible step succeeded.
	work := session.Clone()

	if work.Status != negotiation.StatusRefining {
		return nil, fmt.Errorf("%w: cannot refine a session in state %q", negotiation.ErrInvalidSessionState, work.Status)
	}
	// A mismatched refine_round means the client is answering a screen
	// the session has already moved past.
	if req.RefineRound != 0 && req.RefineRound != work.Round {
		return nil, fmt.Errorf("%w: refine_round %d does not match current round %d",
			negotiation.ErrInvalidSessionState, req.RefineRound, work.Round)
	}
	if work.Round-1 >= s.cfg.MaxRefineRounds {
		return nil, fmt.Errorf("%w: %d rounds completed", negotiation.ErrRefinementLimit, work.Round-1)
	}

	selections := toFacetSelections(req.Selections)
	if err := negotiation.Merge(work, selections); err != nil {
		return nil, err
	}
	s.ledger.Append(ctx, req.RequestId, trace.KindSelectionsMerged, map[string]interface{}{
		"round":      work.Round,
		"selections": selectionData(selections),
	})

	work.Round++
	resolved := work.ResolvedFacetIds()

	candidates, err := s.engine.Discover(ctx, discovery.Params{
		RawQuery:   work.RawQuery,
		DomainHint: work.DomainHint,
		Round:      work.Round,
		Selections: work.Selections,
		ExcludeIds: resolved,
		MaxFacets:  s.cfg.MaxFacetsPerRound,
	})
	if err != nil {
		s.logger.Warn("NegotiationService", "Refinement discovery failed, using fallback facets", map[string]interface{}{
			"request_id": req.RequestId,
			"round":      work.Round,
			"error":      err.Error(),
		})
		candidates = discovery.Fallback(issuedIds(work), s.cfg.MaxFacetsPerRound)
		s.ledger.Append(ctx, req.RequestId, trace.KindDiscoveryFallback, map[string]interface{}{
			"round":     work.Round,
			"error":     err.Error(),
			"facet_ids": facetIds(candidates),
		})
	} else {
		s.ledger.Append(ctx, req.RequestId, trace.KindFacetsDiscovered, map[string]interface{}{
			"round":     work.Round,
			"facet_ids": facetIds(candidates),
		})
	}

	ranked := ranker.Rank(candidates, resolved, s.cfg.MaxFacetsPerRound)
	s.ledger.Append(ctx, req.RequestId, trace.KindFacetsRanked, map[string]interface{}{
		"round":     work.Round,
		"facet_ids": facetIds(ranked),
	})

	work.RegisterIssued(ranked)
	if err := work.Transition(negotiation.StatusRefining); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, work); err != nil {
		return nil, err
	}
	s.updateRequestStatus(ctx, req.RequestId, negotiation.StatusRefining)

	s.publishEvent(ctx, events.TypeNegotiationRefined, req.RequestId, map[string]interface{}{
		"round":       work.Round,
		"facet_count": len(ranked),
	})

	return &dto.RefineResponse{
		RequestId:      req.RequestId,
		Round:          work.Round,
		Facets:         toFacetDTOs(ranked),
		WhyTheseFacets: whyTheseFacets(ranked),
	}, nil
}

// Answer folds in any final selections, compiles the prompt
// deterministically, and invokes generation under the configured
// timeout. A failed or timed-out generation leaves the stored session
// exactly as it was before the call, so the requester can retry.
func (s *negotiationService) Answer(ctx context.Context, req *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	release := s.locks.Acquire(req.RequestId)
	defer release()

	session, err := s.loadSession(ctx, req.RequestId)
	if err != nil {
		return nil, err
	}

	work := session.Clone()

	if len(req.Selections) > 0 {
		selections := toFacetSelections(req.Selections)
		if err := negotiation.Merge(work, selections); err != nil {
			return nil, err
		}
		s.ledger.Append(ctx, req.RequestId, trace.KindSelectionsMerged, map[string]interface{}{
			"round":      work.Round,
			"selections": selectionData(selections),
		})
	}

	if err := work.Transition(negotiation.StatusCompiling); err != nil {
		return nil, err
	}

	overrides := strings.Join(req.UserOverrides, "\n")
	genReq, err := s.compiler.Compile(work, overrides)
	if err != nil {
		s.ledger.Append(ctx, req.RequestId, trace.KindCompileFailed, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	compiled := genReq.Render()
	s.ledger.Append(ctx, req.RequestId, trace.KindPromptCompiled, map[string]interface{}{
		"sections":   genReq.Sections,
		"audience":   genReq.Audience,
		"format":     genReq.Format,
		"length":     genReq.Length,
		"char_count": len(compiled),
	})

	s.ledger.Append(ctx, req.RequestId, trace.KindGenerationInvoked, map[string]interface{}{
		"model":           s.cfg.Model,
		"timeout_seconds": int(s.cfg.GenerationTimeout.Seconds()),
	})

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	answer, err := s.provider.Generate(genCtx, compiled, llm.WithModel(s.cfg.Model))
	if err != nil {
		s.ledger.Append(ctx, req.RequestId, trace.KindGenerationFailed, map[string]interface{}{
			"error": err.Error(),
		})
		s.publishEvent(ctx, events.TypeNegotiationFailed, req.RequestId, map[string]interface{}{
			"error": err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", negotiation.ErrGenerationTimeout, s.cfg.GenerationTimeout)
		}
		return nil, fmt.Errorf("%w: %v", negotiation.ErrGenerationFailure, err)
	}

	s.ledger.Append(ctx, req.RequestId, trace.KindGenerationCompleted, map[string]interface{}{
		"answer_preview": preview(answer, 200),
		"char_count":     len(answer),
	})

	if err := work.Transition(negotiation.StatusAnswered); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, work); err != nil {
		return nil, err
	}
	s.updateRequestStatus(ctx, req.RequestId, negotiation.StatusAnswered)

	s.publishEvent(ctx, events.TypeNegotiationAnswered, req.RequestId, map[string]interface{}{
		"answer_chars": len(answer),
	})

	// The answer carries its own decision record, gap markers included.
	traceEvents, err := s.ledger.Events(ctx, req.RequestId)
	if err != nil {
		s.logger.Warn("NegotiationService", "Trace read-back failed, returning partial trace", map[string]interface{}{
			"request_id": req.RequestId,
			"error":      err.Error(),
		})
	}

	return &dto.AnswerResponse{
		RequestId:      req.RequestId,
		Answer:         answer,
		CompiledPrompt: compiled,
		Controls:       toControlsDTO(work.Controls),
		Trace:          toTraceEventDTOs(traceEvents),
	}, nil
}

// Trace returns the full decision record for a request in append order.
// Readable for as long as the durable request row exists, which outlives
// the session itself.
func (s *negotiationService) Trace(ctx context.Context, requestId string) (*dto.TraceResponse, error) {
	id, err := uuid.Parse(requestId)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid request id", negotiation.ErrSessionNotFound, requestId)
	}

	record, err := s.requestRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", negotiation.ErrSessionNotFound, requestId)
	}

	traceEvents, err := s.ledger.Events(ctx, requestId)
	if err != nil && len(traceEvents) == 0 {
		return nil, err
	}

	return &dto.TraceResponse{
		RequestId: requestId,
		Events:    toTraceEventDTOs(traceEvents),
	}, nil
}

func (s *negotiationService) loadSession(ctx context.Context, requestId string) (*negotiation.Session, error) {
	session, err := s.sessionRepo.Get(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", negotiation.ErrSessionNotFound, requestId)
	}
	return session, nil
}

// updateRequestStatus keeps the durable row in sync with the session.
// Best-effort: the row anchors reporting, the session is authoritative.
func (s *negotiationService) updateRequestStatus(ctx context.Context, requestId string, status negotiation.Status) {
	id, err := uuid.Parse(requestId)
	if err != nil {
		return
	}
	record, err := s.requestRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil || record == nil {
		return
	}
	now := time.Now()
	record.Status = string(status)
	record.UpdatedAt = &now
	if err := s.requestRepo.Update(ctx, record); err != nil {
		s.logger.Warn("NegotiationService", "Failed to update request status", map[string]interface{}{
			"request_id": requestId,
			"status":     status,
			"error":      err.Error(),
		})
	}
}

func (s *negotiationService) publishEvent(ctx context.Context, eventType, requestId string, data map[string]interface{}) {
	msg := dto.PublishNegotiationEventMessage{
		Type:       eventType,
		RequestId:  requestId,
		Data:       data,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	// Events are auxiliary; a bus failure never fails the request.
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("NegotiationService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func toFacetSelections(in []dto.Selection) []facet.Selection {
	out := make([]facet.Selection, len(in))
	for i, sel := range in {
		out[i] = facet.Selection{FacetId: sel.FacetId, Value: sel.Value}
	}
	return out
}

func toFacetDTOs(candidates []facet.Candidate) []dto.FacetCandidate {
	out := make([]dto.FacetCandidate, len(candidates))
	for i, c := range candidates {
		choices := make([]dto.Choice, len(c.Choices))
		for j, choice := range c.Choices {
			subs := make([]string, len(choice.Subchoices))
			for k, sub := range choice.Subchoices {
				subs[k] = sub.Value
			}
			choices[j] = dto.Choice{Value: choice.Value, Subchoices: subs}
		}
		out[i] = dto.FacetCandidate{
			Id:           c.Id,
			Title:        c.Title,
			Question:     c.Question,
			Reason:       c.Reason,
			SingleSelect: c.SingleSelect,
			Choices:      choices,
		}
	}
	return out
}

func toTraceEventDTOs(traceEvents []*trace.Event) []dto.TraceEventResponse {
	out := make([]dto.TraceEventResponse, len(traceEvents))
	for i, e := range traceEvents {
		out[i] = dto.TraceEventResponse{
			Seq:       e.Seq,
			Kind:      e.Kind,
			Timestamp: e.Timestamp,
			Data:      e.Data,
		}
	}
	return out
}

func toControlsDTO(controls negotiation.OutputControls) dto.OutputControls {
	return dto.OutputControls{
		Audience: controls.Audience,
		Format:   controls.Format,
		Length:   controls.Length,
	}
}

func facetIds(candidates []facet.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Id
	}
	return ids
}

func issuedIds(s *negotiation.Session) map[string]bool {
	ids := make(map[string]bool, len(s.Issued))
	for id := range s.Issued {
		ids[id] = true
	}
	return ids
}

func selectionData(selections []facet.Selection) []map[string]string {
	out := make([]map[string]string, len(selections))
	for i, sel := range selections {
		out[i] = map[string]string{"facet_id": sel.FacetId, "value": sel.Value}
	}
	return out
}

func whyTheseFacets(candidates []facet.Candidate) string {
	if len(candidates) == 0 {
		return ""
	}
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	return fmt.Sprintf("Each facet is an independent axis of ambiguity in your query; answering them narrows the response. Proposed axes: %s.",
		strings.Join(titles, ", "))
}

func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
