package negotiation

import (
	"fmt"
	"time"

	"ai-promptscope-be/pkg/facet"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusDiscovering Status = "discovering"
	StatusRefining    Status = "refining"
	StatusCompiling   Status = "compiling"
	StatusAnswered    Status = "answered"
	StatusFailed      Status = "failed"
	StatusExpired     Status = "expired"
)

// allowedTransitions is the explicit transition table. Anything not
// listed is rejected with ErrInvalidSessionState.
var allowedTransitions = map[Status][]Status{
	StatusDiscovering: {StatusRefining, StatusFailed},
	StatusRefining:    {StatusRefining, StatusCompiling, StatusFailed},
	StatusCompiling:   {StatusAnswered, StatusRefining, StatusFailed},
	StatusAnswered:    {},
	StatusFailed:      {},
	StatusExpired:     {},
}

// OutputControls are the three reserved single-select facets. Always
// populated, defaulting when the requester never selects them.
type OutputControls struct {
	Audience string `json:"audience"`
	Format   string `json:"format"`
	Length   string `json:"length"`
}

// DefaultControls returns the proceed defaults for a fresh session.
func DefaultControls() OutputControls {
	return OutputControls{
		Audience: facet.DefaultAudience,
		Format:   facet.DefaultFormat,
		Length:   facet.DefaultLength,
	}
}

// IssuedFacet records the shape of a facet issued to this session. Ids
// issued in one round keep their meaning for the session's lifetime.
type IssuedFacet struct {
	SingleSelect bool `json:"single_select"`
	Round        int  `json:"round"`
}

// Session is the accumulated state of one negotiation, keyed by request
// id. Mutated only through the negotiation service under the per-session
// lock. All fields serialize so session stores can round-trip it.
type Session struct {
	RequestId  string                 `json:"request_id"`
	RawQuery   string                 `json:"raw_query"`
	DomainHint string                 `json:"domain_hint"`
	Status     Status                 `json:"status"`
	Round      int                    `json:"round"`
	Selections []facet.Selection      `json:"selections"`
	Issued     map[string]IssuedFacet `json:"issued"`
	Controls   OutputControls         `json:"controls"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewSession creates a fresh session in the discovering state.
func NewSession(requestId, rawQuery, domainHint string, now time.Time) *Session {
	return &Session{
		RequestId:  requestId,
		RawQuery:   rawQuery,
		DomainHint: domainHint,
		Status:     StatusDiscovering,
		Round:      1,
		Controls:   DefaultControls(),
		Issued:     make(map[string]IssuedFacet),
		CreatedAt:  now,
	}
}

// Transition moves the session to the target status, rejecting anything
// the transition table does not allow.
func (s *Session) Transition(to Status) error {
	for _, allowed := range allowedTransitions[s.Status] {
		if allowed == to {
			s.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidSessionState, s.Status, to)
}

// RegisterIssued records the facets issued to the requester this round.
// An id issued earlier keeps its original shape.
func (s *Session) RegisterIssued(candidates []facet.Candidate) {
	for _, c := range candidates {
		if _, exists := s.Issued[c.Id]; exists {
			continue
		}
		s.Issued[c.Id] = IssuedFacet{SingleSelect: c.SingleSelect, Round: s.Round}
	}
}

// ResolvedFacetIds returns the ids that no longer narrow the answer
// space: single-select facets with a chosen value and facets resolved to
// "all options". Used to condition refinement discovery and ranking.
func (s *Session) ResolvedFacetIds() map[string]bool {
	resolved := make(map[string]bool)
	for _, sel := range s.Selections {
		if sel.Value == facet.AllOptions {
			resolved[sel.FacetId] = true
			continue
		}
		if issued, ok := s.Issued[sel.FacetId]; ok && issued.SingleSelect {
			resolved[sel.FacetId] = true
		}
	}
	return resolved
}

// Clone returns a deep copy. Operations mutate a clone and commit it to
// the store only after every fallible step succeeded, so a failed call
// leaves the stored session in its pre-call state.
func (s *Session) Clone() *Session {
	dup := *s
	dup.Selections = make([]facet.Selection, len(s.Selections))
	copy(dup.Selections, s.Selections)
	dup.Issued = make(map[string]IssuedFacet, len(s.Issued))
	for id, issued := range s.Issued {
		dup.Issued[id] = issued
	}
	return &dup
}
