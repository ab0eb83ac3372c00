package dto

import "time"

// --- Discover ---

type DiscoverRequest struct {
	RawQuery   string `json:"raw_query" validate:"required"`
	DomainHint string `json:"domain_hint"`
}

type DiscoverResponse struct {
	RequestId       string           `json:"request_id"`
	DomainLabel     string           `json:"domain_label,omitempty"`
	Round           int              `json:"round"`
	Facets          []FacetCandidate `json:"facets"`
	WhyTheseFacets  string           `json:"why_these_facets,omitempty"`
	ProceedDefaults OutputControls   `json:"proceed_defaults"`
}

// --- Refine ---

type RefineRequest struct {
	RequestId string `json:"request_id" validate:"required,uuid"`
	// RefineRound is the round whose facets these selections answer.
	// When set it must match the session's current round; a mismatch
	// means the client is replaying a stale screen. Zero skips the
	// check.
	RefineRound int         `json:"refine_round" validate:"omitempty,min=1"`
	Selections  []Selection `json:"selections" validate:"required,min=1,dive"`
}

type RefineResponse struct {
	RequestId      string           `json:"request_id"`
	Round          int              `json:"round"`
	Facets         []FacetCandidate `json:"facets"`
	WhyTheseFacets string           `json:"why_these_facets,omitempty"`
}

// --- Answer ---

type AnswerRequest struct {
	RequestId string `json:"request_id" validate:"required,uuid"`
	// Selections from the final screen, folded in before compiling.
	Selections []Selection `json:"selections" validate:"omitempty,dive"`
	// UserOverrides are free-text instructions appended to the compiled
	// prompt's instruction section.
	UserOverrides []string `json:"user_overrides" validate:"omitempty,max=8,dive,max=500"`
}

type AnswerResponse struct {
	RequestId      string         `json:"request_id"`
	Answer         string         `json:"answer"`
	CompiledPrompt string         `json:"compiled_prompt"`
	Controls       OutputControls `json:"controls"`
	// Trace is the full decision record for the negotiation, gap
	// markers included, so the requester can audit the answer without a
	// second call.
	Trace []TraceEventResponse `json:"trace"`
}

// --- Trace ---

type TraceEventResponse struct {
	Seq       int64                  `json:"seq"`
	Kind      string                 `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

type TraceResponse struct {
	RequestId string               `json:"request_id"`
	Events    []TraceEventResponse `json:"events"`
}

// --- Shared shapes ---

type Selection struct {
	FacetId string `json:"facet_id" validate:"required"`
	Value   string `json:"value" validate:"required"`
}

type FacetCandidate struct {
	Id           string   `json:"id"`
	Title        string   `json:"title"`
	Question     string   `json:"question"`
	Reason       string   `json:"reason,omitempty"`
	SingleSelect bool     `json:"single_select"`
	Choices      []Choice `json:"choices"`
}

type Choice struct {
	Value      string   `json:"value"`
	Subchoices []string `json:"subchoices,omitempty"`
}

type OutputControls struct {
	Audience string `json:"audience"`
	Format   string `json:"format"`
	Length   string `json:"length"`
}
