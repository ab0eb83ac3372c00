package negotiation

import (
	"errors"
	"testing"
	"time"

	"ai-promptscope-be/pkg/facet"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"discover to refine", StatusDiscovering, StatusRefining, true},
		{"refine again", StatusRefining, StatusRefining, true},
		{"refine to compile", StatusRefining, StatusCompiling, true},
		{"compile to answered", StatusCompiling, StatusAnswered, true},
		{"compile back to refine", StatusCompiling, StatusRefining, true},
		{"discover straight to compile", StatusDiscovering, StatusCompiling, false},
		{"answered is terminal", StatusAnswered, StatusRefining, false},
		{"failed is terminal", StatusFailed, StatusRefining, false},
		{"expired is terminal", StatusExpired, StatusRefining, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("req", "q", "", time.Now())
			s.Status = tt.from

			err := s.Transition(tt.to)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.Status != tt.to {
					t.Fatalf("status = %q, want %q", s.Status, tt.to)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSessionState) {
				t.Fatalf("err = %v, want ErrInvalidSessionState", err)
			}
			if s.Status != tt.from {
				t.Fatalf("status changed on rejected transition: %q", s.Status)
			}
		})
	}
}

func TestRegisterIssuedKeepsOriginalShape(t *testing.T) {
	s := NewSession("req", "q", "", time.Now())
	s.RegisterIssued([]facet.Candidate{{Id: "depth", SingleSelect: true}})

	s.Round = 2
	s.RegisterIssued([]facet.Candidate{{Id: "depth", SingleSelect: false}})

	issued := s.Issued["depth"]
	if !issued.SingleSelect || issued.Round != 1 {
		t.Fatalf("issued = %+v, want original round-1 single-select shape", issued)
	}
}

func TestResolvedFacetIds(t *testing.T) {
	s := NewSession("req", "q", "", time.Now())
	s.Issued["depth"] = IssuedFacet{SingleSelect: true, Round: 1}
	s.Issued["topic_focus"] = IssuedFacet{Round: 1}
	s.Issued["time_period"] = IssuedFacet{Round: 1}
	s.Selections = []facet.Selection{
		{FacetId: "depth", Value: "overview"},         // single-select with a value: resolved
		{FacetId: "topic_focus", Value: "politics"},   // multi-select: still open
		{FacetId: "time_period", Value: facet.AllOptions}, // all options: resolved
	}

	resolved := s.ResolvedFacetIds()
	if !resolved["depth"] || !resolved["time_period"] {
		t.Fatalf("resolved = %v, want depth and time_period", resolved)
	}
	if resolved["topic_focus"] {
		t.Fatalf("multi-select with concrete values must stay open: %v", resolved)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSession("req", "q", "", time.Now())
	s.Issued["depth"] = IssuedFacet{SingleSelect: true}
	s.Selections = []facet.Selection{{FacetId: "depth", Value: "overview"}}

	dup := s.Clone()
	dup.Selections[0].Value = "detailed"
	dup.Issued["new"] = IssuedFacet{}
	dup.Status = StatusAnswered

	if s.Selections[0].Value != "overview" {
		t.Errorf("clone mutation leaked into selections")
	}
	if _, ok := s.Issued["new"]; ok {
		t.Errorf("clone mutation leaked into issued map")
	}
	if s.Status != StatusDiscovering {
		t.Errorf("clone mutation leaked into status")
	}
}
