package prompt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-promptscope-be/pkg/facet"
	"ai-promptscope-be/pkg/negotiation"
)

func sessionWith(selections ...facet.Selection) *negotiation.Session {
	s := negotiation.NewSession("req", "history of the safavid empire", "", time.Now())
	s.Selections = selections
	return s
}

func TestCompileDeterministic(t *testing.T) {
	s := sessionWith(
		facet.Selection{FacetId: "topic_focus", Value: "politics"},
		facet.Selection{FacetId: "time_period", Value: "origins"},
		facet.Selection{FacetId: "topic_focus", Value: "economy"},
	)
	c := NewCompiler(24)

	first, err := c.Compile(s, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Compile(s, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Render() != again.Render() {
			t.Fatalf("renders differ between identical compilations")
		}
	}
}

func TestCompileSectionOrder(t *testing.T) {
	c := NewCompiler(24)
	req, err := c.Compile(sessionWith(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Output Controls", "User Query", "Scope", "Instructions"}
	if len(req.Sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(req.Sections), len(want))
	}
	for i, title := range want {
		if req.Sections[i].Title != title {
			t.Errorf("section[%d] = %q, want %q", i, req.Sections[i].Title, title)
		}
	}
}

func TestCompileScopeGrouping(t *testing.T) {
	// Values of the same facet stay together at the facet's
	// first-appearance position, regardless of selection interleaving.
	s := sessionWith(
		facet.Selection{FacetId: "topic_focus", Value: "politics"},
		facet.Selection{FacetId: "time_period", Value: "origins"},
		facet.Selection{FacetId: "topic_focus", Value: "economy"},
	)
	req, err := NewCompiler(24).Compile(s, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scope := req.Sections[2].Content
	want := "- topic_focus: politics\n- topic_focus: economy\n- time_period: origins"
	if scope != want {
		t.Fatalf("scope =\n%s\nwant\n%s", scope, want)
	}
}

func TestCompileAllOptionsRendersExplicitly(t *testing.T) {
	s := sessionWith(facet.Selection{FacetId: "time_period", Value: facet.AllOptions})
	req, err := NewCompiler(24).Compile(s, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(req.Sections[2].Content, "- time_period: no restriction on this axis") {
		t.Fatalf("all-options selection must render as an explicit instruction, got %q", req.Sections[2].Content)
	}
}

func TestCompileEmptyScope(t *testing.T) {
	req, err := NewCompiler(24).Compile(sessionWith(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Sections[2].Content != "None" {
		t.Fatalf("scope = %q, want None", req.Sections[2].Content)
	}
}

func TestCompileControls(t *testing.T) {
	s := sessionWith()
	s.Controls = negotiation.OutputControls{Audience: "expert", Format: "bullet points", Length: "300 words"}

	req, err := NewCompiler(24).Compile(s, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Audience != "expert" || req.Format != "bullet points" || req.Length != "300 words" {
		t.Fatalf("controls not carried verbatim: %+v", req)
	}
	if !strings.Contains(req.Sections[0].Content, "audience: expert") {
		t.Fatalf("controls section = %q", req.Sections[0].Content)
	}
}

func TestCompileUserOverrides(t *testing.T) {
	req, err := NewCompiler(24).Compile(sessionWith(), "Cite primary sources.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	instructions := req.Sections[3].Content
	if !strings.HasSuffix(instructions, "Cite primary sources.") {
		t.Fatalf("overrides must append to instructions, got %q", instructions)
	}
}

func TestCompileTooLarge(t *testing.T) {
	var selections []facet.Selection
	for i := 0; i < 5; i++ {
		selections = append(selections, facet.Selection{
			FacetId: "topic_focus",
			Value:   fmt.Sprintf("value-%d", i),
		})
	}
	s := sessionWith(selections...)

	_, err := NewCompiler(4).Compile(s, "")
	if !errors.Is(err, negotiation.ErrPromptTooLarge) {
		t.Fatalf("err = %v, want ErrPromptTooLarge", err)
	}
}
