package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-promptscope-be/pkg/facet"
	"ai-promptscope-be/pkg/llm/mock"
)

const scripted = `{
	"facets": [
		{"id": "topic_focus", "title": "Topic Focus", "question": "Q?", "choices": [{"value": "a"}, {"value": "b"}]},
		{"id": "audience", "title": "Audience", "question": "Q?", "choices": [{"value": "expert"}]},
		{"id": "already_done", "title": "Done", "question": "Q?", "choices": [{"value": "x"}]}
	]
}`

func TestDiscoverValidatesParams(t *testing.T) {
	e := NewEngine(mock.New(scripted), "test-model")
	ctx := context.Background()

	if _, err := e.Discover(ctx, Params{RawQuery: "  ", Round: 1, MaxFacets: 6}); err == nil {
		t.Fatal("empty query must be rejected")
	}
	if _, err := e.Discover(ctx, Params{RawQuery: "q", Round: 0, MaxFacets: 6}); err == nil {
		t.Fatal("round 0 must be rejected")
	}
	if _, err := e.Discover(ctx, Params{RawQuery: "q", Round: 2, MaxFacets: 6}); err == nil {
		t.Fatal("refinement without selections must be rejected")
	}
}

func TestDiscoverFiltersReservedAndExcluded(t *testing.T) {
	e := NewEngine(mock.New(scripted), "test-model")

	got, err := e.Discover(context.Background(), Params{
		RawQuery:   "history of the safavid empire",
		Round:      1,
		ExcludeIds: map[string]bool{"already_done": true},
		MaxFacets:  6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 || got[0].Id != "topic_focus" {
		t.Fatalf("got %v, want only topic_focus (reserved and excluded ids filtered)", got)
	}
}

func TestDiscoverMalformedOutput(t *testing.T) {
	e := NewEngine(mock.New("not json at all"), "test-model")

	_, err := e.Discover(context.Background(), Params{RawQuery: "q", Round: 1, MaxFacets: 6})
	if !errors.Is(err, facet.ErrMalformedOutput) {
		t.Fatalf("err = %v, want ErrMalformedOutput", err)
	}
}

func TestDiscoverRefinePromptCarriesSelections(t *testing.T) {
	provider := mock.New(scripted)
	e := NewEngine(provider, "test-model")

	_, err := e.Discover(context.Background(), Params{
		RawQuery: "history of the safavid empire",
		Round:    2,
		Selections: []facet.Selection{
			{FacetId: "depth", Value: "overview"},
		},
		ExcludeIds: map[string]bool{"depth": true},
		MaxFacets:  6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := provider.Prompts[0]
	if !strings.Contains(sent, "<selected_facets>") {
		t.Fatalf("refine prompt missing selections block:\n%s", sent)
	}
	if !strings.Contains(sent, `"depth":["overview"]`) {
		t.Fatalf("refine prompt missing encoded selection:\n%s", sent)
	}
	if !strings.Contains(sent, "Never re-propose an already-selected facet id: depth") {
		t.Fatalf("refine prompt missing exclusion rule:\n%s", sent)
	}
}

func TestFallbackExcludesAndCaps(t *testing.T) {
	got := Fallback(map[string]bool{"topic_focus": true}, 2)
	if len(got) != 2 {
		t.Fatalf("got %d facets, want 2", len(got))
	}
	for _, c := range got {
		if c.Id == "topic_focus" {
			t.Fatalf("excluded id re-proposed: %v", got)
		}
		if !facet.HasAllOptions(c.Choices) {
			t.Errorf("fallback facet %s missing %q choice", c.Id, facet.AllOptions)
		}
	}
}
