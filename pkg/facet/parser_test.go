package facet

import (
	"errors"
	"testing"
)

func TestParseCandidates(t *testing.T) {
	valid := `{
		"facets": [
			{
				"id": "Topic Focus",
				"title": "Topic Focus",
				"question": "Which aspect should be emphasized?",
				"reason": "Query is broad",
				"choices": [
					{"value": "politics", "subchoices": ["court", "provinces"]},
					{"value": "economy", "subchoices": [{"value": "trade"}]}
				]
			},
			{
				"id": "depth",
				"title": "Depth",
				"question": "How deep should the answer go?",
				"single_select": true,
				"choices": [
					{"value": "overview"},
					{"value": "detailed"},
					{"value": "all options"}
				]
			}
		]
	}`

	tests := []struct {
		name      string
		raw       string
		maxFacets int
		wantIds   []string
		wantErr   bool
	}{
		{
			name:      "valid document",
			raw:       valid,
			maxFacets: 6,
			wantIds:   []string{"topic_focus", "depth"},
		},
		{
			name:      "json wrapped in prose",
			raw:       "Here are the facets:\n```json\n" + valid + "\n```\nHope this helps!",
			maxFacets: 6,
			wantIds:   []string{"topic_focus", "depth"},
		},
		{
			name:      "max facets caps output",
			raw:       valid,
			maxFacets: 1,
			wantIds:   []string{"topic_focus"},
		},
		{
			name:      "no json at all",
			raw:       "I could not generate facets for this query.",
			maxFacets: 6,
			wantErr:   true,
		},
		{
			name:      "empty facet list",
			raw:       `{"facets": []}`,
			maxFacets: 6,
			wantErr:   true,
		},
		{
			name:      "facet without question is dropped",
			raw:       `{"facets": [{"id": "x", "title": "X", "choices": [{"value": "a"}]}]}`,
			maxFacets: 6,
			wantErr:   true,
		},
		{
			name:      "facet without choices is dropped",
			raw:       `{"facets": [{"id": "x", "title": "X", "question": "Q?", "choices": []}]}`,
			maxFacets: 6,
			wantErr:   true,
		},
		{
			name: "duplicate ids keep first",
			raw: `{"facets": [
				{"id": "focus", "title": "Focus A", "question": "Q?", "choices": [{"value": "a"}]},
				{"id": "focus", "title": "Focus B", "question": "Q?", "choices": [{"value": "b"}]}
			]}`,
			maxFacets: 6,
			wantIds:   []string{"focus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCandidates(tt.raw, tt.maxFacets)

			if tt.wantErr {
				if !errors.Is(err, ErrMalformedOutput) {
					t.Fatalf("err = %v, want ErrMalformedOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.wantIds) {
				t.Fatalf("got %d candidates, want %d", len(got), len(tt.wantIds))
			}
			for i, id := range tt.wantIds {
				if got[i].Id != id {
					t.Errorf("candidate[%d].Id = %q, want %q", i, got[i].Id, id)
				}
			}
		})
	}
}

func TestParseCandidatesAppendsAllOptions(t *testing.T) {
	raw := `{"facets": [{"id": "focus", "title": "Focus", "question": "Q?", "choices": [{"value": "a"}]}]}`

	got, err := ParseCandidates(raw, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	choices := got[0].Choices
	if !HasAllOptions(choices) {
		t.Fatalf("expected %q choice to be appended, got %v", AllOptions, choices)
	}
	if choices[len(choices)-1].Value != AllOptions {
		t.Errorf("expected %q last, got %q", AllOptions, choices[len(choices)-1].Value)
	}

	// Must not be appended twice when the model already proposed it.
	withIt := `{"facets": [{"id": "focus", "title": "Focus", "question": "Q?", "choices": [{"value": "a"}, {"value": "All Options"}]}]}`
	got, err = ParseCandidates(withIt, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got[0].Choices) != 2 {
		t.Errorf("got %d choices, want 2", len(got[0].Choices))
	}
}

func TestParseCandidatesSubchoices(t *testing.T) {
	raw := `{"facets": [{"id": "focus", "title": "Focus", "question": "Q?", "choices": [
		{"value": "a", "subchoices": ["x", {"value": "y"}, "", 42]}
	]}]}`

	got, err := ParseCandidates(raw, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subs := got[0].Choices[0].Subchoices
	if len(subs) != 2 {
		t.Fatalf("got %d subchoices, want 2: %v", len(subs), subs)
	}
	if subs[0].Value != "x" || subs[1].Value != "y" {
		t.Errorf("subchoices = %v, want [x y]", subs)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Topic Focus", "topic_focus"},
		{"  Geographical Focus!  ", "geographical_focus"},
		{"already_snake", "already_snake"},
		{"---", "facet"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeValue(t *testing.T) {
	if got := ComposeValue("politics", "court"); got != "politics > court" {
		t.Errorf("ComposeValue = %q", got)
	}
}
