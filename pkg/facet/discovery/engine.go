// Package discovery proposes facet candidates for a query by asking the
// text-generation capability for structured JSON and validating it at
// the boundary.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-promptscope-be/pkg/facet"
	"ai-promptscope-be/pkg/llm"
)

// Engine turns (query, domain hint, prior selections) into candidate
// facets. It holds no session state; every call is a single model
// round-trip plus boundary validation.
type Engine struct {
	provider llm.LLMProvider
	model    string
}

func NewEngine(provider llm.LLMProvider, model string) *Engine {
	return &Engine{provider: provider, model: model}
}

// Params are the inputs for one discovery call.
type Params struct {
	RawQuery   string
	DomainHint string
	Round      int
	Selections []facet.Selection
	// ExcludeIds are facet ids that must not be re-proposed: every id
	// already resolved by prior selections.
	ExcludeIds map[string]bool
	MaxFacets  int
}

// Discover returns validated candidates. A malformed model reply
// surfaces as an error wrapping facet.ErrMalformedOutput; the caller
// recovers with the fallback facet set.
func (e *Engine) Discover(ctx context.Context, p Params) ([]facet.Candidate, error) {
	if strings.TrimSpace(p.RawQuery) == "" {
		return nil, fmt.Errorf("discovery requires a non-empty query")
	}
	if p.Round < 1 {
		return nil, fmt.Errorf("discovery round must be >= 1, got %d", p.Round)
	}
	if p.Round > 1 && len(p.Selections) == 0 {
		return nil, fmt.Errorf("refinement discovery requires prior selections")
	}

	var prompt string
	if p.Round == 1 {
		prompt = e.buildInitialPrompt(p)
	} else {
		prompt = e.buildRefinePrompt(p)
	}

	raw, err := e.provider.Generate(ctx, prompt, llm.WithModel(e.model), llm.WithTemperature(0.4))
	if err != nil {
		return nil, fmt.Errorf("facet proposal call: %w", err)
	}

	candidates, err := facet.ParseCandidates(raw, p.MaxFacets)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if p.ExcludeIds[c.Id] || facet.IsReserved(c.Id) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: every proposed facet was already resolved", facet.ErrMalformedOutput)
	}
	return filtered, nil
}

const outputShape = `Return JSON only with this shape:
{
  "facets": [
    {
      "id": "topic_focus",
      "title": "Topic Focus",
      "question": "Which aspect of the topic should be emphasized?",
      "reason": "Short reason tied to query terms",
      "single_select": false,
      "choices": [
        {"value": "value1", "subchoices": ["sub1", "sub2"]},
        {"value": "value2", "subchoices": []}
      ]
    }
  ]
}`

func (e *Engine) buildInitialPrompt(p Params) string {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("Generate facet options for a prompt builder. A facet is an independent axis of ambiguity in the user's query. Focus on the topic itself.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_query>\n")
	b.WriteString(strings.TrimSpace(p.RawQuery))
	b.WriteString("\n</user_query>\n\n")

	if p.DomainHint != "" {
		b.WriteString("<domain>\n")
		b.WriteString(p.DomainHint)
		b.WriteString("\n</domain>\n\n")
	}

	b.WriteString("<output>\n")
	b.WriteString(outputShape)
	b.WriteString("\n</output>\n\n")

	b.WriteString("<rules>\n")
	fmt.Fprintf(&b, "- Provide 3 to %d facets covering orthogonal axes of ambiguity.\n", p.MaxFacets)
	b.WriteString("- At least 3 facets must be topic-specific (not audience/format/scope).\n")
	b.WriteString("- Choices must be concrete and may include up to 10 subchoices.\n")
	b.WriteString("- Keep ids short and snake_case.\n")
	b.WriteString("- Mark a facet single_select only when its choices are mutually exclusive.\n")
	b.WriteString("- If the query mentions regions, locations, or areas, include a \"Geographical Focus\" facet with options like \"National (All)\" and specific regions.\n")
	b.WriteString("- Whenever a facet title, question, or choice uses the word \"specific\", add a follow-up facet letting the user pick the specific items as multiple options.\n")
	b.WriteString("</rules>\n")

	return b.String()
}

func (e *Engine) buildRefinePrompt(p Params) string {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("Propose follow-up facets based on the user's selected facets and values. Only surface distinctions that remain ambiguous given what has already been chosen.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_query>\n")
	b.WriteString(strings.TrimSpace(p.RawQuery))
	b.WriteString("\n</user_query>\n\n")

	b.WriteString("<selected_facets>\n")
	b.WriteString(encodeSelections(p.Selections))
	b.WriteString("\n</selected_facets>\n\n")

	if p.DomainHint != "" {
		b.WriteString("<domain>\n")
		b.WriteString(p.DomainHint)
		b.WriteString("\n</domain>\n\n")
	}

	b.WriteString("<output>\n")
	b.WriteString(outputShape)
	b.WriteString("\n</output>\n\n")

	b.WriteString("<rules>\n")
	fmt.Fprintf(&b, "- Provide 1 to %d facets.\n", p.MaxFacets)
	b.WriteString("- Every facet must reflect the user's selections.\n")
	b.WriteString("- Never re-propose an already-selected facet id: ")
	b.WriteString(strings.Join(excludedIds(p), ", "))
	b.WriteString("\n")
	b.WriteString("- Choices must be concrete and may include up to 10 subchoices.\n")
	b.WriteString("- Keep ids short and snake_case.\n")
	b.WriteString("</rules>\n")

	return b.String()
}

func encodeSelections(selections []facet.Selection) string {
	grouped := make(map[string][]string)
	order := make([]string, 0, len(selections))
	for _, sel := range selections {
		if _, seen := grouped[sel.FacetId]; !seen {
			order = append(order, sel.FacetId)
		}
		grouped[sel.FacetId] = append(grouped[sel.FacetId], sel.Value)
	}

	doc := make(map[string][]string, len(grouped))
	for _, id := range order {
		doc[id] = grouped[id]
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func excludedIds(p Params) []string {
	ids := make([]string, 0, len(p.ExcludeIds))
	emitted := make(map[string]bool, len(p.ExcludeIds))
	for _, sel := range p.Selections {
		if p.ExcludeIds[sel.FacetId] && !emitted[sel.FacetId] {
			ids = append(ids, sel.FacetId)
			emitted[sel.FacetId] = true
		}
	}
	if len(ids) == 0 {
		return []string{"(none)"}
	}
	return ids
}
