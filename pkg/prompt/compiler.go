// Package prompt deterministically renders accumulated negotiation
// state into the structured request handed to the text-generation
// capability.
package prompt

import (
	"fmt"
	"strings"

	"ai-promptscope-be/pkg/facet"
	"ai-promptscope-be/pkg/negotiation"
)

// Section is one titled block of the compiled prompt.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GenerationRequest is the unit handed to the generation capability:
// the compiled sections plus the output-control parameters verbatim.
type GenerationRequest struct {
	Sections []Section `json:"sections"`
	Audience string    `json:"audience"`
	Format   string    `json:"format"`
	Length   string    `json:"length"`
}

// Render flattens the sections into the prompt text. Deterministic:
// identical state renders byte-identically.
func (r *GenerationRequest) Render() string {
	parts := make([]string, 0, len(r.Sections))
	for _, section := range r.Sections {
		parts = append(parts, section.Title+"\n"+section.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Compiler renders session state into a GenerationRequest. Stateless
// apart from its configured instruction cap.
type Compiler struct {
	maxInstructions int
}

// NewCompiler bounds compiled prompts at maxInstructions scoping
// instructions; beyond that Compile fails with ErrPromptTooLarge so the
// caller can retry with fewer selections.
func NewCompiler(maxInstructions int) *Compiler {
	return &Compiler{maxInstructions: maxInstructions}
}

const baseInstructions = "Answer the user's query strictly within the scope constraints. " +
	"Honor every scoping instruction: constraints marked \"no restriction\" were deliberately left open by the user and must not be narrowed. " +
	"Match the requested audience level, format, and length exactly."

// Compile renders the session. Section order is fixed: output-control
// settings first, then the query, then topic facets in the order their
// facet id first appeared in the session. "all options" renders as an
// explicit no-restriction instruction; omitting it would be
// indistinguishable from "never asked".
func (c *Compiler) Compile(s *negotiation.Session, extraInstructions string) (*GenerationRequest, error) {
	scope := scopeInstructions(s.Selections)
	if c.maxInstructions > 0 && len(scope) > c.maxInstructions {
		return nil, fmt.Errorf("%w: %d instructions, limit %d",
			negotiation.ErrPromptTooLarge, len(scope), c.maxInstructions)
	}

	controls := fmt.Sprintf("audience: %s\nformat: %s\nlength: %s",
		s.Controls.Audience, s.Controls.Format, s.Controls.Length)

	scopeContent := "None"
	if len(scope) > 0 {
		scopeContent = strings.Join(scope, "\n")
	}

	instructions := baseInstructions
	if extra := strings.TrimSpace(extraInstructions); extra != "" {
		instructions = instructions + "\n" + extra
	}

	return &GenerationRequest{
		Sections: []Section{
			{Title: "Output Controls", Content: controls},
			{Title: "User Query", Content: strings.TrimSpace(s.RawQuery)},
			{Title: "Scope", Content: scopeContent},
			{Title: "Instructions", Content: instructions},
		},
		Audience: s.Controls.Audience,
		Format:   s.Controls.Format,
		Length:   s.Controls.Length,
	}, nil
}

// scopeInstructions renders one instruction per selection, grouped by
// facet in first-appearance order, values in selection order.
func scopeInstructions(selections []facet.Selection) []string {
	order := make([]string, 0, len(selections))
	grouped := make(map[string][]string, len(selections))
	for _, sel := range selections {
		if _, seen := grouped[sel.FacetId]; !seen {
			order = append(order, sel.FacetId)
		}
		grouped[sel.FacetId] = append(grouped[sel.FacetId], sel.Value)
	}

	lines := make([]string, 0, len(selections))
	for _, facetId := range order {
		for _, value := range grouped[facetId] {
			if value == facet.AllOptions {
				lines = append(lines, fmt.Sprintf("- %s: no restriction on this axis", facetId))
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", facetId, value))
		}
	}
	return lines
}
