package facet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput signals that model output did not contain any valid
// facet structure. Callers treat this as a discovery failure and fall
// back to a default facet set.
var ErrMalformedOutput = errors.New("model output does not parse into facet candidates")

// Raw wire shapes as emitted by the model. Validated and converted into
// the strict internal Candidate shape immediately on receipt; nothing
// loosely typed leaves this file.

type rawSubchoice struct {
	Value string `json:"value"`
}

type rawChoice struct {
	Value      string            `json:"value"`
	Subchoices []json.RawMessage `json:"subchoices"`
}

type rawFacet struct {
	Id           string      `json:"id"`
	Title        string      `json:"title"`
	Question     string      `json:"question"`
	Reason       string      `json:"reason"`
	Choices      []rawChoice `json:"choices"`
	SingleSelect bool        `json:"single_select"`
}

type rawDocument struct {
	Facets []rawFacet `json:"facets"`
}

// ParseCandidates validates model output into Candidate structures.
// Accepts a bare JSON document or JSON embedded in prose / code fences.
// Facets missing required fields or carrying an empty choice list are
// rejected; if nothing valid remains the whole output is rejected.
func ParseCandidates(raw string, maxFacets int) ([]Candidate, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	candidates := make([]Candidate, 0, len(doc.Facets))
	for _, item := range doc.Facets {
		candidate, ok := toCandidate(item)
		if !ok {
			continue
		}
		if seen[candidate.Id] {
			continue
		}
		seen[candidate.Id] = true
		candidates = append(candidates, candidate)
		if maxFacets > 0 && len(candidates) >= maxFacets {
			break
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no valid facets in output", ErrMalformedOutput)
	}
	return candidates, nil
}

func decodeDocument(raw string) (*rawDocument, error) {
	var doc rawDocument
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		return &doc, nil
	}

	// Models occasionally wrap the JSON in prose or a code fence.
	// Extract the outermost object and retry.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &doc, nil
}

func toCandidate(item rawFacet) (Candidate, bool) {
	title := strings.TrimSpace(item.Title)
	question := strings.TrimSpace(item.Question)
	if title == "" || question == "" {
		return Candidate{}, false
	}

	id := strings.TrimSpace(item.Id)
	if id == "" {
		id = Slugify(title)
	} else {
		id = Slugify(id)
	}

	choices := make([]Choice, 0, len(item.Choices)+1)
	for _, rc := range item.Choices {
		value := strings.TrimSpace(rc.Value)
		if value == "" {
			continue
		}
		choices = append(choices, Choice{
			Value:      value,
			Subchoices: toSubchoices(rc.Subchoices),
		})
	}
	if len(choices) == 0 {
		return Candidate{}, false
	}

	// Every facet gets an escape hatch: the reserved "all options"
	// choice, appended when the model did not propose one itself.
	if !HasAllOptions(choices) {
		choices = append(choices, Choice{Value: AllOptions})
	}

	return Candidate{
		Id:           id,
		Title:        title,
		Question:     question,
		Reason:       strings.TrimSpace(item.Reason),
		Choices:      choices,
		SingleSelect: item.SingleSelect,
	}, true
}

// toSubchoices accepts both plain strings and {value} objects, and caps
// nesting at one level by dropping anything deeper.
func toSubchoices(raw []json.RawMessage) []Subchoice {
	if len(raw) == 0 {
		return nil
	}
	subs := make([]Subchoice, 0, len(raw))
	for _, msg := range raw {
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				subs = append(subs, Subchoice{Value: s})
			}
			continue
		}
		var obj rawSubchoice
		if err := json.Unmarshal(msg, &obj); err == nil {
			if v := strings.TrimSpace(obj.Value); v != "" {
				subs = append(subs, Subchoice{Value: v})
			}
		}
	}
	if len(subs) == 0 {
		return nil
	}
	return subs
}
