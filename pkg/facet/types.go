package facet

import (
	"regexp"
	"strings"
)

// AllOptions is the reserved choice value meaning "no filtering on this
// facet". When selected it is mutually exclusive with every other choice
// of the same facet.
const AllOptions = "all options"

// Reserved single-select output-control facet ids. They are always
// present in a negotiation session, even when the requester never
// touches them.
const (
	FacetAudience = "audience"
	FacetFormat   = "format"
	FacetLength   = "length"
)

// Defaults for the output-control facets.
const (
	DefaultAudience = "intermediate"
	DefaultFormat   = "paragraphs"
	DefaultLength   = "600 words"
)

// Subchoice refines a parent choice one level deeper. Depth is capped at
// one: a Subchoice never carries subchoices of its own.
type Subchoice struct {
	Value string `json:"value"`
}

// Choice is a selectable value for a facet.
type Choice struct {
	Value      string      `json:"value"`
	Subchoices []Subchoice `json:"subchoices"`
}

// Candidate is one axis of ambiguity proposed for a round. Immutable
// once issued to a round.
type Candidate struct {
	Id           string   `json:"id"`
	Title        string   `json:"title"`
	Question     string   `json:"question"`
	Reason       string   `json:"reason"`
	Choices      []Choice `json:"choices"`
	SingleSelect bool     `json:"single_select,omitempty"`
}

// Selection is one (facet_id, value) pair chosen by the requester.
// Subchoice selections embed the parent choice context as a composite
// value ("parent > sub") so the compiler can render hierarchy without
// re-querying candidates.
type Selection struct {
	FacetId string `json:"facet_id"`
	Value   string `json:"value"`
}

// SubchoiceSeparator joins a parent choice and a subchoice into a
// composite selection value.
const SubchoiceSeparator = " > "

// ComposeValue builds the composite selection value for a subchoice.
func ComposeValue(parent, sub string) string {
	return parent + SubchoiceSeparator + sub
}

// IsReserved reports whether the facet id is one of the three
// output-control facets.
func IsReserved(facetId string) bool {
	return facetId == FacetAudience || facetId == FacetFormat || facetId == FacetLength
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a facet title into a snake_case id.
func Slugify(text string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(text), "_"), "_")
	if slug == "" {
		return "facet"
	}
	return slug
}

// HasAllOptions reports whether the candidate already carries the
// reserved "all options" choice.
func HasAllOptions(choices []Choice) bool {
	for _, choice := range choices {
		if strings.EqualFold(choice.Value, AllOptions) {
			return true
		}
	}
	return false
}
