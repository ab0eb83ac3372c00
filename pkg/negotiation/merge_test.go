package negotiation

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"ai-promptscope-be/pkg/facet"
)

func testSession() *Session {
	s := NewSession("req-1", "history of the safavid empire", "", time.Now())
	s.Issued["topic_focus"] = IssuedFacet{Round: 1}
	s.Issued["depth"] = IssuedFacet{SingleSelect: true, Round: 1}
	s.Issued["time_period"] = IssuedFacet{Round: 1}
	return s
}

func values(s *Session, facetId string) []string {
	var out []string
	for _, sel := range s.Selections {
		if sel.FacetId == facetId {
			out = append(out, sel.Value)
		}
	}
	return out
}

func TestMergeUnknownFacet(t *testing.T) {
	s := testSession()

	err := Merge(s, []facet.Selection{{FacetId: "never_issued", Value: "x"}})
	if !errors.Is(err, ErrUnknownFacet) {
		t.Fatalf("err = %v, want ErrUnknownFacet", err)
	}
}

func TestMergeMultiSelectUnion(t *testing.T) {
	s := testSession()

	if err := Merge(s, []facet.Selection{
		{FacetId: "topic_focus", Value: "politics"},
		{FacetId: "topic_focus", Value: "economy"},
		{FacetId: "topic_focus", Value: "politics"}, // duplicate in same payload
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := values(s, "topic_focus")
	want := []string{"politics", "economy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
}

func TestMergeSingleSelectReplaces(t *testing.T) {
	s := testSession()

	if err := Merge(s, []facet.Selection{{FacetId: "depth", Value: "overview"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Merge(s, []facet.Selection{{FacetId: "depth", Value: "detailed"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := values(s, "depth")
	if !reflect.DeepEqual(got, []string{"detailed"}) {
		t.Fatalf("values = %v, want [detailed]", got)
	}
}

func TestMergeAllOptionsClearsFacet(t *testing.T) {
	s := testSession()

	if err := Merge(s, []facet.Selection{
		{FacetId: "topic_focus", Value: "politics"},
		{FacetId: "topic_focus", Value: "economy"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := Merge(s, []facet.Selection{{FacetId: "topic_focus", Value: facet.AllOptions}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := values(s, "topic_focus"); !reflect.DeepEqual(got, []string{facet.AllOptions}) {
		t.Fatalf("values = %v, want [%s]", got, facet.AllOptions)
	}

	// Narrowing again after "all options": the concrete value wins.
	if err := Merge(s, []facet.Selection{{FacetId: "topic_focus", Value: "religion"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := values(s, "topic_focus"); !reflect.DeepEqual(got, []string{"religion"}) {
		t.Fatalf("values = %v, want [religion]", got)
	}
}

func TestMergeAllOptionsKeepsPosition(t *testing.T) {
	s := testSession()

	if err := Merge(s, []facet.Selection{
		{FacetId: "topic_focus", Value: "politics"},
		{FacetId: "time_period", Value: "origins"},
		{FacetId: "topic_focus", Value: "economy"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Merge(s, []facet.Selection{{FacetId: "topic_focus", Value: facet.AllOptions}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First-appearance position survives the replacement.
	if s.Selections[0].FacetId != "topic_focus" || s.Selections[0].Value != facet.AllOptions {
		t.Fatalf("selections = %v, want all-options first", s.Selections)
	}
}

func TestMergeReservedControls(t *testing.T) {
	s := testSession()

	if err := Merge(s, []facet.Selection{
		{FacetId: facet.FacetAudience, Value: "expert"},
		{FacetId: facet.FacetLength, Value: "1200 words"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Controls.Audience != "expert" {
		t.Errorf("Audience = %q, want expert", s.Controls.Audience)
	}
	if s.Controls.Format != facet.DefaultFormat {
		t.Errorf("Format = %q, want untouched default", s.Controls.Format)
	}
	if s.Controls.Length != "1200 words" {
		t.Errorf("Length = %q, want 1200 words", s.Controls.Length)
	}
	// Reserved facets never land in Selections.
	if len(s.Selections) != 0 {
		t.Errorf("selections = %v, want empty", s.Selections)
	}
}

func TestMergeIdempotent(t *testing.T) {
	s := testSession()

	payload := []facet.Selection{
		{FacetId: "topic_focus", Value: "politics"},
		{FacetId: "depth", Value: "overview"},
		{FacetId: facet.FacetAudience, Value: "expert"},
	}
	if err := Merge(s, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := append([]facet.Selection(nil), s.Selections...)
	controls := s.Controls

	if err := Merge(s, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Selections, before) {
		t.Errorf("selections changed on replay: %v != %v", s.Selections, before)
	}
	if s.Controls != controls {
		t.Errorf("controls changed on replay: %v != %v", s.Controls, controls)
	}
}
