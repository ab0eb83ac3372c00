package negotiation

import (
	"fmt"

	"ai-promptscope-be/pkg/facet"
)

// Merge folds a round of selections into the session, in payload order.
//
// Semantics:
//   - audience/format/length and any issued single-select facet: a new
//     value replaces the prior one.
//   - multi-select facets: union, deduplicated by (facet_id, value).
//   - "all options" clears every other selection for that facet; a
//     concrete value chosen after "all options" replaces it (the
//     requester is narrowing again).
//   - selections for facet ids never issued to this session are
//     rejected with ErrUnknownFacet.
//
// Merge is idempotent: applying the same payload twice leaves the
// session unchanged.
func Merge(s *Session, selections []facet.Selection) error {
	for _, sel := range selections {
		if err := mergeOne(s, sel); err != nil {
			return err
		}
	}
	return nil
}

func mergeOne(s *Session, sel facet.Selection) error {
	if facet.IsReserved(sel.FacetId) {
		applyControl(s, sel)
		return nil
	}

	issued, ok := s.Issued[sel.FacetId]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFacet, sel.FacetId)
	}

	if issued.SingleSelect || sel.Value == facet.AllOptions {
		replaceAll(s, sel)
		return nil
	}

	// Multi-select: a concrete value supersedes a prior "all options"
	// for the same facet, otherwise union.
	kept := s.Selections[:0]
	for _, existing := range s.Selections {
		if existing.FacetId == sel.FacetId && existing.Value == facet.AllOptions {
			continue
		}
		kept = append(kept, existing)
	}
	s.Selections = kept

	for _, existing := range s.Selections {
		if existing.FacetId == sel.FacetId && existing.Value == sel.Value {
			return nil
		}
	}
	s.Selections = append(s.Selections, sel)
	return nil
}

// replaceAll keeps exactly one selection for the facet, at the facet's
// first-appearance position so compiled ordering stays stable.
func replaceAll(s *Session, sel facet.Selection) {
	replaced := false
	kept := s.Selections[:0]
	for _, existing := range s.Selections {
		if existing.FacetId != sel.FacetId {
			kept = append(kept, existing)
			continue
		}
		if !replaced {
			kept = append(kept, sel)
			replaced = true
		}
	}
	s.Selections = kept
	if !replaced {
		s.Selections = append(s.Selections, sel)
	}
}

func applyControl(s *Session, sel facet.Selection) {
	switch sel.FacetId {
	case facet.FacetAudience:
		s.Controls.Audience = sel.Value
	case facet.FacetFormat:
		s.Controls.Format = sel.Value
	case facet.FacetLength:
		s.Controls.Length = sel.Value
	}
}
