// Package ranker orders facet candidates by how much their choices are
// expected to narrow the space of acceptable answers.
package ranker

import (
	"sort"
	"strings"

	"ai-promptscope-be/pkg/facet"
)

// Rank orders and caps candidates. Pure function of its inputs: no
// hidden state, so a session stays replayable from its trace alone.
//
// Candidates whose axis is already fully resolved (present in the
// resolved set) would not narrow the space further and are dropped.
// Remaining candidates score by how many meaningful choices they carry;
// ties keep discovery order (first-discovered wins). maxCount is a hard
// cap: the only way a surviving candidate disappears is truncation.
func Rank(candidates []facet.Candidate, resolved map[string]bool, maxCount int) []facet.Candidate {
	ranked := make([]facet.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if resolved[c.Id] {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})

	if maxCount > 0 && len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}
	return ranked
}

// score is a proxy for information gain: each concrete choice partitions
// the answer space, subchoices partition it further. The reserved
// "all options" escape hatch carries no information. A facet offering a
// single trivial choice scores zero and sinks to the bottom.
func score(c facet.Candidate) int {
	meaningful := 0
	subs := 0
	for _, choice := range c.Choices {
		if strings.EqualFold(choice.Value, facet.AllOptions) {
			continue
		}
		meaningful++
		subs += len(choice.Subchoices)
	}
	if meaningful <= 1 {
		return 0
	}
	return meaningful*2 + subs
}
