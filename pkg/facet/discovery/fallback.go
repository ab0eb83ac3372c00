package discovery

import "ai-promptscope-be/pkg/facet"

// Fallback returns the default facet set used when the model's proposal
// does not validate. Generic axes that narrow almost any query, so the
// requester always receives usable facets instead of an aborted session.
func Fallback(excludeIds map[string]bool, maxFacets int) []facet.Candidate {
	defaults := []facet.Candidate{
		{
			Id:       "topic_focus",
			Title:    "Topic Focus",
			Question: "Which aspect of the topic should be emphasized?",
			Reason:   "Default facet: narrows which part of the subject the answer covers",
			Choices: []facet.Choice{
				{Value: "core concepts"},
				{Value: "practical applications"},
				{Value: "historical development"},
				{Value: "current debates"},
				{Value: facet.AllOptions},
			},
		},
		{
			Id:           "depth_of_treatment",
			Title:        "Depth of Treatment",
			Question:     "How deep should the answer go?",
			Reason:       "Default facet: separates a survey from a deep dive",
			SingleSelect: true,
			Choices: []facet.Choice{
				{Value: "high-level overview"},
				{Value: "detailed analysis"},
				{Value: "exhaustive treatment"},
				{Value: facet.AllOptions},
			},
		},
		{
			Id:       "perspective",
			Title:    "Perspective",
			Question: "From which perspective should the topic be approached?",
			Reason:   "Default facet: the same topic reads differently per viewpoint",
			Choices: []facet.Choice{
				{Value: "theoretical"},
				{Value: "practitioner"},
				{Value: "critical"},
				{Value: facet.AllOptions},
			},
		},
		{
			Id:       "time_period",
			Title:    "Time Period",
			Question: "Which time period should the answer concentrate on?",
			Reason:   "Default facet: bounds the answer in time",
			Choices: []facet.Choice{
				{Value: "origins and early history"},
				{Value: "recent developments"},
				{Value: "present state"},
				{Value: facet.AllOptions},
			},
		},
	}

	candidates := make([]facet.Candidate, 0, len(defaults))
	for _, c := range defaults {
		if excludeIds[c.Id] {
			continue
		}
		candidates = append(candidates, c)
		if maxFacets > 0 && len(candidates) >= maxFacets {
			break
		}
	}
	return candidates
}
