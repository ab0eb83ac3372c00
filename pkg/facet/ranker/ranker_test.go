package ranker

import (
	"testing"

	"ai-promptscope-be/pkg/facet"
)

func candidate(id string, values int, subsPerChoice int) facet.Candidate {
	c := facet.Candidate{Id: id, Title: id, Question: "?"}
	for i := 0; i < values; i++ {
		choice := facet.Choice{Value: string(rune('a' + i))}
		for j := 0; j < subsPerChoice; j++ {
			choice.Subchoices = append(choice.Subchoices, facet.Subchoice{Value: "sub"})
		}
		c.Choices = append(c.Choices, choice)
	}
	c.Choices = append(c.Choices, facet.Choice{Value: facet.AllOptions})
	return c
}

func ids(candidates []facet.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Id
	}
	return out
}

func TestRankOrdersByNarrowingPower(t *testing.T) {
	in := []facet.Candidate{
		candidate("two_choices", 2, 0),
		candidate("rich", 4, 3),
		candidate("plain", 4, 0),
	}

	got := ids(Rank(in, nil, 0))
	want := []string{"rich", "plain", "two_choices"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRankDropsResolved(t *testing.T) {
	in := []facet.Candidate{
		candidate("keep", 3, 0),
		candidate("done", 3, 0),
	}

	got := ids(Rank(in, map[string]bool{"done": true}, 0))
	if len(got) != 1 || got[0] != "keep" {
		t.Fatalf("got %v, want [keep]", got)
	}
}

func TestRankHardCap(t *testing.T) {
	in := []facet.Candidate{
		candidate("a", 2, 0),
		candidate("b", 3, 0),
		candidate("c", 4, 0),
	}

	got := Rank(in, nil, 2)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Id != "c" {
		t.Errorf("top candidate = %q, want c", got[0].Id)
	}
}

func TestRankTrivialFacetSinks(t *testing.T) {
	// A facet whose only choices are one value plus "all options" carries
	// no narrowing power and must sort last.
	in := []facet.Candidate{
		candidate("trivial", 1, 5),
		candidate("useful", 2, 0),
	}

	got := ids(Rank(in, nil, 0))
	if got[len(got)-1] != "trivial" {
		t.Fatalf("order = %v, want trivial last", got)
	}
}

func TestRankStableOnTies(t *testing.T) {
	in := []facet.Candidate{
		candidate("first", 3, 0),
		candidate("second", 3, 0),
		candidate("third", 3, 0),
	}

	got := ids(Rank(in, nil, 0))
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ties must keep discovery order: %v", got)
		}
	}
}
