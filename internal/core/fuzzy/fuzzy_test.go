package fuzzy

import "testing"

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"tonnage", "tonnage", 0},
		{"tonage", "tonnage", 1},
		{"excavater", "excavator", 1},
		{"kitten", "sitting", 3},
		{"équipe", "equipe", 1},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Fatalf("Distance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := Distance(c.b, c.a); got != c.want {
			t.Fatalf("Distance not symmetric for %q/%q", c.a, c.b)
		}
	}
}

func TestSimilarBudget(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"fuel", "fuel", true},
		{"fuel", "fual", false}, // short words must be exact
		{"trips", "trip", true},
		{"shfit", "shift", false}, // transposition is two edits
		{"tonage", "tonnage", true},
		{"tonnaje", "tonnage", true},
		{"excavtor", "excavator", true},
		{"excvtr", "excavator", false},
		{"utilisation", "utilization", true},
		{"downtme", "downtime", true},
	}
	for _, c := range cases {
		if got := Similar(c.a, c.b); got != c.want {
			t.Fatalf("Similar(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestBest(t *testing.T) {
	vocab := []string{"excavator", "excavators", "tipper", "dozer"}
	if got, ok := Best("excavater", vocab); !ok || got != "excavator" {
		t.Fatalf("Best = %q, %v", got, ok)
	}
	// both at distance 1: alphabetical wins
	if got, _ := Best("tonnes", []string{"tonner", "tonnel"}); got != "tonnel" {
		t.Fatalf("tie-break = %q", got)
	}
	if _, ok := Best("grader", vocab); ok {
		t.Fatalf("no candidate expected")
	}
}

func TestContainsWord(t *testing.T) {
	tokens := []string{"show", "equipmnt", "downtme"}
	if !ContainsWord(tokens, "downtime") {
		t.Fatalf("downtime should match downtme")
	}
	if ContainsWord(tokens, "fuel") {
		t.Fatalf("fuel should not match")
	}
}
