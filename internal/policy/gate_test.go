package policy

import "testing"

func TestGateMatchesReligiousQuery(t *testing.T) {
	g := New()
	matched, cat := g.Matches("Should I pray before investing?")
	if !matched {
		t.Fatal("expected religious pattern to match")
	}
	if cat != CategoryReligious {
		t.Fatalf("expected category religious, got %s", cat)
	}
}

func TestGateAllowsInScopeQuery(t *testing.T) {
	g := New()
	matched, _ := g.Matches("How much will my pension be if I retire in 10 years?")
	if matched {
		t.Fatal("expected in-scope projection query not to match")
	}
}

func TestGateScrubReplacesMatchedFragments(t *testing.T) {
	g := New()
	out := g.Scrub("You should vote for candidate X before retiring.")
	if out == "You should vote for candidate X before retiring." {
		t.Fatal("expected scrub to replace the political fragment")
	}
}
