package query

import "testing"

func TestTokenizeAndFilter(t *testing.T) {
	got := tokenizeAndFilter("The cache, is (probably) Stale!")
	want := []string{"cache", "probably", "stale"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestMatchesQuery(t *testing.T) {
	doc := "The service will use PostgreSQL for persistence"

	if !matchesQuery(doc, "postgresql persistence") {
		t.Error("expected all-words match to succeed")
	}
	if matchesQuery(doc, "postgresql redis") {
		t.Error("expected partial match to fail")
	}
	if !matchesQuery(doc, "The of and") {
		t.Error("expected stop-word-only query to match everything")
	}
	if !matchesQuery(doc, "POSTGRESQL") {
		t.Error("expected matching to be case-insensitive")
	}
}
