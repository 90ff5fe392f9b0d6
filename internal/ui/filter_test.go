package ui

import (
	"reflect"
	"testing"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
)

func TestFilterHidden(t *testing.T) {
	entries := []browser.Entry{{Name: "a"}, {Name: ".git", IsDir: true}, {Name: "b"}}
	if got := filterHidden(entries, false); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("hidden filter mismatch: got %v", got)
	}
	if got := filterHidden(entries, true); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("show hidden mismatch: got %v", got)
	}
}

func TestFilterBySubstring(t *testing.T) {
	base := []string{"hello world", "foo bar", "hello bar"}
	idx := []int{0, 1, 2}
	cfg := FilterConfig{MaxResults: 10}
	want := []int{0, 2}
	if got := filterBySubstring("hello", base, idx, cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("substring filter mismatch: want %v got %v", want, got)
	}
	cfg.MaxResults = 1
	want = []int{0}
	if got := filterBySubstring("hello", base, idx, cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("substring maxresults mismatch: want %v got %v", want, got)
	}
}

func TestFilterByFuzzyThresholds(t *testing.T) {
	base := []string{"abc", "axc", "ac"}
	idx := []int{0, 1, 2}
	cfg := FilterConfig{MinCoverage: 1, MaxSpread: 1, MaxResults: 10}
	want := []int{2}
	if got := filterByFuzzy("ac", base, idx, cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("fuzzy filter mismatch: want %v got %v", want, got)
	}
}

func TestFilterByFuzzyKeepsListingOrder(t *testing.T) {
	base := []string{"scripts", "src"}
	idx := []int{0, 1}
	cfg := FilterConfig{MinCoverage: 0, MaxSpread: 100, MaxResults: 10}
	want := []int{0, 1}
	if got := filterByFuzzy("sr", base, idx, cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("fuzzy order mismatch: want %v got %v", want, got)
	}
}

func TestFilterByFuzzyFallback(t *testing.T) {
	base := []string{"abcd", "abxd"}
	idx := []int{0, 1}
	cfg := FilterConfig{MinCoverage: 1, MaxSpread: 0, MaxResults: 1}
	got := filterByFuzzy("ad", base, idx, cfg)
	if len(got) != 1 {
		t.Fatalf("fuzzy fallback expected one result, got %v", got)
	}
	if got[0] != 0 && got[0] != 1 {
		t.Fatalf("fuzzy fallback returned unexpected index %v", got)
	}
}

func TestFilterIgnoresCaseAndNormalisation(t *testing.T) {
	m := createTestModel(t, t.TempDir(), config.Config{})
	m.entries = []browser.Entry{{Name: "Caf\u00e9.txt"}, {Name: "other"}}
	// decomposed: E followed by a combining acute accent
	m.filter.query = "CAFE\u0301"
	m.applyFilter()
	if got := visibleNames(m); !reflect.DeepEqual(got, []string{"Caf\u00e9.txt"}) {
		t.Fatalf("visible = %v", got)
	}
}
