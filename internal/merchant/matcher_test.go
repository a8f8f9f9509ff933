package merchant

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestMatcher() *Matcher {
	return New(DefaultTables())
}

func TestResolve_ExactNormalizedMatch(t *testing.T) {
	m := newTestMatcher()

	cases := []struct {
		input string
		want  string
	}{
		{"Nike", "nike"},
		{"  TARGET  ", "target"},
		{"Best Buy", "best buy"},
	}
	candidates := []string{"nike", "target", "best buy"}

	for _, tc := range cases {
		if got := m.Resolve(tc.input, candidates); got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestResolve_SuffixStripped(t *testing.T) {
	m := newTestMatcher()

	if got := m.Resolve("Macy's Inc", []string{"macys"}); got != "macys" {
		t.Errorf("Expected macys, got %q", got)
	}
	if got := m.Resolve("Nike USA", []string{"nike"}); got != "nike" {
		t.Errorf("Expected nike, got %q", got)
	}
}

func TestResolve_DomainAgainstName(t *testing.T) {
	m := newTestMatcher()

	if got := m.Resolve("https://www.bestbuy.com/site/deals", []string{"best buy", "target"}); got != "best buy" {
		t.Errorf("Expected best buy, got %q", got)
	}
	if got := m.Resolve("homedepot.com", []string{"home depot"}); got != "home depot" {
		t.Errorf("Expected home depot, got %q", got)
	}
}

func TestResolve_SubstringPrefersLongestKey(t *testing.T) {
	m := newTestMatcher()

	got := m.Resolve("Pizza Hut Delivery", []string{"hut", "pizza hut"})
	if got != "pizza hut" {
		t.Errorf("Expected pizza hut (longest key), got %q", got)
	}
}

func TestResolve_ExclusionStopsGenericKeys(t *testing.T) {
	m := newTestMatcher()

	// "American Express" must never match a candidate keyed only by
	// "express".
	if got := m.Resolve("American Express", []string{"express"}); got != "" {
		t.Errorf("Expected no match, got %q", got)
	}
	// With the real merchant present it resolves correctly.
	if got := m.Resolve("American Express", []string{"express", "american express"}); got != "american express" {
		t.Errorf("Expected american express, got %q", got)
	}
	// A plain Express input still matches Express.
	if got := m.Resolve("Express", []string{"express"}); got != "express" {
		t.Errorf("Expected express, got %q", got)
	}
	if got := m.Resolve("Taco Bell", []string{"bell"}); got != "" {
		t.Errorf("Expected no match for Taco Bell vs bell, got %q", got)
	}
}

func TestResolve_FirstSignificantWord(t *testing.T) {
	m := newTestMatcher()

	if got := m.Resolve("The Nordstrom Anniversary Sale", []string{"nordstrom rack outlets"}); got != "nordstrom rack outlets" {
		t.Errorf("Expected first-word match, got %q", got)
	}
	// Stoplisted leading words are skipped on both sides.
	if got := m.Resolve("Shop Sephora", []string{"sephora beauty insider"}); got != "sephora beauty insider" {
		t.Errorf("Expected sephora match, got %q", got)
	}
}

func TestResolve_SilenceOverGuessing(t *testing.T) {
	m := newTestMatcher()

	for _, input := range []string{"", "   ", "completely unknown shop"} {
		if got := m.Resolve(input, []string{"nike", "target"}); got != "" {
			t.Errorf("Resolve(%q): expected no match, got %q", input, got)
		}
	}
	if got := m.Resolve("nike", nil); got != "" {
		t.Errorf("Expected no match with no candidates, got %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	m := newTestMatcher()

	if got := m.ResolveURL("Amazon"); got != "https://www.amazon.com" {
		t.Errorf("Expected amazon URL, got %q", got)
	}
	if got := m.ResolveURL("Best Buy Co"); got != "https://www.bestbuy.com" {
		t.Errorf("Expected best buy URL, got %q", got)
	}
	if got := m.ResolveURL("American Express"); got != "https://www.americanexpress.com" {
		t.Errorf("Expected amex URL, got %q", got)
	}
	if got := m.ResolveURL("no such merchant anywhere"); got != "" {
		t.Errorf("Expected empty URL, got %q", got)
	}
}

func TestLoadTables_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := []byte("exclusions:\n  depot: [\"office depot\"]\nmerchant_urls:\n  acme: https://www.acme.test\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write tables file: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}

	if len(tables.Exclusions["depot"]) != 1 {
		t.Errorf("Expected custom exclusion loaded, got %+v", tables.Exclusions)
	}
	if tables.MerchantURLs["acme"] != "https://www.acme.test" {
		t.Errorf("Expected custom URL loaded, got %+v", tables.MerchantURLs)
	}
	// Omitted sections fall back to defaults.
	if len(tables.Stopwords) == 0 || len(tables.Suffixes) == 0 {
		t.Error("Expected default stopwords and suffixes to backfill")
	}
}

func TestLoadTables_MissingFile(t *testing.T) {
	if _, err := LoadTables("/nonexistent/tables.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}
