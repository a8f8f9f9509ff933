// Package merchant joins merchant identifiers that arrive from different
// sources with inconsistent naming: card-offer merchant names, affiliate
// directory keys, and crowdsourced report domains.
//
// Matching runs an ordered pipeline of strategies, first success wins, and
// prefers silence over a wrong match: Resolve returns "" when no rule fires.
package merchant

import (
	"regexp"
	"sort"
	"strings"
)

// Matcher resolves free-text merchant names and domains against candidate
// identifiers using configuration-driven exclusion and stopword tables.
type Matcher struct {
	tables    Tables
	stopwords map[string]struct{}
	suffixes  map[string]struct{}
}

// New builds a Matcher from the given tables (see DefaultTables).
func New(tables Tables) *Matcher {
	m := &Matcher{
		tables:    tables,
		stopwords: make(map[string]struct{}, len(tables.Stopwords)),
		suffixes:  make(map[string]struct{}, len(tables.Suffixes)),
	}
	for _, w := range tables.Stopwords {
		m.stopwords[strings.ToLower(w)] = struct{}{}
	}
	for _, s := range tables.Suffixes {
		m.suffixes[strings.ToLower(s)] = struct{}{}
	}
	return m
}

// Resolve matches a free-text merchant name or domain against candidate
// identifiers. Strategies are tried in order; the first that fires wins.
// Returns "" rather than guessing when nothing matches.
func (m *Matcher) Resolve(nameOrDomain string, candidates []string) string {
	input := normalize(nameOrDomain)
	if input == "" || len(candidates) == 0 {
		return ""
	}

	strategies := []func(string, []string) string{
		m.exactMatch,
		m.suffixStrippedMatch,
		m.substringMatch,
		m.firstWordMatch,
	}
	for _, strat := range strategies {
		if match := strat(input, candidates); match != "" {
			return match
		}
	}
	return ""
}

// ResolveURL looks up the static storefront URL for a merchant name,
// resolving fuzzily against the URL table's keys. Returns "" when unknown.
func (m *Matcher) ResolveURL(name string) string {
	input := normalize(name)
	if url, ok := m.tables.MerchantURLs[input]; ok {
		return url
	}

	keys := make([]string, 0, len(m.tables.MerchantURLs))
	for k := range m.tables.MerchantURLs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic candidate order

	if match := m.Resolve(name, keys); match != "" {
		return m.tables.MerchantURLs[match]
	}
	return ""
}

// exactMatch: normalized equality.
func (m *Matcher) exactMatch(input string, candidates []string) string {
	for _, c := range candidates {
		if normalize(c) == input {
			return c
		}
	}
	return ""
}

// suffixStrippedMatch: equality after dropping corporate suffixes and
// possessives from both sides ("Macy's Inc" vs "macys").
func (m *Matcher) suffixStrippedMatch(input string, candidates []string) string {
	stripped := m.stripSuffixes(input)
	for _, c := range candidates {
		if m.stripSuffixes(normalize(c)) == stripped {
			return c
		}
	}
	return ""
}

// substringMatch: containment in either direction, space-insensitive so
// "bestbuy.com" meets "best buy". Longest candidate key wins; per-merchant
// exclusions stop short generic keys ("express") from matching inputs that
// belong to someone else ("american express").
func (m *Matcher) substringMatch(input string, candidates []string) string {
	squashedInput := squash(input)

	best := ""
	bestLen := 0
	for _, c := range candidates {
		key := normalize(c)
		if key == "" || m.excluded(key, input) {
			continue
		}
		squashedKey := squash(key)
		if !strings.Contains(squashedInput, squashedKey) && !strings.Contains(squashedKey, squashedInput) {
			continue
		}
		if len(squashedKey) > bestLen {
			best = c
			bestLen = len(squashedKey)
		}
	}
	return best
}

// firstWordMatch: the first significant (non-stopword) words agree.
func (m *Matcher) firstWordMatch(input string, candidates []string) string {
	word := m.firstSignificantWord(input)
	if word == "" {
		return ""
	}
	for _, c := range candidates {
		if m.firstSignificantWord(normalize(c)) == word {
			return c
		}
	}
	return ""
}

// excluded reports whether candidate key must not match this input because
// the input contains one of the key's disqualifying phrases.
func (m *Matcher) excluded(key, input string) bool {
	for _, phrase := range m.tables.Exclusions[key] {
		phrase = normalize(phrase)
		if phrase != "" && phrase != key && strings.Contains(input, phrase) {
			return true
		}
	}
	return false
}

func (m *Matcher) stripSuffixes(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		last := words[len(words)-1]
		if _, ok := m.suffixes[last]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func (m *Matcher) firstSignificantWord(s string) string {
	for _, w := range strings.Fields(s) {
		if _, stop := m.stopwords[w]; !stop {
			return w
		}
	}
	return ""
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalize lowercases, strips URL scheme/www and the trailing TLD label of
// domain-shaped input, drops possessives, and collapses the rest to
// space-separated alphanumerics.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")

	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	if !strings.ContainsAny(s, " \t") && strings.Contains(s, ".") {
		if i := strings.LastIndex(s, "."); i > 0 {
			s = s[:i] // drop the TLD label
		}
	}

	s = strings.ReplaceAll(s, "'s", "s")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func squash(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
