// Package offerparse extracts structured discount semantics from free-form
// card-offer marketing text ("$60 back (20%) on $300+ spend").
//
// Extraction runs as an ordered list of tagged patterns so each rule stays
// auditable and testable on its own. Parse is total: any input yields a
// result, unparseable text comes back as KindUnknown.
package offerparse

import (
	"regexp"
	"strconv"
	"strings"

	"dealstack-api/internal/models"
)

// pattern tags, in evaluation priority order.
const (
	TagPercent    = "percent"
	TagFlatEarn   = "flat-earn"
	TagFlatBack   = "flat-back"
	TagFlatDollar = "flat-dollar"
	TagMinSpend   = "min-spend"
)

type extractor struct {
	tag string
	re  *regexp.Regexp
}

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	// Flat-amount patterns, strongest phrasing first. The bare-dollar
	// fallback must not capture the minimum-spend threshold, so matches
	// adjacent to the word "spend" on either side are rejected in
	// flatAmount below.
	flatExtractors = []extractor{
		{TagFlatEarn, regexp.MustCompile(`(?i)earn\s+\$(\d[\d,]*(?:\.\d+)?)`)},
		{TagFlatBack, regexp.MustCompile(`(?i)\$(\d[\d,]*(?:\.\d+)?)\s+(?:back|statement credit|credit)`)},
		{TagFlatDollar, regexp.MustCompile(`\$(\d[\d,]*(?:\.\d+)?)`)},
	}

	minSpendRe = regexp.MustCompile(`(?i)(?:on|with)\s+\$(\d[\d,]*(?:\.\d+)?)\+?\s*spend`)

	// Adjacency windows used to reject bare-dollar matches that are really
	// a spend threshold, whether phrased "$300+ spend" or "spend $300".
	spendAfterRe  = regexp.MustCompile(`(?i)^\+?\s*spend`)
	spendBeforeRe = regexp.MustCompile(`(?i)\bspend\s*$`)
)

// Parse turns a raw offer value string into a ParsedOffer. It never fails;
// text with no recognizable value yields {Kind: KindUnknown}.
func Parse(raw string) models.ParsedOffer {
	out := models.ParsedOffer{Kind: models.KindUnknown}
	if strings.TrimSpace(raw) == "" {
		return out
	}

	if pct, ok := percent(raw); ok {
		out.Percent = &pct
		out.Kind = models.KindPercent
	}

	if flat, ok := flatAmount(raw); ok {
		out.FlatAmount = &flat
		if out.Kind == models.KindUnknown {
			out.Kind = models.KindFlat
		}
	}

	// No recognizable reward means no offer value at all, even when a
	// spend threshold is present.
	if out.Kind == models.KindUnknown {
		return out
	}

	// Minimum spend is independent of the reward: an offer can be both
	// "$60 back" and "on $300+ spend".
	if spend, ok := minSpend(raw); ok {
		out.MinSpend = &spend
	}

	return out
}

func percent(raw string) (float64, bool) {
	m := percentRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	return parseNumber(m[1])
}

func flatAmount(raw string) (float64, bool) {
	for _, ex := range flatExtractors {
		if ex.tag != TagFlatDollar {
			if m := ex.re.FindStringSubmatch(raw); m != nil {
				return parseNumber(m[1])
			}
			continue
		}

		// Bare-dollar fallback: take the first amount not adjacent to
		// "spend" on either side, otherwise we would read the threshold
		// as the reward.
		for _, loc := range ex.re.FindAllStringSubmatchIndex(raw, -1) {
			if spendAfterRe.MatchString(raw[loc[1]:]) {
				continue
			}
			if spendBeforeRe.MatchString(raw[:loc[0]]) {
				continue
			}
			return parseNumber(raw[loc[2]:loc[3]])
		}
	}
	return 0, false
}

func minSpend(raw string) (float64, bool) {
	m := minSpendRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	return parseNumber(m[1])
}

// parseNumber converts a matched numeric token, tolerating thousands
// separators ("1,500").
func parseNumber(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
