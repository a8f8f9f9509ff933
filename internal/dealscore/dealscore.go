// Package dealscore ranks heterogeneous card offers on a single 0-100 scale
// so a $60 flat credit and a 2% category bonus can be sorted side by side.
package dealscore

import (
	"dealstack-api/internal/models"
	"dealstack-api/internal/offerparse"
)

// Scoring weights. Absolute cash back is the primary signal, percentage is
// secondary, and growing minimum-spend requirements drag the score down.
const (
	flatWeight    = 1.0
	flatCap       = 70.0
	percentWeight = 2.5
	percentCap    = 30.0
	spendDivisor  = 50.0
	spendCap      = 15.0
)

// Band cut points.
const (
	eliteThreshold  = 80.0
	strongThreshold = 60.0
	decentThreshold = 40.0
)

// Score parses an offer value string and ranks it. It never fails: strings
// that parse to nothing score 0 / Low.
func Score(offerValue string) models.DealScore {
	parsed := offerparse.Parse(offerValue)
	if parsed.Kind == models.KindUnknown {
		return models.DealScore{FinalScore: 0, Band: models.BandLow}
	}

	var score float64
	if parsed.FlatAmount != nil {
		score += capped(*parsed.FlatAmount*flatWeight, flatCap)
	}
	if parsed.Percent != nil {
		score += capped(*parsed.Percent*percentWeight, percentCap)
	}
	if parsed.MinSpend != nil {
		score -= capped(*parsed.MinSpend/spendDivisor, spendCap)
	}

	score = clamp(score, 0, 100)
	return models.DealScore{FinalScore: score, Band: BandFor(score)}
}

// BandFor maps a final score onto its display band using fixed cut points.
func BandFor(score float64) models.ScoreBand {
	switch {
	case score >= eliteThreshold:
		return models.BandElite
	case score >= strongThreshold:
		return models.BandStrong
	case score >= decentThreshold:
		return models.BandDecent
	default:
		return models.BandLow
	}
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
