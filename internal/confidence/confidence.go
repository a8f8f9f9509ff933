// Package confidence estimates whether a cashback/affiliate relationship
// exists for a merchant domain, from a known reliability tier plus observed
// page signals. Scoring is additive with fixed per-source weights and a full
// breakdown for auditability.
package confidence

import (
	"fmt"
	"time"

	"dealstack-api/internal/models"
)

// Per-source weights.
const (
	baseHigh   = 40
	baseMedium = 25
	baseLow    = 10

	weightURLParams        = 15
	weightRedirectLinks    = 20
	weightAffiliateScripts = 15
	weightCouponField      = 10

	bonusMultiPortal   = 5  // listed on more than 2 cashback portals
	bonusCorroboration = 10 // two or more distinct signal types fired
	bonusCheckoutPage  = 5

	multiPortalThreshold = 2
)

// Level cut points.
const (
	highThreshold   = 60
	mediumThreshold = 35
	lowThreshold    = 15
)

// TTL is how long a computed confidence record stays valid. Reads past
// expiry are cache misses and must trigger recomputation.
const TTL = 24 * time.Hour

// Score computes the affiliate confidence for a merchant domain. It is pure:
// same inputs, same output (modulo ComputedAt, supplied by the caller).
func Score(domain string, knownReliability string, signals models.SignalSet, now time.Time) models.AffiliateConfidence {
	var total int
	var breakdown []models.ScorePart

	add := func(source string, points int, detail string) {
		total += points
		breakdown = append(breakdown, models.ScorePart{Source: source, Points: points, Detail: detail})
	}

	if base := reliabilityBase(knownReliability); base > 0 {
		add("reliability", base, fmt.Sprintf("known reliability tier: %s", knownReliability))
	}
	if signals.PortalCount > multiPortalThreshold {
		add("portals", bonusMultiPortal, fmt.Sprintf("listed on %d cashback portals", signals.PortalCount))
	}

	fired := 0
	if signals.URLParams {
		fired++
		add("url_params", weightURLParams, "affiliate tracking parameters in URL")
	}
	if signals.RedirectLinks {
		fired++
		add("redirect_links", weightRedirectLinks, "affiliate redirect links on page")
	}
	if signals.AffiliateScripts {
		fired++
		add("affiliate_scripts", weightAffiliateScripts, "affiliate network scripts loaded")
	}
	if signals.CouponField {
		fired++
		add("coupon_field", weightCouponField, "coupon/promo code field present")
	}

	if fired >= 2 {
		add("corroboration", bonusCorroboration, fmt.Sprintf("%d distinct signal types observed", fired))
	}
	if signals.CheckoutPage {
		add("checkout_page", bonusCheckoutPage, "checkout or cart page")
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	level := levelFor(total)
	return models.AffiliateConfidence{
		Domain:     domain,
		Score:      total,
		Level:      level,
		Label:      labelFor(level),
		Breakdown:  breakdown,
		ComputedAt: now,
	}
}

func reliabilityBase(tier string) int {
	switch tier {
	case "high":
		return baseHigh
	case "medium":
		return baseMedium
	case "low":
		return baseLow
	default:
		return 0
	}
}

func levelFor(score int) models.ConfidenceLevel {
	switch {
	case score >= highThreshold:
		return models.ConfidenceHigh
	case score >= mediumThreshold:
		return models.ConfidenceMedium
	case score >= lowThreshold:
		return models.ConfidenceLow
	default:
		return models.ConfidenceNone
	}
}

func labelFor(level models.ConfidenceLevel) string {
	switch level {
	case models.ConfidenceHigh:
		return "Cashback likely available"
	case models.ConfidenceMedium:
		return "Cashback possibly available"
	case models.ConfidenceLow:
		return "Weak cashback signals"
	default:
		return "No cashback signals found"
	}
}
