// Package stack composes card offer, cashback, and promo savings into one
// final price with a fixed order of discount application.
//
// Order matters to the arithmetic and is deliberate:
//  1. the signup/promo percentage applies to the original price;
//  2. the card-offer minimum spend is checked against the ORIGINAL price
//     (the threshold qualifies the pre-discount transaction total);
//  3. cashback (percent or fixed) is computed on the ORIGINAL price, the
//     amount portals typically rebate on.
//
// The original-price basis for cashback is a policy assumption carried over
// from observed portal behavior, not a verified settlement rule.
package stack

import (
	"fmt"

	"dealstack-api/internal/models"
)

// Calculate computes the stacked savings for one purchase. It is stateless
// and idempotent: identical input yields identical output on every call.
// It fails only when OriginalPrice is not positive.
func Calculate(c models.StackComponents) (models.DealCalculation, error) {
	if c.OriginalPrice <= 0 {
		return models.DealCalculation{}, fmt.Errorf("original price must be positive, got %v", c.OriginalPrice)
	}

	var savings float64
	breakdown := []string{}

	if c.SignupDiscountPercent != nil && *c.SignupDiscountPercent > 0 {
		amount := c.OriginalPrice * *c.SignupDiscountPercent / 100
		savings += amount
		breakdown = append(breakdown, fmt.Sprintf("Signup discount: %s%% off $%.2f = $%.2f",
			trimPercent(*c.SignupDiscountPercent), c.OriginalPrice, amount))
	}

	if c.CardOfferBack != nil && *c.CardOfferBack > 0 {
		minSpend := 0.0
		if c.CardOfferMinSpend != nil {
			minSpend = *c.CardOfferMinSpend
		}
		if c.OriginalPrice >= minSpend {
			savings += *c.CardOfferBack
			if minSpend > 0 {
				breakdown = append(breakdown, fmt.Sprintf("Card offer: $%.2f back ($%.2f min spend met)",
					*c.CardOfferBack, minSpend))
			} else {
				breakdown = append(breakdown, fmt.Sprintf("Card offer: $%.2f back", *c.CardOfferBack))
			}
		}
		// Threshold unmet: the component is silently omitted from the
		// breakdown and contributes nothing.
	}

	portal := c.PortalName
	if portal == "" {
		portal = "portal"
	}
	if c.CashbackPercent != nil && *c.CashbackPercent > 0 {
		amount := c.OriginalPrice * *c.CashbackPercent / 100
		savings += amount
		breakdown = append(breakdown, fmt.Sprintf("Cashback via %s: %s%% of $%.2f = $%.2f",
			portal, trimPercent(*c.CashbackPercent), c.OriginalPrice, amount))
	} else if c.CashbackFixed != nil && *c.CashbackFixed > 0 {
		savings += *c.CashbackFixed
		breakdown = append(breakdown, fmt.Sprintf("Cashback via %s: $%.2f", portal, *c.CashbackFixed))
	}

	finalCost := c.OriginalPrice - savings
	if finalCost < 0 {
		finalCost = 0
	}
	effective := savings / c.OriginalPrice * 100

	return models.DealCalculation{
		TotalSavings:             savings,
		FinalCost:                finalCost,
		EffectiveDiscountPercent: effective,
		Breakdown:                breakdown,
		Summary: fmt.Sprintf("Stacking saves $%.2f for a final cost of $%.2f (%.1f%% off).",
			savings, finalCost, effective),
	}, nil
}

// trimPercent renders whole-number percentages without a trailing ".0".
func trimPercent(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
