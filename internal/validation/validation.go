package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"dealstack-api/internal/models"
)

var domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NormalizeDomain lowercases and strips scheme/www/path noise so every
// caller keys records the same way.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(SanitizeString(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

// ValidateDomain checks a normalized merchant domain.
func ValidateDomain(domain string) error {
	if domain == "" {
		return &ValidationError{Field: "domain", Message: "is required"}
	}
	if len(domain) > 253 {
		return &ValidationError{Field: "domain", Message: "exceeds maximum length"}
	}
	if !domainRegex.MatchString(domain) {
		return &ValidationError{Field: "domain", Message: "must be a valid domain name"}
	}
	return nil
}

// ValidateReliability checks an optional known-reliability tier.
func ValidateReliability(tier string) error {
	switch tier {
	case "", "high", "medium", "low":
		return nil
	default:
		return &ValidationError{Field: "known_reliability", Message: "must be one of high, medium, low"}
	}
}

// ValidateReport checks a crowdsourced report submission.
func ValidateReport(req models.SubmitReportRequest) error {
	switch req.Type {
	case models.ReportCashback, models.ReportPromo, models.ReportNothing:
	default:
		return &ValidationError{Field: "type", Message: "must be one of cashback, promo, nothing"}
	}

	if req.Rate != nil {
		if *req.Rate < 0 {
			return &ValidationError{Field: "rate", Message: "must be non-negative"}
		}
		if *req.Rate > 100 {
			return &ValidationError{Field: "rate", Message: "cannot exceed 100"}
		}
		if req.Type == models.ReportNothing {
			return &ValidationError{Field: "rate", Message: "cannot accompany a 'nothing' report"}
		}
	}

	if len(req.Portal) > 100 {
		return &ValidationError{Field: "portal", Message: "exceeds maximum length"}
	}
	if len(req.FixedAmount) > 200 {
		return &ValidationError{Field: "fixed_amount", Message: "exceeds maximum length"}
	}

	return nil
}

// ValidateStackComponents rejects inputs outside the calculator's documented
// domain; the positive-price rule itself lives in the calculator.
func ValidateStackComponents(c models.StackComponents) error {
	if c.OriginalPrice <= 0 {
		return &ValidationError{Field: "original_price", Message: "must be positive"}
	}

	percents := map[string]*float64{
		"signup_discount_percent": c.SignupDiscountPercent,
		"cashback_percent":        c.CashbackPercent,
	}
	for field, v := range percents {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			return &ValidationError{Field: field, Message: "must be between 0 and 100"}
		}
	}

	amounts := map[string]*float64{
		"card_offer_back":      c.CardOfferBack,
		"card_offer_min_spend": c.CardOfferMinSpend,
		"cashback_fixed":       c.CashbackFixed,
	}
	for field, v := range amounts {
		if v != nil && *v < 0 {
			return &ValidationError{Field: field, Message: "must be non-negative"}
		}
	}

	return nil
}

// ValidateOfferValue bounds a raw offer value string.
func ValidateOfferValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: "value", Message: "is required"}
	}
	if len(value) > 500 {
		return &ValidationError{Field: "value", Message: "exceeds maximum length"}
	}
	return nil
}

// SanitizeString removes control characters and trims whitespace.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
