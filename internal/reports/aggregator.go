// Package reports folds noisy community-submitted cashback/promo reports
// into a bounded per-domain rolling aggregate.
package reports

import (
	"dealstack-api/internal/models"
)

const (
	// MaxStoredReports caps the raw report list per domain (newest first).
	MaxStoredReports = 20
	// RateWindowSize caps the rolling window of numeric rates per type.
	RateWindowSize = 10
)

// Apply folds one report into a domain record and returns the next record.
// It is pure: the prior record is never mutated, and the same (prev, report)
// always produces the same result. A nil prev initializes a fresh record.
//
// "Nothing found" reports are dropped entirely: they contribute no signal
// and must not dilute report counts or freshness timestamps.
func Apply(prev *models.DomainRecord, domain string, report models.Report) models.DomainRecord {
	next := clone(prev, domain)

	if report.Type == models.ReportNothing {
		return next
	}

	next.Reports = append([]models.Report{report}, next.Reports...)
	if len(next.Reports) > MaxStoredReports {
		next.Reports = next.Reports[:MaxStoredReports]
	}
	next.TotalReports++
	next.LastReportAt = report.ReportedAt

	var agg *models.TypeAggregate
	switch report.Type {
	case models.ReportCashback:
		agg = &next.Aggregated.Cashback
	case models.ReportPromo:
		agg = &next.Aggregated.Promo
	default:
		return next
	}

	agg.Count++
	agg.LastReportAt = report.ReportedAt

	if report.Rate != nil {
		agg.Rates = append(agg.Rates, *report.Rate)
		if len(agg.Rates) > RateWindowSize {
			agg.Rates = agg.Rates[len(agg.Rates)-RateWindowSize:]
		}
		agg.AvgRate = mean(agg.Rates)
	}

	// Non-numeric detail just overwrites the last-seen value.
	if report.Portal != "" {
		agg.LastPortal = report.Portal
	}
	if report.FixedAmount != "" {
		agg.LastFixed = report.FixedAmount
	}

	return next
}

// clone deep-copies prev so Apply never aliases the caller's slices.
func clone(prev *models.DomainRecord, domain string) models.DomainRecord {
	if prev == nil {
		return models.DomainRecord{Domain: domain}
	}

	next := *prev
	if next.Domain == "" {
		next.Domain = domain
	}

	next.Reports = append([]models.Report(nil), prev.Reports...)
	next.Aggregated.Cashback.Rates = append([]float64(nil), prev.Aggregated.Cashback.Rates...)
	next.Aggregated.Promo.Rates = append([]float64(nil), prev.Aggregated.Promo.Rates...)
	return next
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
