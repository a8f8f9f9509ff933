package models

import "time"

// OfferKind classifies what an offer value string promises.
type OfferKind string

const (
	KindPercent OfferKind = "percent"
	KindFlat    OfferKind = "flat"
	KindUnknown OfferKind = "unknown"
)

// ParsedOffer is the structured reading of a free-text offer value string.
// It is derived, never persisted; recompute it from the raw string as needed.
type ParsedOffer struct {
	Percent    *float64  `json:"percent"`
	FlatAmount *float64  `json:"flat_amount"`
	MinSpend   *float64  `json:"min_spend"`
	Kind       OfferKind `json:"kind"`
}

// ScoreBand buckets a deal score for display and sorting.
type ScoreBand string

const (
	BandElite  ScoreBand = "Elite"
	BandStrong ScoreBand = "Strong"
	BandDecent ScoreBand = "Decent"
	BandLow    ScoreBand = "Low"
)

// DealScore ranks an offer on a 0-100 scale.
type DealScore struct {
	FinalScore float64   `json:"final_score"`
	Band       ScoreBand `json:"band"`
}

// ConfidenceLevel bands an affiliate confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceNone   ConfidenceLevel = "none"
)

// ScorePart records one contributing source in a confidence breakdown.
type ScorePart struct {
	Source string `json:"source"`
	Points int    `json:"points"`
	Detail string `json:"detail"`
}

// AffiliateConfidence estimates whether a cashback/affiliate relationship
// exists for a merchant domain. Cached per domain with a 24h expiry.
type AffiliateConfidence struct {
	Domain     string          `json:"domain"`
	Score      int             `json:"score"`
	Level      ConfidenceLevel `json:"level"`
	Label      string          `json:"label"`
	Breakdown  []ScorePart     `json:"breakdown"`
	ComputedAt time.Time       `json:"computed_at"`
}

// SignalSet is a sparse set of page-level observations fed to the
// confidence scorer. Absent flags simply contribute nothing.
type SignalSet struct {
	URLParams        bool `json:"url_params"`
	RedirectLinks    bool `json:"redirect_links"`
	AffiliateScripts bool `json:"affiliate_scripts"`
	CouponField      bool `json:"coupon_field"`
	CheckoutPage     bool `json:"checkout_page"`
	PortalCount      int  `json:"portal_count"`
}

// ReportType classifies a crowdsourced report.
type ReportType string

const (
	ReportCashback ReportType = "cashback"
	ReportPromo    ReportType = "promo"
	ReportNothing  ReportType = "nothing"
)

// Report is a single community-submitted observation for a merchant domain.
type Report struct {
	ID          string     `json:"id"` // uuid
	Type        ReportType `json:"type"`
	Portal      string     `json:"portal,omitempty"`
	Rate        *float64   `json:"rate,omitempty"`
	FixedAmount string     `json:"fixed_amount,omitempty"`
	ReportedAt  time.Time  `json:"reported_at"`
}

// TypeAggregate is the rolling aggregate for one report type on a domain.
// Count only ever increases; Rates holds at most the last 10 numeric rates
// (oldest evicted first) and AvgRate is the mean over that window.
type TypeAggregate struct {
	Count        int       `json:"count"`
	Rates        []float64 `json:"rates"`
	AvgRate      float64   `json:"avg_rate"`
	LastPortal   string    `json:"last_portal,omitempty"`
	LastFixed    string    `json:"last_fixed,omitempty"`
	LastReportAt time.Time `json:"last_report_at"`
}

// Aggregates groups the per-type rolling aggregates.
type Aggregates struct {
	Cashback TypeAggregate `json:"cashback"`
	Promo    TypeAggregate `json:"promo"`
}

// DomainRecord is the persisted crowdsourced state for one merchant domain.
// Reports is newest-first and capped at 20 entries.
type DomainRecord struct {
	Domain       string     `json:"domain"`
	Reports      []Report   `json:"reports"`
	TotalReports int        `json:"total_reports"`
	Aggregated   Aggregates `json:"aggregated"`
	LastReportAt time.Time  `json:"last_report_at"`
}

// StackComponents is the input to the stack calculator. Every field except
// OriginalPrice is optional; absent components contribute nothing.
type StackComponents struct {
	OriginalPrice         float64  `json:"original_price"`
	SignupDiscountPercent *float64 `json:"signup_discount_percent,omitempty"`
	CardOfferBack         *float64 `json:"card_offer_back,omitempty"`
	CardOfferMinSpend     *float64 `json:"card_offer_min_spend,omitempty"`
	CashbackPercent       *float64 `json:"cashback_percent,omitempty"`
	CashbackFixed         *float64 `json:"cashback_fixed,omitempty"`
	PortalName            string   `json:"portal_name,omitempty"`
}

// DealCalculation is the derived result of stacking savings components.
// Never mutated after creation; recomputed wholesale on any input change.
type DealCalculation struct {
	TotalSavings             float64  `json:"total_savings"`
	FinalCost                float64  `json:"final_cost"`
	EffectiveDiscountPercent float64  `json:"effective_discount_percent"`
	Breakdown                []string `json:"breakdown"`
	Summary                  string   `json:"summary"`
}

// ParseOfferRequest is the request body for parsing/scoring an offer string.
type ParseOfferRequest struct {
	Value string `json:"value"`
}

// ScoreOfferResponse bundles the parse and the score for one offer string.
type ScoreOfferResponse struct {
	Parsed ParsedOffer `json:"parsed"`
	Score  DealScore   `json:"score"`
}

// ConfidenceRequest is the request body for computing affiliate confidence.
// If HTML is provided it is mined for signals which are merged (OR) with
// the explicitly supplied ones.
type ConfidenceRequest struct {
	KnownReliability string    `json:"known_reliability,omitempty"` // high|medium|low
	Signals          SignalSet `json:"signals"`
	PageURL          string    `json:"page_url,omitempty"`
	HTML             string    `json:"html,omitempty"`
	Force            bool      `json:"force,omitempty"` // skip the cache
}

// SubmitReportRequest is the request body for a crowdsourced report.
type SubmitReportRequest struct {
	Type        ReportType `json:"type"`
	Portal      string     `json:"portal,omitempty"`
	Rate        *float64   `json:"rate,omitempty"`
	FixedAmount string     `json:"fixed_amount,omitempty"`
}

// ResolveMerchantRequest is the request body for fuzzy merchant resolution.
type ResolveMerchantRequest struct {
	Name       string   `json:"name"`
	Candidates []string `json:"candidates"`
}

// ResolveMerchantResponse carries the matched identifier, if any, plus the
// static storefront URL when one is known.
type ResolveMerchantResponse struct {
	Match string `json:"match"`
	URL   string `json:"url,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
