package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"dealstack-api/internal/cache"
	"dealstack-api/internal/confidence"
	"dealstack-api/internal/database"
	"dealstack-api/internal/dealscore"
	"dealstack-api/internal/events"
	"dealstack-api/internal/features"
	"dealstack-api/internal/merchant"
	"dealstack-api/internal/models"
	"dealstack-api/internal/offerparse"
	"dealstack-api/internal/reports"
	"dealstack-api/internal/stack"
	"dealstack-api/internal/validation"
)

// Service wires the pure valuation core to storage, the confidence cache,
// events, and the merchant matcher.
type Service struct {
	db      *database.DB
	cache   cache.Cache
	events  *events.Manager
	flags   *features.Manager
	matcher *merchant.Matcher

	// Domain records are read-modify-written as whole objects, so writes
	// for one domain must be serialized.
	locksMu     sync.Mutex
	domainLocks map[string]*sync.Mutex
}

// NewService creates a new service instance.
func NewService(db *database.DB, c cache.Cache, ev *events.Manager, flags *features.Manager, matcher *merchant.Matcher) *Service {
	return &Service{
		db:          db,
		cache:       c,
		events:      ev,
		flags:       flags,
		matcher:     matcher,
		domainLocks: make(map[string]*sync.Mutex),
	}
}

// ParseOffer extracts structured discount semantics from an offer string.
func (s *Service) ParseOffer(value string) (models.ParsedOffer, error) {
	if err := validation.ValidateOfferValue(value); err != nil {
		return models.ParsedOffer{}, err
	}
	return offerparse.Parse(value), nil
}

// ScoreOffer parses and ranks an offer string.
func (s *Service) ScoreOffer(value string) (models.ScoreOfferResponse, error) {
	if err := validation.ValidateOfferValue(value); err != nil {
		return models.ScoreOfferResponse{}, err
	}
	return models.ScoreOfferResponse{
		Parsed: offerparse.Parse(value),
		Score:  dealscore.Score(value),
	}, nil
}

// Confidence returns the affiliate confidence for a domain, serving a cached
// record when one is fresh. Expired or missing entries trigger recomputation;
// stale confidence is never returned.
func (s *Service) Confidence(ctx context.Context, domain string, req models.ConfidenceRequest) (models.AffiliateConfidence, error) {
	domain = validation.NormalizeDomain(domain)
	if err := validation.ValidateDomain(domain); err != nil {
		return models.AffiliateConfidence{}, err
	}
	if err := validation.ValidateReliability(req.KnownReliability); err != nil {
		return models.AffiliateConfidence{}, err
	}

	useCache := s.flags.IsEnabled(features.FeatureConfidenceCache) && !req.Force
	if useCache {
		var cached models.AffiliateConfidence
		err := cache.GetJSON(ctx, s.cache, cache.ConfidenceKey(domain), &cached)
		switch {
		case err == nil:
			return cached, nil
		case err != cache.ErrNotFound:
			// Cache trouble degrades to recomputation.
			log.Printf("WARNING: confidence cache read failed for %s: %v", domain, err)
		}
	}

	signals := req.Signals
	if req.HTML != "" && s.flags.IsEnabled(features.FeatureSignalExtraction) {
		signals = mergeSignals(signals, confidence.ExtractSignals(req.PageURL, req.HTML))
	}

	conf := confidence.Score(domain, req.KnownReliability, signals, time.Now().UTC())

	if s.flags.IsEnabled(features.FeatureConfidenceCache) {
		if err := cache.SetJSON(ctx, s.cache, cache.ConfidenceKey(domain), conf, confidence.TTL); err != nil {
			log.Printf("WARNING: confidence cache write failed for %s: %v", domain, err)
		}
	}

	s.events.PublishConfidenceComputed(ctx, domain, conf)
	return conf, nil
}

// SubmitReport folds a community report into the domain's stored record.
// Writes are serialized per domain; the fold itself is pure.
func (s *Service) SubmitReport(ctx context.Context, domain string, req models.SubmitReportRequest) (models.DomainRecord, error) {
	domain = validation.NormalizeDomain(domain)
	if err := validation.ValidateDomain(domain); err != nil {
		return models.DomainRecord{}, err
	}
	if err := validation.ValidateReport(req); err != nil {
		return models.DomainRecord{}, err
	}

	report := models.Report{
		ID:          uuid.New().String(),
		Type:        req.Type,
		Portal:      validation.SanitizeString(req.Portal),
		Rate:        req.Rate,
		FixedAmount: validation.SanitizeString(req.FixedAmount),
		ReportedAt:  time.Now().UTC(),
	}

	lock := s.domainLock(domain)
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.db.GetDomainRecord(domain)
	if err != nil {
		return models.DomainRecord{}, fmt.Errorf("failed to load domain record: %w", err)
	}

	next := reports.Apply(prev, domain, report)

	// "Nothing found" reports contribute no signal and are not persisted.
	if report.Type == models.ReportNothing {
		return next, nil
	}

	if err := s.db.PutDomainRecord(domain, next); err != nil {
		return models.DomainRecord{}, fmt.Errorf("failed to store domain record: %w", err)
	}

	s.events.PublishReportReceived(ctx, domain, report, next)
	return next, nil
}

// GetDomainRecord returns the stored record for a domain, or (nil, nil).
func (s *Service) GetDomainRecord(ctx context.Context, domain string) (*models.DomainRecord, error) {
	domain = validation.NormalizeDomain(domain)
	if err := validation.ValidateDomain(domain); err != nil {
		return nil, err
	}
	return s.db.GetDomainRecord(domain)
}

// DeleteDomainRecord removes a domain's record (explicit operator action).
func (s *Service) DeleteDomainRecord(ctx context.Context, domain string) error {
	domain = validation.NormalizeDomain(domain)
	if err := validation.ValidateDomain(domain); err != nil {
		return err
	}

	lock := s.domainLock(domain)
	lock.Lock()
	defer lock.Unlock()

	return s.db.DeleteDomainRecord(domain)
}

// CalculateStack composes savings components into one deal calculation.
// Cheap and stateless: safe to call on every editor keystroke.
func (s *Service) CalculateStack(ctx context.Context, components models.StackComponents) (models.DealCalculation, error) {
	if err := validation.ValidateStackComponents(components); err != nil {
		return models.DealCalculation{}, err
	}

	calc, err := stack.Calculate(components)
	if err != nil {
		return models.DealCalculation{}, err
	}

	s.events.PublishStackCalculated(ctx, components, calc)
	return calc, nil
}

// ResolveMerchant fuzzy-matches a merchant name or domain against candidate
// identifiers and attaches the static storefront URL when known.
func (s *Service) ResolveMerchant(name string, candidates []string) models.ResolveMerchantResponse {
	match := s.matcher.Resolve(name, candidates)
	resp := models.ResolveMerchantResponse{Match: match}
	if url := s.matcher.ResolveURL(name); url != "" {
		resp.URL = url
	}
	return resp
}

// domainLock returns the mutex serializing writes for one domain.
func (s *Service) domainLock(domain string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.domainLocks[domain]
	if !ok {
		lock = &sync.Mutex{}
		s.domainLocks[domain] = lock
	}
	return lock
}

// mergeSignals ORs extracted page signals into the explicitly supplied set.
func mergeSignals(a, b models.SignalSet) models.SignalSet {
	out := a
	out.URLParams = a.URLParams || b.URLParams
	out.RedirectLinks = a.RedirectLinks || b.RedirectLinks
	out.AffiliateScripts = a.AffiliateScripts || b.AffiliateScripts
	out.CouponField = a.CouponField || b.CouponField
	out.CheckoutPage = a.CheckoutPage || b.CheckoutPage
	if b.PortalCount > out.PortalCount {
		out.PortalCount = b.PortalCount
	}
	return out
}
