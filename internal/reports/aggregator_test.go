package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"dealstack-api/internal/models"
)

func fptr(v float64) *float64 { return &v }

func report(typ models.ReportType, rate *float64, at time.Time) models.Report {
	return models.Report{
		ID:         uuid.New().String(),
		Type:       typ,
		Rate:       rate,
		ReportedAt: at,
	}
}

func TestApply_InitializesFreshRecord(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	got := Apply(nil, "example.com", report(models.ReportCashback, fptr(5), at))

	if got.Domain != "example.com" {
		t.Errorf("Expected domain example.com, got %s", got.Domain)
	}
	if got.TotalReports != 1 {
		t.Errorf("Expected 1 total report, got %d", got.TotalReports)
	}
	if got.Aggregated.Cashback.Count != 1 {
		t.Errorf("Expected cashback count 1, got %d", got.Aggregated.Cashback.Count)
	}
	if got.Aggregated.Cashback.AvgRate != 5 {
		t.Errorf("Expected avg rate 5, got %v", got.Aggregated.Cashback.AvgRate)
	}
	if !got.LastReportAt.Equal(at) {
		t.Errorf("Expected last report at %v, got %v", at, got.LastReportAt)
	}
}

func TestApply_NothingReportIsIgnored(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rec := Apply(nil, "example.com", report(models.ReportCashback, fptr(3), at))

	got := Apply(&rec, "example.com", report(models.ReportNothing, nil, at.Add(time.Hour)))

	if got.TotalReports != rec.TotalReports {
		t.Errorf("Expected total reports unchanged (%d), got %d", rec.TotalReports, got.TotalReports)
	}
	if !got.LastReportAt.Equal(rec.LastReportAt) {
		t.Errorf("Expected last report timestamp unchanged (%v), got %v", rec.LastReportAt, got.LastReportAt)
	}
	if len(got.Reports) != len(rec.Reports) {
		t.Errorf("Expected report list unchanged (%d entries), got %d", len(rec.Reports), len(got.Reports))
	}
}

func TestApply_RollingRateWindow(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	var rec models.DomainRecord
	prev := (*models.DomainRecord)(nil)
	for i := 1; i <= 11; i++ {
		rec = Apply(prev, "example.com", report(models.ReportCashback, fptr(float64(i)), at.Add(time.Duration(i)*time.Hour)))
		prev = &rec
	}

	agg := rec.Aggregated.Cashback
	if agg.Count != 11 {
		t.Errorf("Expected count 11, got %d", agg.Count)
	}
	if len(agg.Rates) != RateWindowSize {
		t.Fatalf("Expected window of %d rates, got %d", RateWindowSize, len(agg.Rates))
	}
	for i, want := 0, 2.0; i < len(agg.Rates); i, want = i+1, want+1 {
		if agg.Rates[i] != want {
			t.Errorf("Rates[%d] = %v, want %v", i, agg.Rates[i], want)
		}
	}
	if agg.AvgRate != 6.5 {
		t.Errorf("Expected rolling average 6.5, got %v", agg.AvgRate)
	}
}

func TestApply_ReportListCappedAtTwenty(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	var rec models.DomainRecord
	prev := (*models.DomainRecord)(nil)
	for i := 0; i < 25; i++ {
		rec = Apply(prev, "example.com", report(models.ReportPromo, nil, at.Add(time.Duration(i)*time.Minute)))
		prev = &rec
	}

	if len(rec.Reports) != MaxStoredReports {
		t.Errorf("Expected %d stored reports, got %d", MaxStoredReports, len(rec.Reports))
	}
	if rec.TotalReports != 25 {
		t.Errorf("Expected total reports 25, got %d", rec.TotalReports)
	}
	// Newest first.
	if !rec.Reports[0].ReportedAt.After(rec.Reports[1].ReportedAt) {
		t.Error("Expected reports ordered newest first")
	}
}

func TestApply_LastSeenDetailOverwrites(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	first := models.Report{ID: uuid.New().String(), Type: models.ReportCashback, Portal: "Rakuten", Rate: fptr(4), ReportedAt: at}
	second := models.Report{ID: uuid.New().String(), Type: models.ReportCashback, Portal: "TopCashback", ReportedAt: at.Add(time.Hour)}
	promo := models.Report{ID: uuid.New().String(), Type: models.ReportPromo, FixedAmount: "$20 off", ReportedAt: at.Add(2 * time.Hour)}

	rec := Apply(nil, "example.com", first)
	rec = Apply(&rec, "example.com", second)
	rec = Apply(&rec, "example.com", promo)

	if rec.Aggregated.Cashback.LastPortal != "TopCashback" {
		t.Errorf("Expected last portal TopCashback, got %s", rec.Aggregated.Cashback.LastPortal)
	}
	if rec.Aggregated.Promo.LastFixed != "$20 off" {
		t.Errorf("Expected last fixed $20 off, got %s", rec.Aggregated.Promo.LastFixed)
	}
	// A rate-less report leaves the window and average alone.
	if rec.Aggregated.Cashback.AvgRate != 4 {
		t.Errorf("Expected avg rate 4, got %v", rec.Aggregated.Cashback.AvgRate)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rec := Apply(nil, "example.com", report(models.ReportCashback, fptr(5), at))

	before := rec.TotalReports
	ratesBefore := len(rec.Aggregated.Cashback.Rates)

	_ = Apply(&rec, "example.com", report(models.ReportCashback, fptr(7), at.Add(time.Hour)))

	if rec.TotalReports != before {
		t.Error("Apply mutated the prior record's TotalReports")
	}
	if len(rec.Aggregated.Cashback.Rates) != ratesBefore {
		t.Error("Apply mutated the prior record's rate window")
	}
}

func TestApply_Deterministic(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rec := Apply(nil, "example.com", report(models.ReportCashback, fptr(5), at))

	r := models.Report{ID: "fixed-id", Type: models.ReportPromo, Rate: fptr(15), ReportedAt: at.Add(time.Hour)}
	a := Apply(&rec, "example.com", r)
	b := Apply(&rec, "example.com", r)

	if a.TotalReports != b.TotalReports || a.Aggregated.Promo.AvgRate != b.Aggregated.Promo.AvgRate ||
		!a.LastReportAt.Equal(b.LastReportAt) || len(a.Reports) != len(b.Reports) {
		t.Error("Expected identical results for identical inputs")
	}
}
