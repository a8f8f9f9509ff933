package database

import (
	"path/filepath"
	"testing"
	"time"

	"dealstack-api/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDomainRecordRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	rec := models.DomainRecord{
		Domain:       "example.com",
		TotalReports: 2,
		LastReportAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Aggregated: models.Aggregates{
			Cashback: models.TypeAggregate{
				Count:      2,
				Rates:      []float64{3, 5},
				AvgRate:    4,
				LastPortal: "Rakuten",
			},
		},
	}

	if err := db.PutDomainRecord("example.com", rec); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	got, err := db.GetDomainRecord("example.com")
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	if got == nil {
		t.Fatal("Expected stored record")
	}
	if got.TotalReports != 2 || got.Aggregated.Cashback.AvgRate != 4 {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if !got.LastReportAt.Equal(rec.LastReportAt) {
		t.Errorf("Expected last report at %v, got %v", rec.LastReportAt, got.LastReportAt)
	}
}

func TestGetDomainRecord_MissingIsNilNotError(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetDomainRecord("never-reported.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing domain, got %+v", got)
	}
}

func TestPutDomainRecord_Upserts(t *testing.T) {
	db := setupTestDB(t)

	if err := db.PutDomainRecord("example.com", models.DomainRecord{Domain: "example.com", TotalReports: 1}); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := db.PutDomainRecord("example.com", models.DomainRecord{Domain: "example.com", TotalReports: 5}); err != nil {
		t.Fatalf("Failed to overwrite record: %v", err)
	}

	got, err := db.GetDomainRecord("example.com")
	if err != nil {
		t.Fatalf("Failed to load record: %v", err)
	}
	if got == nil || got.TotalReports != 5 {
		t.Errorf("Expected upserted record with 5 reports, got %+v", got)
	}
}

func TestDeleteDomainRecord(t *testing.T) {
	db := setupTestDB(t)

	if err := db.PutDomainRecord("example.com", models.DomainRecord{Domain: "example.com"}); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := db.DeleteDomainRecord("example.com"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	got, err := db.GetDomainRecord("example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected record gone, got %+v", got)
	}

	// Deleting again is a no-op.
	if err := db.DeleteDomainRecord("example.com"); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

func TestListDomains(t *testing.T) {
	db := setupTestDB(t)

	for _, d := range []string{"a.com", "b.com"} {
		if err := db.PutDomainRecord(d, models.DomainRecord{Domain: d}); err != nil {
			t.Fatalf("Failed to store record: %v", err)
		}
	}

	domains, err := db.ListDomains()
	if err != nil {
		t.Fatalf("Failed to list domains: %v", err)
	}
	if len(domains) != 2 {
		t.Errorf("Expected 2 domains, got %v", domains)
	}
}
