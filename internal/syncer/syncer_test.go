package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dealstack-api/internal/events"
	"dealstack-api/internal/features"
	"dealstack-api/internal/models"
)

func TestSyncDomainRecord_PostsPayload(t *testing.T) {
	var got syncPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rec := models.DomainRecord{
		Domain:       "example.com",
		TotalReports: 3,
		LastReportAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}

	if err := New(srv.URL).SyncDomainRecord(context.Background(), "example.com", rec); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Domain != "example.com" || got.Record.TotalReports != 3 {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

func TestSyncDomainRecord_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).SyncDomainRecord(context.Background(), "example.com", models.DomainRecord{Domain: "example.com"})
	if err == nil {
		t.Error("Expected error for non-2xx response")
	}
}

func TestSyncDomainRecord_UnreachableEndpoint(t *testing.T) {
	err := New("http://127.0.0.1:1/sync").SyncDomainRecord(context.Background(), "example.com", models.DomainRecord{Domain: "example.com"})
	if err == nil {
		t.Error("Expected error for unreachable endpoint")
	}
}

func TestHook_GatedByRemoteSyncFlag(t *testing.T) {
	var posts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&posts, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	flags := features.NewManager()
	flags.Register(features.FeatureRemoteSync, false, "")

	hook := Hook(flags, New(srv.URL))
	event := events.Event{
		Type:      events.EventReportReceived,
		Timestamp: time.Now(),
		Data: events.ReportReceivedData{
			Domain: "example.com",
			Record: models.DomainRecord{Domain: "example.com", TotalReports: 1},
		},
	}

	if err := hook(context.Background(), event); err != nil {
		t.Fatalf("Unexpected error with flag disabled: %v", err)
	}
	if n := atomic.LoadInt64(&posts); n != 0 {
		t.Errorf("Expected no posts with flag disabled, got %d", n)
	}

	// Enabling the flag at runtime turns delivery on without re-wiring.
	flags.Enable(features.FeatureRemoteSync)

	if err := hook(context.Background(), event); err != nil {
		t.Fatalf("Unexpected error with flag enabled: %v", err)
	}
	if n := atomic.LoadInt64(&posts); n != 1 {
		t.Errorf("Expected 1 post with flag enabled, got %d", n)
	}
}
