// Package syncer pushes per-domain crowdsourced records to a remote
// aggregation endpoint. Sync is strictly best-effort: failures are logged
// and swallowed, never retried, and never block report submission.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"dealstack-api/internal/events"
	"dealstack-api/internal/features"
	"dealstack-api/internal/models"
)

const requestTimeout = 10 * time.Second

// Syncer posts domain records to the remote aggregation endpoint.
type Syncer struct {
	endpoint string
	client   *http.Client
}

// New creates a syncer for the given endpoint.
func New(endpoint string) *Syncer {
	return &Syncer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type syncPayload struct {
	Domain string              `json:"domain"`
	Record models.DomainRecord `json:"record"`
}

// SyncDomainRecord posts one domain's record. Callers run it from a
// goroutine or event hook; the error return exists only for tests.
func (s *Syncer) SyncDomainRecord(ctx context.Context, domain string, record models.DomainRecord) error {
	body, err := json.Marshal(syncPayload{Domain: domain, Record: record})
	if err != nil {
		log.Printf("WARNING: sync: failed to encode record for %s: %v", domain, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("WARNING: sync: failed to build request for %s: %v", domain, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("WARNING: sync: failed to reach %s for %s: %v", s.endpoint, domain, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("sync: remote returned %d for %s", resp.StatusCode, domain)
		log.Printf("WARNING: %v", err)
		return err
	}

	return nil
}

// Hook adapts the syncer into a report-received event handler. The
// remote_sync flag is consulted per event, so sync can be toggled at
// runtime without re-wiring subscriptions.
func Hook(flags *features.Manager, s *Syncer) events.Handler {
	return func(ctx context.Context, e events.Event) error {
		if !flags.IsEnabled(features.FeatureRemoteSync) {
			return nil
		}
		data, ok := e.Data.(events.ReportReceivedData)
		if !ok {
			return nil
		}
		// The request context that published the event may already be
		// done by the time the hook runs.
		return s.SyncDomainRecord(context.Background(), data.Domain, data.Record)
	}
}
