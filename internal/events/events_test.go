package events

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"dealstack-api/internal/models"
)

// notifyWriter buffers log output and signals on every write, so tests can
// wait for the async hook goroutine instead of sleeping.
type notifyWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	ch  chan struct{}
}

func (w *notifyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	select {
	case w.ch <- struct{}{}:
	default:
	}
	return n, err
}

func (w *notifyWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestPublish_DeliversToSubscribers(t *testing.T) {
	m := NewManager(true)
	defer m.Shutdown()

	got := make(chan Event, 1)
	m.Subscribe(EventReportReceived, func(ctx context.Context, e Event) error {
		got <- e
		return nil
	})

	m.PublishReportReceived(context.Background(), "example.com", models.Report{}, models.DomainRecord{Domain: "example.com"})

	select {
	case e := <-got:
		data, ok := e.Data.(ReportReceivedData)
		if !ok || data.Domain != "example.com" {
			t.Errorf("Unexpected event data: %+v", e.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected event delivery")
	}
}

func TestPublish_HookFailureIsLoggedNotFatal(t *testing.T) {
	w := &notifyWriter{ch: make(chan struct{}, 1)}
	prev := log.Writer()
	log.SetOutput(w)
	t.Cleanup(func() { log.SetOutput(prev) })

	m := NewManager(true)
	defer m.Shutdown()

	m.Subscribe(EventReportReceived, func(ctx context.Context, e Event) error {
		return errors.New("remote unavailable")
	})

	m.PublishReportReceived(context.Background(), "example.com", models.Report{}, models.DomainRecord{})

	select {
	case <-w.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected hook failure to be logged")
	}

	out := w.String()
	if !strings.Contains(out, "WARNING") || !strings.Contains(out, string(EventReportReceived)) {
		t.Errorf("Expected a warning naming the event type, got %q", out)
	}
}

func TestPublish_DisabledManagerIsSilent(t *testing.T) {
	m := NewManager(false)

	called := make(chan struct{}, 1)
	m.Subscribe(EventReportReceived, func(ctx context.Context, e Event) error {
		called <- struct{}{}
		return nil
	})

	m.PublishReportReceived(context.Background(), "example.com", models.Report{}, models.DomainRecord{})

	select {
	case <-called:
		t.Error("Expected no delivery from a disabled manager")
	case <-time.After(100 * time.Millisecond):
	}
}
