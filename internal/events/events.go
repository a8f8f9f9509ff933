package events

import (
	"context"
	"log"
	"sync"
	"time"

	"dealstack-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventReportReceived is emitted when a crowdsourced report is folded
	// into a domain record. The remote sync hook subscribes here.
	EventReportReceived EventType = "report.received"
	// EventConfidenceComputed is emitted on a fresh (non-cached)
	// confidence computation.
	EventConfidenceComputed EventType = "confidence.computed"
	// EventStackCalculated is emitted when a stack calculation completes.
	EventStackCalculated EventType = "stack.calculated"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// ReportReceivedData contains data for report received events.
type ReportReceivedData struct {
	Domain string
	Report models.Report
	Record models.DomainRecord
}

// ConfidenceComputedData contains data for confidence computed events.
type ConfidenceComputedData struct {
	Domain     string
	Confidence models.AffiliateConfidence
}

// StackCalculatedData contains data for stack calculated events.
type StackCalculatedData struct {
	Components  models.StackComponents
	Calculation models.DealCalculation
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers. Handlers run
// asynchronously and never block the caller.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if !m.enabled {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				// Publishing stays best-effort; failures are logged only.
				log.Printf("WARNING: event hook for %s failed: %v", event.Type, err)
			}
		}(handler)
	}
}

// PublishReportReceived publishes a report received event.
func (m *Manager) PublishReportReceived(ctx context.Context, domain string, report models.Report, record models.DomainRecord) {
	m.Publish(ctx, EventReportReceived, ReportReceivedData{
		Domain: domain,
		Report: report,
		Record: record,
	})
}

// PublishConfidenceComputed publishes a confidence computed event.
func (m *Manager) PublishConfidenceComputed(ctx context.Context, domain string, conf models.AffiliateConfidence) {
	m.Publish(ctx, EventConfidenceComputed, ConfidenceComputedData{
		Domain:     domain,
		Confidence: conf,
	})
}

// PublishStackCalculated publishes a stack calculated event.
func (m *Manager) PublishStackCalculated(ctx context.Context, components models.StackComponents, calc models.DealCalculation) {
	m.Publish(ctx, EventStackCalculated, StackCalculatedData{
		Components:  components,
		Calculation: calc,
	})
}

// Shutdown shuts down the event manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
}
