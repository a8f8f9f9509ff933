package features

import (
	"sync"
)

// FeatureFlag represents a feature flag configuration.
type FeatureFlag struct {
	Name        string
	Enabled     bool
	Description string
}

// Manager manages feature flags.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]*FeatureFlag
}

// NewManager creates a new feature flag manager.
func NewManager() *Manager {
	return &Manager{
		flags: make(map[string]*FeatureFlag),
	}
}

// Register registers a new feature flag.
func (m *Manager) Register(name string, enabled bool, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flags[name] = &FeatureFlag{
		Name:        name,
		Enabled:     enabled,
		Description: description,
	}
}

// IsEnabled checks if a feature flag is enabled. Unknown flags read as
// disabled.
func (m *Manager) IsEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flag, exists := m.flags[name]
	if !exists {
		return false
	}

	return flag.Enabled
}

// Enable enables a feature flag.
func (m *Manager) Enable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flag, exists := m.flags[name]; exists {
		flag.Enabled = true
	}
}

// Disable disables a feature flag.
func (m *Manager) Disable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flag, exists := m.flags[name]; exists {
		flag.Enabled = false
	}
}

// GetAll returns a copy of all feature flags.
func (m *Manager) GetAll() map[string]*FeatureFlag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*FeatureFlag)
	for k, v := range m.flags {
		result[k] = &FeatureFlag{
			Name:        v.Name,
			Enabled:     v.Enabled,
			Description: v.Description,
		}
	}
	return result
}

// Predefined feature flag names
const (
	// FeatureConfidenceCache enables/disables the 24h confidence cache
	FeatureConfidenceCache = "confidence_cache"
	// FeatureRemoteSync enables/disables fire-and-forget record sync
	FeatureRemoteSync = "remote_sync"
	// FeatureSignalExtraction enables mining signals from posted page HTML
	FeatureSignalExtraction = "signal_extraction"
)
