package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/histonode/internal/events"
)

// Indicator LED and patterns.
const (
	IndicatorLED     = "system"
	PatternLocked    = PatternSolid
	PatternAutomatic = PatternHeartbeat
)

// Manager subscribes to lock changes and mirrors the exposure lock on the
// system LED: solid while locked, heartbeat while the controller meters.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe func()
	logger      *slog.Logger

	mu     sync.Mutex
	locked bool
}

// NewManager creates a new LED manager that reacts to lock changes. locked is
// the state at startup.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger, locked bool) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
		locked:     locked,
	}
}

// Start shows the initial state and begins listening for lock events.
func (m *Manager) Start() {
	m.mu.Lock()
	m.apply(m.locked)
	m.mu.Unlock()

	m.unsubscribe = m.eventBus.Subscribe(func(e events.LockChangedEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("LED manager started")
}

// Stop unsubscribes from events.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.logger.Info("LED manager stopped")
}

// Locked returns the state last shown.
func (m *Manager) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

func (m *Manager) handleEvent(event events.LockChangedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.IsLocked() == m.locked {
		return
	}
	m.locked = event.IsLocked()
	m.logger.Debug("Exposure lock changed", "locked", m.locked, "iso", event.ISO, "shutter", event.Shutter)
	m.apply(m.locked)
}

func (m *Manager) apply(locked bool) {
	pattern := PatternAutomatic
	if locked {
		pattern = PatternLocked
	}
	if err := m.controller.Set(IndicatorLED, true, pattern); err != nil {
		m.logger.Warn("Failed to set indicator LED", "pattern", pattern, "error", err)
	}
}

// GetController returns the underlying LED controller for direct API access
func (m *Manager) GetController() Controller {
	return m.controller
}
