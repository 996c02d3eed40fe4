package broadcast

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// Manager fans every event out to a set of named emitters, such as the local
// WebSocket hub, the Redis relay and the MQTT publisher.
type Manager struct {
	emitters map[string]Emitter
	mutex    sync.RWMutex
	logger   *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		emitters: make(map[string]Emitter),
		logger:   logger,
	}
}

// Register adds or replaces the emitter stored under name.
func (m *Manager) Register(name string, e Emitter) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.emitters[name] = e
	m.logger.Info("Registered broadcast emitter", "name", name)
}

// Names returns the registered emitter names in sorted order.
func (m *Manager) Names() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	names := make([]string, 0, len(m.emitters))
	for name := range m.emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emit delivers event through every emitter. One failing emitter does not stop
// the others; all failures are joined into the returned error.
func (m *Manager) Emit(event string, payload any) error {
	return m.each(func(e Emitter) error { return e.Emit(event, payload) })
}

// EmitToRoom delivers a room event through every emitter.
func (m *Manager) EmitToRoom(room, event string, payload any) error {
	return m.each(func(e Emitter) error { return e.EmitToRoom(room, event, payload) })
}

func (m *Manager) each(fn func(Emitter) error) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var errs []error
	for name, e := range m.emitters {
		if err := fn(e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every emitter that holds resources.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for name, e := range m.emitters {
		if c, ok := e.(io.Closer); ok {
			if err := c.Close(); err != nil {
				m.logger.Error("Error closing broadcast emitter", "name", name, "error", err)
			}
		}
	}
	return nil
}
