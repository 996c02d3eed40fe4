// Package broadcast decouples alert producers from the real-time transports
// that deliver alert events to dashboards.
package broadcast

import (
	"log/slog"
	"sync"
)

// Emitter publishes named events with a JSON-serializable payload.
type Emitter interface {
	// Emit delivers event to every connected client.
	Emit(event string, payload any) error
	// EmitToRoom delivers event to the clients that joined room.
	EmitToRoom(room, event string, payload any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(string, any) error               { return nil }
func (Nop) EmitToRoom(string, string, any) error { return nil }

// Gateway is the process-wide access point to the broadcast handle. The
// handle is installed once during startup; before that Handle returns a Nop.
type Gateway struct {
	mu     sync.RWMutex
	handle Emitter
	logger *slog.Logger
}

// NewGateway creates an empty gateway.
func NewGateway(logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{logger: logger}
}

// SetHandle installs the broadcast handle. Only the first call takes effect.
func (g *Gateway) SetHandle(e Emitter) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handle != nil {
		g.logger.Warn("Broadcast handle already set, ignoring")
		return false
	}
	g.handle = e
	g.logger.Info("Broadcast handle installed")
	return true
}

// Ready reports whether a handle was installed.
func (g *Gateway) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.handle != nil
}

// Handle returns the installed handle, or Nop while none is set.
func (g *Gateway) Handle() Emitter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.handle == nil {
		return Nop{}
	}
	return g.handle
}

// Emit forwards to the installed handle. Events emitted before SetHandle
// are dropped without error.
func (g *Gateway) Emit(event string, payload any) error {
	return g.Handle().Emit(event, payload)
}

// EmitToRoom forwards to the installed handle.
func (g *Gateway) EmitToRoom(room, event string, payload any) error {
	return g.Handle().EmitToRoom(room, event, payload)
}
