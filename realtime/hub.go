// Package realtime pushes alert events to dashboards over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bloom-monitor/models"
)

// Client control events.
const (
	ControlJoinITDashboard  = "join-it-dashboard"
	ControlLeaveITDashboard = "leave-it-dashboard"
	ControlMarkAlertRead    = "mark-alert-read"
)

// ErrHubClosed is returned when emitting after the hub stopped.
var ErrHubClosed = errors.New("realtime hub is closed")

// Frame is the wire format in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AlertMarker persists the read flag for mark-alert-read requests.
type AlertMarker interface {
	MarkAsRead(ctx context.Context, id string) (*models.Alert, error)
}

type outbound struct {
	room string
	data []byte
}

type membership struct {
	client *Client
	room   string
	join   bool
}

type sizeQuery struct {
	room  string
	reply chan int
}

// Hub maintains the set of active clients and their room memberships. All
// maps are owned by the Run goroutine.
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	members    chan membership
	sizes      chan sizeQuery
	done       chan struct{}

	markerMu sync.RWMutex
	marker   AlertMarker
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		members:    make(chan membership),
		sizes:      make(chan sizeQuery),
		done:       make(chan struct{}),
		logger:     logger.With("component", "realtime_hub"),
	}
}

// SetControlHandler installs the handler for mark-alert-read.
func (h *Hub) SetControlHandler(marker AlertMarker) {
	h.markerMu.Lock()
	h.marker = marker
	h.markerMu.Unlock()
}

func (h *Hub) controlHandler() AlertMarker {
	h.markerMu.RLock()
	defer h.markerMu.RUnlock()
	return h.marker
}

// Run processes hub events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("Realtime hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("WebSocket client registered", "remote", client.remote)

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
				h.logger.Debug("WebSocket client unregistered", "remote", client.remote)
			}

		case m := <-h.members:
			if !h.clients[m.client] {
				continue
			}
			if m.join {
				if h.rooms[m.room] == nil {
					h.rooms[m.room] = make(map[*Client]bool)
				}
				h.rooms[m.room][m.client] = true
				h.logger.Info("Client joined room", "room", m.room, "remote", m.client.remote)
			} else {
				delete(h.rooms[m.room], m.client)
			}

		case q := <-h.sizes:
			if q.room == "" {
				q.reply <- len(h.clients)
			} else {
				q.reply <- len(h.rooms[q.room])
			}

		case msg := <-h.broadcast:
			targets := h.clients
			if msg.room != "" {
				targets = h.rooms[msg.room]
			}
			for client := range targets {
				select {
				case client.send <- msg.data:
				default:
					h.logger.Warn("WebSocket client send buffer full, removing", "remote", client.remote)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	for _, members := range h.rooms {
		delete(members, client)
	}
	close(client.send)
}

// Emit sends event to every connected client.
func (h *Hub) Emit(event string, payload any) error {
	return h.enqueue("", event, payload)
}

// EmitToRoom sends event to the clients that joined room.
func (h *Hub) EmitToRoom(room, event string, payload any) error {
	return h.enqueue(room, event, payload)
}

func (h *Hub) enqueue(room, event string, payload any) error {
	data, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{room: room, data: data}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return h.RoomSize("")
}

// RoomSize returns the number of clients in room, or all clients for "".
func (h *Hub) RoomSize(room string) int {
	reply := make(chan int, 1)
	select {
	case h.sizes <- sizeQuery{room: room, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *Client, room string, join bool) {
	select {
	case h.members <- membership{client: c, room: room, join: join}:
	case <-h.done:
	}
}

// handleControl dispatches a frame received from c.
func (h *Hub) handleControl(ctx context.Context, c *Client, frame Frame) {
	switch frame.Event {
	case ControlJoinITDashboard:
		h.join(c, models.RoomITDashboard, true)
	case ControlLeaveITDashboard:
		h.join(c, models.RoomITDashboard, false)
	case ControlMarkAlertRead:
		var req struct {
			AlertID string `json:"alertId"`
		}
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.AlertID == "" {
			h.logger.Warn("Invalid mark-alert-read request", "remote", c.remote)
			return
		}
		marker := h.controlHandler()
		if marker == nil {
			h.logger.Warn("No control handler installed, ignoring mark-alert-read")
			return
		}
		if _, err := marker.MarkAsRead(ctx, req.AlertID); err != nil {
			h.logger.Warn("Failed to mark alert read", "alertId", req.AlertID, slog.Any("error", err))
		}
	default:
		h.logger.Debug("Ignoring unknown client event", "event", frame.Event, "remote", c.remote)
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	switch p := payload.(type) {
	case json.RawMessage:
		data = p
	case nil:
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		data = b
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
