package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"bloom-monitor/models"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewRouter builds the real-time listener: /ws for dashboards and /ws/stats
// for connection counts.
func NewRouter(ctx context.Context, hub *Hub) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", ServeWS(ctx, hub)).Methods(http.MethodGet)
	r.HandleFunc("/ws/stats", statsHandler(hub)).Methods(http.MethodGet)
	return r
}

// ServeWS upgrades the request and attaches the connection to hub.
func ServeWS(ctx context.Context, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := newClient(hub, conn)
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(ctx)
	}
}

func statsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{
			"clients":     hub.ClientCount(),
			"itDashboard": hub.RoomSize(models.RoomITDashboard),
		})
	}
}
