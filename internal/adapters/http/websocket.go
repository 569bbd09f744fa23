package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/lapwatch/internal/core/usecases"
	"github.com/samirrijal/lapwatch/internal/pkg/metrics"
)

// wsMessage is sent from client to the server.
type wsMessage struct {
	Action string `json:"action"` // "status" | "ping"
}

// WebSocketHandler returns a handler that relays lap completed events
// from NATS to the connected client. Clients may send
// {"action":"status"} at any time to receive the current lap status.
func WebSocketHandler(nc *nats.Conn, subject string, laps *usecases.LapService) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc != nil && subject != "" {
			sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(map[string]interface{}{
					"type": "lap_completed",
					"data": json.RawMessage(msg.Data),
				})
			})
			if err != nil {
				slog.Warn("ws lap subscribe", "subject", subject, "error", err)
				return
			}
			defer func() { _ = sub.Unsubscribe() }()
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "status":
				if laps == nil {
					_ = writeJSON(map[string]string{"error": "lap service not available"})
					continue
				}
				_ = writeJSON(map[string]interface{}{"type": "status", "data": laps.Status()})
			case "ping":
				_ = writeJSON(map[string]string{"type": "pong"})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
