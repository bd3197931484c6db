package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
)

// wsMessage is sent by clients to pick the event channels they receive.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "all" | "itineraries" | "graph" | "state"
}

var wsChannels = map[string]string{
	"all":         "routing.>",
	"itineraries": "routing.itinerary.>",
	"graph":       "routing.graph.>",
	"state":       "routing.backend.>",
}

const wsPingInterval = 30 * time.Second

// wsSession relays NATS subjects to one client. Writes are serialized
// because NATS callbacks, pings and replies share the connection.
type wsSession struct {
	conn *websocket.Conn
	nc   *nats.Conn

	mu   sync.Mutex
	subs map[string]*nats.Subscription // subject -> subscription
}

func (s *wsSession) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

func (s *wsSession) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.write(websocket.TextMessage, data)
}

func (s *wsSession) reply(key, value string, extra ...string) {
	m := map[string]string{key: value}
	if len(extra) == 2 {
		m[extra[0]] = extra[1]
	}
	s.send(m)
}

func (s *wsSession) subscribe(subject string) error {
	if _, ok := s.subs[subject]; ok {
		return nil
	}
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = s.write(websocket.TextMessage, msg.Data)
	})
	if err != nil {
		return err
	}
	s.subs[subject] = sub
	return nil
}

func (s *wsSession) unsubscribe(subject string) bool {
	sub, ok := s.subs[subject]
	if !ok {
		return false
	}
	_ = sub.Unsubscribe()
	delete(s.subs, subject)
	return true
}

func (s *wsSession) close() {
	for subject := range s.subs {
		s.unsubscribe(subject)
	}
}

// handle applies one client message.
func (s *wsSession) handle(raw []byte) {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		s.reply("error", "invalid JSON")
		return
	}
	if m.Channel == "" {
		m.Channel = "all"
	}
	subject, ok := wsChannels[m.Channel]
	if !ok {
		s.reply("error", "unknown channel: "+m.Channel)
		return
	}

	switch m.Action {
	case "subscribe":
		if _, exists := s.subs[subject]; exists {
			s.reply("status", "already subscribed", "subject", subject)
			return
		}
		if err := s.subscribe(subject); err != nil {
			s.reply("error", "subscribe failed: "+err.Error())
			return
		}
		s.reply("status", "subscribed", "subject", subject)
	case "unsubscribe":
		if !s.unsubscribe(subject) {
			s.reply("error", "not subscribed to "+subject)
			return
		}
		s.reply("status", "unsubscribed", "subject", subject)
	default:
		s.reply("error", "unknown action: "+m.Action)
	}
}

// WebSocketHandler relays routing events from NATS to WebSocket clients.
// Clients start on the "all" channel and can change it with
// {"action":"unsubscribe","channel":"all"} / {"action":"subscribe","channel":"graph"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remote := c.RemoteAddr().String()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		s := &wsSession{conn: c, nc: nc, subs: make(map[string]*nats.Subscription)}
		if nc == nil {
			s.reply("error", "event relay unavailable")
			return
		}
		if err := s.subscribe(wsChannels["all"]); err != nil {
			slog.Error("ws default subscribe failed", "remote", remote, "error", err)
			return
		}
		defer s.close()
		slog.Info("ws client connected", "remote", remote)

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := s.write(websocket.PingMessage, nil); err != nil {
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
			s.handle(msg)
		}
		slog.Info("ws client disconnected", "remote", remote)
	}
}
