// Package realtime is the gateway's persistent-connection side: it accepts
// websocket handshakes (behind the same origin policy as plain requests),
// tracks room membership per connection, and fans published events out to
// a room's current members.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/M-uzair-abbasi/YaarFetch/internal/server/middleware"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/api"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/config"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/cors"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/state"
	"github.com/M-uzair-abbasi/YaarFetch/pkg/transport"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ClientMessage is the envelope for every client-to-server event.
type ClientMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is the envelope for every server-to-client event.
type ServerMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Client events the gateway itself understands. Everything else a client
// sends is ignored: connections only receive, apart from managing their
// own room membership.
const (
	EventJoinRoom  = "join-room"
	EventLeaveRoom = "leave-room"
)

type eventHandler func(connID uuid.UUID, payload []byte)

type Gateway struct {
	logger  *slog.Logger
	policy  *cors.Policy
	manager state.Manager
	config  config.TransportConfig

	// events is the dispatch table for client-initiated events. Built
	// once in NewGateway, read-only afterwards.
	events map[string]eventHandler

	wg sync.WaitGroup
}

var _ Publisher = (*Gateway)(nil)

func NewGateway(logger *slog.Logger, policy *cors.Policy, manager state.Manager, cfg config.TransportConfig) *Gateway {
	g := &Gateway{
		logger:  logger.With(slog.String("component", "realtime_gateway")),
		policy:  policy,
		manager: manager,
		config:  cfg,
	}
	g.events = map[string]eventHandler{
		EventJoinRoom:  g.handleJoin,
		EventLeaveRoom: g.handleLeave,
	}
	return g
}

// HandleUpgrade terminates a websocket handshake. The origin decision runs
// before the upgrade: a denied origin is refused with the same structured
// 403 as a plain request, and no connection state is created.
func (g *Gateway) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	decision := g.policy.Decide(r.Header.Get("Origin"))
	if !decision.Allowed {
		g.logger.Warn("Refused handshake from disallowed origin", slog.String("origin", decision.Origin))
		api.WriteJSON(w, http.StatusForbidden, api.OriginDenied{
			Error:          "origin not allowed",
			YourOrigin:     decision.Origin,
			AllowedOrigins: g.policy.AllowList(),
		})
		return
	}

	var subject string
	if reqMeta, ok := middleware.ReqMetadataFrom(r.Context()); ok {
		subject = reqMeta.Subject
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The origin policy above is the gate; the library's own origin
		// check would be a second, drifting copy of it.
		InsecureSkipVerify: true,
	})
	if err != nil {
		g.logger.Error("Failed to accept websocket connection", slog.Any("error", err))
		return
	}

	conn := transport.NewConnection(r.Context(), &g.wg, wsConn, transport.Config{
		WriteTimeout: g.config.WriteTimeout,
		PingInterval: g.config.PingInterval,
		SendBuffer:   g.config.SendBuffer,
	}, g.logger)

	if _, err := g.manager.RegisterConnection(conn, subject); err != nil {
		g.logger.Error("Failed to register connection", slog.Any("error", err))
		conn.Close(err)
		return
	}

	conn.SetOnMessageHandler(g.HandleMessage)
	conn.SetOnCloseHandler(func(id uuid.UUID, err error) {
		if dErr := g.manager.DeregisterConnection(id); dErr != nil {
			g.logger.Error("Failed to deregister connection", slog.Any("error", dErr))
		}
	})

	g.logger.Info("Connection established",
		slog.String("connID", conn.ID().String()),
		slog.String("subject", subject),
	)
	conn.Run()
	<-conn.Done()
}

// HandleMessage routes one inbound client frame through the event
// dispatch table.
func (g *Gateway) HandleMessage(ctx context.Context, connID uuid.UUID, msg []byte) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(msg, &clientMsg); err != nil {
		g.logger.Warn("Failed to unmarshal client message",
			slog.String("connID", connID.String()),
			slog.Any("error", err),
		)
		return
	}

	handler, ok := g.events[clientMsg.Event]
	if !ok {
		g.logger.Warn("Received unknown event",
			slog.String("event", clientMsg.Event),
			slog.String("connID", connID.String()),
		)
		return
	}
	handler(connID, clientMsg.Payload)
}

func (g *Gateway) handleJoin(connID uuid.UUID, payload []byte) {
	roomID := roomIDFromPayload(payload)
	if roomID == "" {
		g.logger.Warn("join-room without a room id", slog.String("connID", connID.String()))
		return
	}
	if err := g.manager.Join(connID, roomID); err != nil {
		g.logger.Warn("join-room failed", slog.String("connID", connID.String()), slog.Any("error", err))
	}
}

func (g *Gateway) handleLeave(connID uuid.UUID, payload []byte) {
	roomID := roomIDFromPayload(payload)
	if roomID == "" {
		g.logger.Warn("leave-room without a room id", slog.String("connID", connID.String()))
		return
	}
	if err := g.manager.Leave(connID, roomID); err != nil {
		g.logger.Warn("leave-room failed", slog.String("connID", connID.String()), slog.Any("error", err))
	}
}

// roomIDFromPayload accepts either a bare JSON string payload ("42") or an
// object carrying a roomId field ({"roomId":"42"}).
func roomIDFromPayload(payload []byte) string {
	parsed := gjson.ParseBytes(payload)
	if parsed.Type == gjson.String {
		return parsed.String()
	}
	return parsed.Get("roomId").String()
}

// Publish fans one event out to every current member of a room. It never
// blocks on a recipient and never fails: marshal problems are logged, an
// empty room is a no-op, and per-recipient delivery is best-effort.
func (g *Gateway) Publish(roomID, eventName string, payload any) {
	msg, err := json.Marshal(ServerMessage{Event: eventName, Payload: payload})
	if err != nil {
		g.logger.Error("Failed to marshal published event",
			slog.String("event", eventName),
			slog.Any("error", err),
		)
		return
	}

	senders := g.manager.RoomSenders(roomID)
	for _, s := range senders {
		s.Send(msg)
	}
	g.logger.Debug("Published event",
		slog.String("roomID", roomID),
		slog.String("event", eventName),
		slog.Int("recipients", len(senders)),
	)
}

type closer interface {
	Close(err error)
}

// Shutdown closes every live connection and waits for their pump
// goroutines to finish cleanup.
func (g *Gateway) Shutdown(reason error) {
	for _, s := range g.manager.AllSenders() {
		if c, ok := s.(closer); ok {
			c.Close(reason)
		}
	}
	g.wg.Wait()
}
