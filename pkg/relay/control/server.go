// Copyright 2024-2026 Aiku AI

// Package control implements the WebSocket control channel: operators issue
// login and send-message requests and receive incoming-message events for
// every relayed chat message. The transport is thin I/O glue; all state and
// authorization live in the relay core.
package control

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay"
)

const writeTimeout = 10 * time.Second

// Service is what the control channel needs from the account manager.
type Service interface {
	Login(cred relay.Credential, persist bool) error
	SendMessage(fromAccount, toSteamID64, text string) error
}

// Server accepts control-channel connections and fans incoming-message
// events out to every connected observer.
type Server struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	svcMu sync.RWMutex
	svc   Service

	mu    sync.RWMutex
	conns map[string]*conn
}

var _ relay.Broadcaster = (*Server)(nil)

func NewServer(log zerolog.Logger) *Server {
	return &Server{
		log: log.With().Str("component", "control").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		conns: make(map[string]*conn),
	}
}

// SetService attaches the account manager. Set once during wiring, before
// ListenAndServe; the manager itself needs the server as its broadcaster.
func (s *Server) SetService(svc Service) {
	s.svcMu.Lock()
	s.svc = svc
	s.svcMu.Unlock()
}

func (s *Server) service() Service {
	s.svcMu.RLock()
	defer s.svcMu.RUnlock()
	return s.svc
}

// ListenAndServe blocks serving the control channel on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("Control channel listening")
	return server.ListenAndServe()
}

// BroadcastIncoming implements relay.Broadcaster.
func (s *Server) BroadcastIncoming(msg relay.IncomingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode incoming message")
		return
	}
	env := Envelope{Event: EventIncomingMessage, Data: data}

	s.mu.RLock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		if err := c.send(env); err != nil {
			s.log.Warn().Err(err).Str("conn_id", c.id).Msg("Failed to deliver incoming message")
		}
	}
}

// ServeHTTP upgrades the connection and runs its read loop. Each request is
// handled in its own goroutine so a login blocking on its first terminal
// transition does not stall other requests on the same connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &conn{id: uuid.NewString(), ws: ws}
	s.register(c)
	defer s.unregister(c)
	s.log.Info().Str("conn_id", c.id).Msg("Client connected via WebSocket")

	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Str("conn_id", c.id).Msg("Control channel read error")
			}
			s.log.Info().Str("conn_id", c.id).Msg("Client disconnected")
			return
		}
		go s.dispatch(c, env)
	}
}

func (s *Server) dispatch(c *conn, env Envelope) {
	switch env.Event {
	case EventLogin:
		s.handleLogin(c, env.Data)
	case EventSendMessage:
		s.handleSendMessage(c, env.Data)
	default:
		s.log.Debug().Str("event", env.Event).Str("conn_id", c.id).Msg("Ignoring unknown event")
	}
}

func (s *Server) handleLogin(c *conn, data json.RawMessage) {
	var req LoginRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(c, EventLoginResult, failureResult("Missing fields"))
			return
		}
	}
	if req.Login == "" || req.Password == "" || req.SharedSecret == "" {
		s.reply(c, EventLoginResult, failureResult("Missing fields"))
		return
	}

	err := s.service().Login(relay.Credential{
		AccountName:  req.Login,
		Password:     req.Password,
		SharedSecret: req.SharedSecret,
	}, true)
	if err != nil {
		s.reply(c, EventLoginResult, failureResult(err.Error()))
		return
	}
	s.reply(c, EventLoginResult, successResult("Logged in successfully"))
}

func (s *Server) handleSendMessage(c *conn, data json.RawMessage) {
	var req SendMessageRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(c, EventSendMessageResult, failureResult("Missing fields: login, friendSteamId64, message"))
			return
		}
	}
	if req.Login == "" || req.FriendSteamID64 == "" || req.Message == "" {
		s.reply(c, EventSendMessageResult, failureResult("Missing fields: login, friendSteamId64, message"))
		return
	}

	if err := s.service().SendMessage(req.Login, req.FriendSteamID64, req.Message); err != nil {
		s.reply(c, EventSendMessageResult, failureResult(err.Error()))
		return
	}
	s.reply(c, EventSendMessageResult, successResult("Message sent successfully"))
}

func (s *Server) reply(c *conn, event string, result Result) {
	data, err := json.Marshal(result)
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("Failed to encode result")
		return
	}
	if err := c.send(Envelope{Event: event, Data: data}); err != nil {
		s.log.Warn().Err(err).Str("conn_id", c.id).Str("event", event).Msg("Failed to send result")
	}
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()
	_ = c.ws.Close()
}

// conn is one control-channel connection. Writes are serialized; gorilla
// connections do not support concurrent writers.
type conn struct {
	id      string
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) send(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(env)
}
