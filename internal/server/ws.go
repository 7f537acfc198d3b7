package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"gradescan/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Session identity comes from the client_id path segment, not the
	// origin; the API is served to local frontends during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// handleWebSocket streams progress events for one client session. The
// session's channel is registered on connect and removed on disconnect; a
// processing run started without a listener reports into the void.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("WebSocket upgrade failed")
		return
	}

	ch := s.registry.Register(clientID)
	defer s.registry.Unregister(clientID)
	defer conn.Close()

	s.log.Info().Str("client_id", clientID).Msg("WebSocket client connected")

	// Read loop: a read error means the peer is gone. Keepalive "ping"
	// messages are forwarded to the write loop so the connection has a
	// single writer.
	readDone := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(readDone)
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType == websocket.TextMessage && string(data) == "ping" {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case state := <-ch.Updates():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(state); err != nil {
				s.log.Debug().Err(err).Str("client_id", clientID).Msg("WebSocket write failed")
				return
			}
			if state.Status == models.StatusComplete || state.Status == models.StatusError {
				// Terminal event delivered; the client decides when to
				// disconnect, so keep serving until it does.
				continue
			}
		case <-pings:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte("pong")); err != nil {
				return
			}
		case <-readDone:
			s.log.Info().Str("client_id", clientID).Msg("WebSocket client disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
