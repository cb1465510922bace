package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/lander/internal/core/observability/log"
)

const transportWebSocket = "websocket"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.workers.Done()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}
	defer conn.Close()

	sess, err := s.openSession(transportWebSocket)
	if err != nil {
		s.logger.Warn("Session rejected", log.String("remote", conn.RemoteAddr().String()), log.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(s.config.WriteTimeout))
		return
	}
	defer s.closeSession(sess)

	stop := context.AfterFunc(s.ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	conn.SetReadLimit(s.config.MaxMessageSize)
	if err = s.writeWebSocket(conn, sess.State()); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket read failed", log.String("session", sess.ID()), log.Error(err))
			}
			return
		}
		if err = s.writeWebSocket(conn, sess.Handle(data)); err != nil {
			s.logger.Debug("WebSocket write failed", log.String("session", sess.ID()), log.Error(err))
			return
		}
	}
}

func (s *Server) writeWebSocket(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(f)
}
