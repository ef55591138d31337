package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the gateway sits behind the hospital intranet proxy
	},
}

// handleWebSocket streams change events for the requested watch keys over a
// websocket connection. Keys are passed comma-separated in the "keys" query
// parameter, e.g. ?keys=schedules/ICU-2025-09,exchangeRequests/ICU.
// Each key keeps its own ordering; events for different keys may interleave
// in any order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	keysParam := r.URL.Query().Get("keys")
	if keysParam == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "keys query parameter is required"})
		return
	}
	keys := strings.Split(keysParam, ",")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	done := make(chan struct{})
	events := make(chan realtime.Event, 32)

	cancels := make([]func(), 0, len(keys))
	for _, key := range keys {
		stream, cancel := s.hub.Watch(strings.TrimSpace(key))
		cancels = append(cancels, cancel)
		go forwardEvents(stream, events, done)
	}

	s.logger.Debug("Websocket subscriber connected",
		zap.Strings("keys", keys),
		zap.String("remote", r.RemoteAddr))

	go s.writePump(conn, events, done)
	s.readPump(conn)

	close(done)
	for _, cancel := range cancels {
		cancel()
	}
}

// forwardEvents funnels one watch stream into the connection's outbound
// channel until the stream or the connection ends.
func forwardEvents(stream <-chan realtime.Event, out chan<- realtime.Event, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-stream:
			if !ok {
				return
			}
			select {
			case out <- event:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

// readPump consumes (and discards) inbound frames so pong handling works and
// a closed connection is noticed. It returns when the peer goes away.
func (s *Server) readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

// writePump forwards events to the peer and keeps the connection alive with
// pings.
func (s *Server) writePump(conn *websocket.Conn, events <-chan realtime.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
