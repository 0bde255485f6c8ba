package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/pitch/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// spectators never send anything meaningful
const maxReadSize = 512

// ClientSession represents a connected spectator
type ClientSession struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClientSession(conn *websocket.Conn, buffer int) *ClientSession {
	return &ClientSession{
		ID:          uuid.NewString(),
		RemoteAddr:  conn.RemoteAddr().String(),
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, buffer),
		done:        make(chan struct{}),
	}
}

// enqueue reports false when the client's buffer is full.
func (c *ClientSession) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *ClientSession) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *ClientSession) writePump(timeout time.Duration) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// readPump blocks until the client disconnects or is closed.
func (c *ClientSession) readPump() {
	defer c.close()
	c.conn.SetReadLimit(maxReadSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.closed) == 1 {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := s.auth.Authorize(r); err != nil {
		s.logger.Warn("Rejected spectator", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if int(atomic.LoadInt64(&s.clientCount)) >= s.config.MaxClients {
		s.logger.Warn("Maximum clients reached, rejecting connection", log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	session := newClientSession(conn, s.config.SendBuffer)

	// greet with the current state before joining the broadcast
	welcome, _ := encode(Message{Type: MessageWelcome, Data: Welcome{ClientID: session.ID, MatchID: s.source.ID()}})
	snapshot, err := encode(Message{Type: MessageSnapshot, Data: s.source.Snapshot()})
	if err != nil {
		s.logger.Error("Failed to encode snapshot", log.Error(err))
		session.close()
		return
	}
	session.enqueue(welcome)
	session.enqueue(snapshot)

	s.clients.Store(session.ID, session)
	atomic.AddInt64(&s.clientCount, 1)
	s.logger.Info("Client connected",
		log.String("client_id", session.ID),
		log.String("remote_addr", session.RemoteAddr),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	go session.writePump(s.config.WriteTimeout)
	session.readPump()

	s.clients.Delete(session.ID)
	atomic.AddInt64(&s.clientCount, -1)
	s.logger.Info("Client disconnected",
		log.String("client_id", session.ID),
		log.Duration("connected_for", time.Since(session.ConnectedAt)),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))
}
