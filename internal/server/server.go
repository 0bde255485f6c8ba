package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/observability/log"
	"github.com/zeusync/pitch/internal/core/system"
)

// Source is the match being streamed.
type Source interface {
	ID() string
	Snapshot() system.Snapshot
}

// Config holds server configuration
type Config struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	MaxClients int    `json:"max_clients" yaml:"max_clients"`
	// Token, when set, is required from every spectator.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// BroadcastInterval is how often the match state is sampled.
	BroadcastInterval time.Duration `json:"broadcast_interval" yaml:"broadcast_interval"`
	// SendBuffer is the number of frames queued per client before it is
	// dropped as too slow.
	SendBuffer   int           `json:"send_buffer" yaml:"send_buffer"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8080",
		MaxClients:        1000,
		BroadcastInterval: time.Second / 30,
		SendBuffer:        64,
		WriteTimeout:      5 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxClients <= 0:
		return fmt.Errorf("%w: max_clients %d", ErrInvalidConfig, c.MaxClients)
	case c.BroadcastInterval <= 0:
		return fmt.Errorf("%w: broadcast_interval %v", ErrInvalidConfig, c.BroadcastInterval)
	case c.SendBuffer <= 0:
		return fmt.Errorf("%w: send_buffer %d", ErrInvalidConfig, c.SendBuffer)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("%w: write_timeout %v", ErrInvalidConfig, c.WriteTimeout)
	}
	return nil
}

// Message types sent to spectators.
const (
	MessageWelcome  = "welcome"
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
)

// Message is the envelope of every frame sent to spectators.
type Message struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data"`
}

type Welcome struct {
	ClientID string `json:"client_id"`
	MatchID  string `json:"match_id"`
}

// Server streams one match to websocket spectators: snapshots sampled at
// BroadcastInterval (unchanged frames are skipped) and every bus event.
type Server struct {
	config Config
	source Source
	events bus.EventBus
	auth   TokenAuth
	logger log.Log

	clients     sync.Map // map[string]*ClientSession
	clientCount int64    // atomic

	lastDigest    uint64 // atomic
	framesSent    uint64 // atomic
	framesSkipped uint64 // atomic

	running int32 // atomic bool
	closed  int32 // atomic bool
	sub     bus.Subscription
}

func NewServer(config Config, source Source, events bus.EventBus, logger log.Log) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config: config,
		source: source,
		events: events,
		auth:   TokenAuth{Token: config.Token},
		logger: logger.With(log.String("component", "server")),
	}
	if events != nil {
		sub, err := events.SubscribeAll(s.forward)
		if err != nil {
			return nil, err
		}
		s.sub = sub
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))
	return s, nil
}

// Run samples the match until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.BroadcastSnapshot()
		}
	}
}

// BroadcastSnapshot sends the current match state to every client unless it
// is identical to the previous broadcast. It reports whether a frame was sent.
func (s *Server) BroadcastSnapshot() bool {
	snap := s.source.Snapshot()
	digest := Digest(snap)
	if atomic.SwapUint64(&s.lastDigest, digest) == digest {
		atomic.AddUint64(&s.framesSkipped, 1)
		return false
	}
	frame, err := encode(Message{Type: MessageSnapshot, Data: snap})
	if err != nil {
		s.logger.Error("Failed to encode snapshot", log.Error(err))
		return false
	}
	atomic.AddUint64(&s.framesSent, 1)
	s.broadcast(frame)
	return true
}

// Close disconnects every client and stops forwarding events.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if s.sub != nil {
		_ = s.events.Unsubscribe(s.sub)
	}
	s.clients.Range(func(_, value any) bool {
		value.(*ClientSession).close()
		return true
	})
	s.logger.Info("Server closed")
	return nil
}

// forward relays a bus event. It runs inside the match tick, so it only queues.
func (s *Server) forward(e bus.Event) error {
	frame, err := encode(Message{Type: MessageEvent, Event: e.Type(), Data: e.Data()})
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	s.broadcast(frame)
	return nil
}

func (s *Server) broadcast(frame []byte) {
	s.clients.Range(func(_, value any) bool {
		session := value.(*ClientSession)
		if !session.enqueue(frame) {
			s.logger.Warn("Dropping slow client", log.String("client_id", session.ID))
			session.close()
		}
		return true
	})
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount:   atomic.LoadInt64(&s.clientCount),
		FramesSent:    atomic.LoadUint64(&s.framesSent),
		FramesSkipped: atomic.LoadUint64(&s.framesSkipped),
		Running:       atomic.LoadInt32(&s.running) == 1,
	}
}

// Stats contains server statistics
type Stats struct {
	ClientCount   int64  `json:"client_count"`
	FramesSent    uint64 `json:"frames_sent"`
	FramesSkipped uint64 `json:"frames_skipped"`
	Running       bool   `json:"running"`
}
