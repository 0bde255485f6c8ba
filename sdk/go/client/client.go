// Package client is a Go SDK for spectating a pitch match server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/pitch/internal/core/observability/log"
	"github.com/zeusync/pitch/internal/core/system"
	"github.com/zeusync/pitch/internal/server"
)

// Frame is one message from the server. Data is decoded lazily.
type Frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data"`
}

func (f Frame) Decode(v any) error { return json.Unmarshal(f.Data, v) }

// Snapshot decodes a snapshot frame.
func (f Frame) Snapshot() (system.Snapshot, error) {
	var s system.Snapshot
	if f.Type != server.MessageSnapshot {
		return s, fmt.Errorf("frame is %q, not a snapshot", f.Type)
	}
	return s, f.Decode(&s)
}

// Config holds configuration for the client
type Config struct {
	// ServerURL is the websocket endpoint, e.g. ws://127.0.0.1:8080/ws.
	ServerURL      string
	Token          string
	ConnectTimeout time.Duration
	// FrameBuffer is how many frames are queued before the reader blocks.
	FrameBuffer int
	Logger      log.Log
}

func DefaultConfig(serverURL string) Config {
	return Config{
		ServerURL:      serverURL,
		ConnectTimeout: 10 * time.Second,
		FrameBuffer:    256,
	}
}

// Client represents a spectator connection
type Client struct {
	conn    *websocket.Conn
	welcome server.Welcome
	frames  chan Frame
	logger  log.Log

	closed int32 // atomic bool
	once   sync.Once
	done   chan struct{}
}

// Dial connects and waits for the server's greeting.
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.ServerURL == "" || config.FrameBuffer < 0 {
		return nil, ErrInvalidConfig
	}
	u, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	header := http.Header{}
	if config.Token != "" {
		header.Set("Authorization", "Bearer "+config.Token)
	}
	if config.Logger == nil {
		config.Logger = log.NewNop()
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = config.ConnectTimeout
	conn, _, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	var first Frame
	if err := conn.ReadJSON(&first); err != nil || first.Type != server.MessageWelcome {
		_ = conn.Close()
		return nil, ErrNoWelcome
	}
	c := &Client{
		conn:   conn,
		frames: make(chan Frame, config.FrameBuffer),
		logger: config.Logger.With(log.String("component", "client")),
		done:   make(chan struct{}),
	}
	if err := first.Decode(&c.welcome); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrNoWelcome, err)
	}
	c.logger.Info("Connected", log.String("client_id", c.welcome.ClientID), log.String("match_id", c.welcome.MatchID))

	go c.readFrames()
	return c, nil
}

func (c *Client) ID() string      { return c.welcome.ClientID }
func (c *Client) MatchID() string { return c.welcome.MatchID }

// Frames yields every frame until the connection ends, then is closed.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Next waits for the next frame of the given type, skipping others.
func (c *Client) Next(ctx context.Context, frameType string) (Frame, error) {
	for {
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case f, ok := <-c.frames:
			if !ok {
				return Frame{}, ErrClientClosed
			}
			if f.Type == frameType {
				return f, nil
			}
		}
	}
}

func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	c.once.Do(func() { close(c.done) })
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) readFrames() {
	defer close(c.frames)
	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if atomic.LoadInt32(&c.closed) == 0 &&
				websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Connection lost", log.Error(err))
			}
			return
		}
		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}
