package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/system"
	"github.com/zeusync/pitch/internal/core/systems/ball"
	"github.com/zeusync/pitch/internal/server"
)

func startMatch(t *testing.T, token string) (*system.World, *server.Server, string) {
	t.Helper()
	events := bus.New()
	world, err := system.NewWorld(system.DefaultConfig(), nil, events)
	require.NoError(t, err)
	t.Cleanup(world.Close)

	cfg := server.DefaultServerConfig()
	cfg.Token = token
	srv, err := server.NewServer(cfg, world, events, nil)
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Close()
		hs.Close()
	})
	return world, srv, "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

func TestSpectateMatch(t *testing.T) {
	world, srv, u := startMatch(t, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := DefaultConfig(u)
	cfg.Token = "secret"
	c, err := Dial(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.NotEmpty(t, c.ID())
	assert.Equal(t, world.ID(), c.MatchID())

	f, err := c.Next(ctx, server.MessageSnapshot)
	require.NoError(t, err)
	snap, err := f.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Entities, 13)

	require.Eventually(t, func() bool { return srv.GetStats().ClientCount == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, world.Reset())
	f, err = c.Next(ctx, server.MessageEvent)
	require.NoError(t, err)
	assert.Equal(t, system.EventReset, f.Event)
	var score map[string]int
	require.NoError(t, f.Decode(&score))
	assert.Equal(t, map[string]int{"1": 0, "2": 0}, score)

	_, err = f.Snapshot()
	assert.Error(t, err)
}

func TestDialRejected(t *testing.T) {
	_, _, u := startMatch(t, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Dial(ctx, DefaultConfig(u))
	assert.Error(t, err)

	_, err = Dial(ctx, Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCloseEndsFrames(t *testing.T) {
	_, _, u := startMatch(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, DefaultConfig(u))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Next(ctx, "never")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestFrameDecodesEveryPayload(t *testing.T) {
	world, err := system.NewWorld(system.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	defer world.Close()

	raw, err := json.Marshal(server.Message{Type: server.MessageSnapshot, Data: world.Snapshot()})
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	snap, err := f.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, ball.Free, snap.Ball.State)
	assert.Equal(t, world.Snapshot(), snap)

	raw, err = json.Marshal(server.Message{Type: server.MessageEvent, Event: ball.EventKicked,
		Data: ball.Transition{From: ball.Bound, To: ball.Kicked, By: "Player3"}})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &f))
	var tr ball.Transition
	require.NoError(t, f.Decode(&tr))
	assert.Equal(t, ball.Transition{From: ball.Bound, To: ball.Kicked, By: "Player3"}, tr)
}
