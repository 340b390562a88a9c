package wshub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/reward"
)

func ledgerMessage(t *testing.T, p uuid.UUID, option int) reward.SyncMessage {
	t.Helper()
	st := reward.NewStorage("overworld")
	st.Add(p, reward.MustIdentifier("cape"), option)
	return reward.SyncMessage{Data: st.SerializeSimple()}
}

func dial(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHubDeliversBroadcasts(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	p := uuid.New()
	hub.Broadcast(ledgerMessage(t, p, 2))

	snap, err := c.Next()
	require.NoError(t, err)
	opt, ok := snap.Option(p, reward.MustIdentifier("cape"))
	require.True(t, ok)
	assert.Equal(t, 2, opt)
}

func TestHubSendsLastMessageOnConnect(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	p := uuid.New()
	hub.Broadcast(ledgerMessage(t, p, 1))

	snap, err := dial(t, srv).Next()
	require.NoError(t, err)
	opt, ok := snap.Option(p, reward.MustIdentifier("cape"))
	require.True(t, ok)
	assert.Equal(t, 1, opt)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestPushKeepsNewest(t *testing.T) {
	out := make(chan []byte, 1)
	push(out, []byte("old"))
	push(out, []byte("new"))
	assert.Equal(t, []byte("new"), <-out)
}
