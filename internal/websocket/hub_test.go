package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(mt int, data []byte) error {
	if mt != websocket.TextMessage {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubDeliversToMatchingIdentifier(t *testing.T) {
	hub, _ := startHub(t)

	watcher := newFakeConn()
	other := newFakeConn()
	go ServeWs(hub, watcher, "acct-1")
	go ServeWs(hub, other, "acct-2")

	require.Eventually(t, func() bool {
		return hub.ClientCount("acct-1") == 1 && hub.ClientCount("acct-2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Deliver(events.NewLiveEvent(events.TypeSyncState, "acct-1", map[string]interface{}{"phase": "connected"}))

	require.Eventually(t, func() bool { return len(watcher.frames()) == 1 }, time.Second, 5*time.Millisecond)
	got, err := events.UnmarshalLiveEvent(watcher.frames()[0])
	require.NoError(t, err)
	assert.Equal(t, events.TypeSyncState, got.Type)
	assert.Equal(t, "connected", got.Data["phase"])
	assert.Empty(t, other.frames())
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, _ := startHub(t)

	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		ServeWs(hub, conn, "acct-1")
		close(done)
	}()
	require.Eventually(t, func() bool { return hub.ClientCount("acct-1") == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	<-done
	require.Eventually(t, func() bool { return hub.ClientCount("acct-1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopReleasesClients(t *testing.T) {
	hub, cancel := startHub(t)

	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		ServeWs(hub, conn, "acct-1")
		close(done)
	}()
	require.Eventually(t, func() bool { return hub.ClientCount("acct-1") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client not released after hub stopped")
	}
	assert.Equal(t, 0, hub.ClientCount("acct-1"))
}

func TestEncodeEnvelope(t *testing.T) {
	payload, err := encodeEnvelope("node-a", "acct-1", []byte(`{"type":"sync_state"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"origin":"node-a","identifier":"acct-1","message":{"type":"sync_state"}}`, string(payload))

	_, err = encodeEnvelope("node-a", "acct-1", []byte(`{not json`))
	assert.Error(t, err)
}
