package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerProbe struct {
	opened   chan struct{}
	messages chan string
	errors   chan error
	closed   chan struct{}
}

func newHandlerProbe() *handlerProbe {
	return &handlerProbe{
		opened:   make(chan struct{}, 1),
		messages: make(chan string, 8),
		errors:   make(chan error, 8),
		closed:   make(chan struct{}, 2),
	}
}

func (p *handlerProbe) handler() TransportHandler {
	return TransportHandler{
		OnOpen:    func() { p.opened <- struct{}{} },
		OnMessage: func(data []byte) { p.messages <- string(data) },
		OnError:   func(err error) { p.errors <- err },
		OnClose:   func() { p.closed <- struct{}{} },
	}
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"sync_started","data":{"operation":"`+r.URL.Path+`"}}`))
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.WriteMessage(mt, data)
		}
	}))
}

func TestWebSocketTransportRoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	target, err := ResolveURL(srv.URL, "acct-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(target, "ws://"))

	probe := newHandlerProbe()
	tr, err := NewWebSocketFactory(WebSocketOptions{})(target, probe.handler())
	require.NoError(t, err)

	waitFor(t, probe.opened, "open")
	first := waitFor(t, probe.messages, "greeting")
	assert.JSONEq(t, `{"type":"sync_started","data":{"operation":"/ws/phone/acct-1"}}`, first)

	require.NoError(t, tr.Send([]byte(`{"type":"ping"}`)))
	assert.Equal(t, `{"type":"ping"}`, waitFor(t, probe.messages, "echo"))

	require.NoError(t, tr.Close())
	waitFor(t, probe.closed, "close")
	assert.Empty(t, probe.errors, "a local close is not an error")
	assert.ErrorIs(t, tr.Send([]byte("late")), ErrNotConnected)
}

func TestWebSocketTransportDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target, _ := ResolveURL(srv.URL, "acct-1")
	srv.Close()

	probe := newHandlerProbe()
	_, err := NewWebSocketFactory(WebSocketOptions{})(target, probe.handler())
	require.NoError(t, err, "the factory dials asynchronously")

	waitFor(t, probe.errors, "dial error")
	waitFor(t, probe.closed, "close")
	assert.Empty(t, probe.opened)
}

func TestClientOverWebSocket(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	opened := make(chan struct{}, 1)
	received := make(chan GlobalSyncStatus, 4)
	c := NewClient(Config{BaseURL: srv.URL}, nil,
		WithStateObserver(func(_ string, s ConnectionState, _ error) {
			if s.Phase == PhaseConnected {
				opened <- struct{}{}
			}
		}),
		WithMessageObserver(func(_ string, _ Message, s GlobalSyncStatus) { received <- s }),
	)

	require.NoError(t, c.Connect("acct-9"))
	waitFor(t, opened, "connected")
	status := waitFor(t, received, "status")
	assert.True(t, status.Active)
	assert.Equal(t, "/ws/phone/acct-9", status.Operation())

	require.NoError(t, c.Send(map[string]interface{}{"type": "sync_completed", "data": map[string]interface{}{}}))
	status = waitFor(t, received, "echoed completion")
	assert.Equal(t, 100.0, status.Progress)
	assert.False(t, status.Active)

	c.Disconnect()
	assert.Equal(t, PhaseDisconnected, c.State().Phase)
}
