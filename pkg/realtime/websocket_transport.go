package realtime

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

var errSendBufferFull = errors.New("realtime: send buffer full")

// WebSocketOptions tunes the production transport.
type WebSocketOptions struct {
	Dialer *websocket.Dialer
	Header http.Header
	Logger Logger
}

// NewWebSocketFactory returns a TransportFactory that dials with fasthttp/websocket.
func NewWebSocketFactory(opts WebSocketOptions) TransportFactory {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
	}
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	return func(url string, handler TransportHandler) (Transport, error) {
		ctx, cancel := context.WithCancel(context.Background())
		t := &wsTransport{
			url:     url,
			header:  opts.Header,
			dialer:  dialer,
			handler: handler,
			logger:  log,
			ctx:     ctx,
			cancel:  cancel,
			send:    make(chan []byte, sendBuffer),
			done:    make(chan struct{}),
		}
		go t.run()
		return t, nil
	}
}

// wsTransport owns one socket: a dial, then a read pump on its goroutine and a
// write pump that also keeps the connection alive with pings.
type wsTransport struct {
	url     string
	header  http.Header
	dialer  *websocket.Dialer
	handler TransportHandler
	logger  Logger

	ctx    context.Context
	cancel context.CancelFunc

	send chan []byte
	done chan struct{}

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (t *wsTransport) run() {
	defer t.finish()

	conn, _, err := t.dialer.DialContext(t.ctx, t.url, t.header)
	if err != nil {
		if t.ctx.Err() == nil {
			t.emitError(err)
		}
		return
	}

	t.mu.Lock()
	if t.ctx.Err() != nil {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	if t.handler.OnOpen != nil {
		t.handler.OnOpen()
	}

	go t.writePump(conn)
	t.readPump(conn)
}

func (t *wsTransport) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if t.ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.emitError(err)
			}
			return
		}
		if t.handler.OnMessage != nil {
			t.handler.OnMessage(data)
		}
	}
}

func (t *wsTransport) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-t.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				t.logger.Warn(logModule, "write failed", map[string]interface{}{"url": t.url, "error": err.Error()})
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logger.Warn(logModule, "ping failed", map[string]interface{}{"url": t.url, "error": err.Error()})
				return
			}
		case <-t.done:
			return
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *wsTransport) emitError(err error) {
	if t.handler.OnError != nil {
		t.handler.OnError(err)
	}
}

// finish runs once the read side is gone and reports the close.
func (t *wsTransport) finish() {
	close(t.done)
	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.mu.Unlock()
	if t.handler.OnClose != nil {
		t.handler.OnClose()
	}
}

func (t *wsTransport) Send(data []byte) error {
	select {
	case <-t.done:
		return ErrNotConnected
	default:
	}
	select {
	case t.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close cancels a pending dial or closes the live socket. OnClose still fires,
// from the transport's own goroutine.
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		t.cancel()
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		}
	})
	return nil
}
