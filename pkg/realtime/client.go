// Package realtime keeps one resilient WebSocket subscription to the backend push
// channel and folds the sync events it carries into a status a UI can render.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// PathTemplate is appended to the base URL; %s is the escaped identifier.
const PathTemplate = "/ws/phone/%s"

// DefaultMessageLogLimit bounds the in-memory message log.
const DefaultMessageLogLimit = 1000

// Config is what a Client needs besides its collaborators.
type Config struct {
	BaseURL         string
	Policy          ReconnectPolicy
	MessageLogLimit int
}

// StateObserver is told about every state change. It runs outside the client
// lock and may call back into the client.
type StateObserver func(identifier string, state ConnectionState, err error)

// MessageObserver is told about every accepted message and the resulting status.
type MessageObserver func(identifier string, msg Message, status GlobalSyncStatus)

// Option configures a Client.
type Option func(*Client)

func WithClock(c Clock) Option { return func(cl *Client) { cl.clock = c } }

func WithLogger(l Logger) Option { return func(cl *Client) { cl.logger = l } }

func WithStateObserver(o StateObserver) Option {
	return func(cl *Client) { cl.onState = append(cl.onState, o) }
}

func WithMessageObserver(o MessageObserver) Option {
	return func(cl *Client) { cl.onMessage = append(cl.onMessage, o) }
}

// attempt is one dial. Callbacks carry the attempt they belong to, so anything
// arriving from a superseded attempt is ignored.
type attempt struct {
	transport Transport
	closed    bool
}

// Client is the realtime sync client. Each instance owns one subscription.
type Client struct {
	cfg     Config
	policy  ReconnectPolicy
	factory TransportFactory
	clock   Clock
	logger  Logger

	onState   []StateObserver
	onMessage []MessageObserver

	mu           sync.Mutex
	identifier   string
	url          string
	state        ConnectionState
	status       GlobalSyncStatus
	messages     []Message
	lastErr      error
	transportErr bool
	current      *attempt
	timer        Timer
	timerSeq     uint64
}

// NewClient builds a disconnected client. A nil factory dials real WebSockets.
func NewClient(cfg Config, factory TransportFactory, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		policy: cfg.Policy.withDefaults(),
		clock:  SystemClock(),
		logger: nopLogger{},
	}
	if c.cfg.MessageLogLimit <= 0 {
		c.cfg.MessageLogLimit = DefaultMessageLogLimit
	}
	for _, opt := range opts {
		opt(c)
	}
	if factory == nil {
		factory = NewWebSocketFactory(WebSocketOptions{Logger: c.logger})
	}
	c.factory = factory
	return c
}

// ResolveURL swaps http(s) for ws(s) and appends the identifier path.
func ResolveURL(baseURL, identifier string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", fmt.Errorf("%w: base URL is not set", ErrConfiguration)
	}
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("%w: identifier is required", ErrConfiguration)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrConfiguration, u.Scheme)
	}
	return u.String() + fmt.Sprintf(PathTemplate, url.PathEscape(identifier)), nil
}

// Connect starts (or restarts) the subscription for identifier and resets the
// reconnect counter. Configuration problems fail fast without dialing.
func (c *Client) Connect(identifier string) error {
	target, err := ResolveURL(c.cfg.BaseURL, identifier)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		state := c.state
		c.mu.Unlock()
		c.logger.Error(logModule, "connect rejected", map[string]interface{}{"identifier": identifier, "error": err.Error()})
		c.notifyState(identifier, state, err)
		return err
	}

	c.mu.Lock()
	if identifier != c.identifier {
		c.messages = nil
		c.status = GlobalSyncStatus{}
	}
	c.identifier = identifier
	c.url = target
	c.lastErr = nil
	c.transportErr = false
	stale := c.detachLocked()
	effects := c.applyLocked(EventConnect)
	c.mu.Unlock()

	c.logger.Info(logModule, "connecting", map[string]interface{}{"identifier": identifier, "url": target})
	stale()
	effects()
	return nil
}

// Disconnect cancels any pending reconnect, closes the live transport and moves
// to Disconnected. Calling it again is harmless.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state.Phase == PhaseDisconnected && c.current == nil && c.timer == nil {
		c.mu.Unlock()
		return
	}
	effects := c.applyLocked(EventDisconnect)
	c.mu.Unlock()

	c.logger.Info(logModule, "disconnected", map[string]interface{}{"identifier": c.Identifier()})
	effects()
}

// Send JSON-encodes payload and writes it on the open connection.
func (c *Client) Send(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	c.mu.Lock()
	var t Transport
	if c.state.Phase == PhaseConnected && c.current != nil {
		t = c.current.transport
	}
	c.mu.Unlock()

	if t == nil {
		return ErrNotConnected
	}
	return t.Send(data)
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Status() GlobalSyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Messages returns a copy of the message log, oldest first.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Client) ClearMessages() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// LastError is the most recent configuration, transport or exhaustion error.
// A successful open clears it.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// TransportErrored reports whether the socket raised an error since the last open.
func (c *Client) TransportErrored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transportErr
}

func (c *Client) Identifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identifier
}

// applyLocked runs the state machine for ev and returns the side effects to
// perform once the lock is released.
func (c *Client) applyLocked(ev EventKind) func() {
	prev := c.state
	next, action := Transition(c.state, ev, c.policy)
	c.state = next

	var after []func()

	switch action.Kind {
	case ActionDial:
		after = append(after, c.dialLocked())

	case ActionScheduleReconnect:
		c.current = nil
		c.timerSeq++
		seq := c.timerSeq
		c.timer = c.clock.AfterFunc(action.Delay, func() { c.onTimer(seq) })
		c.logger.Warn(logModule, "connection closed, scheduling reconnect", map[string]interface{}{
			"identifier": c.identifier,
			"attempt":    next.Attempt,
			"delay_ms":   action.Delay.Milliseconds(),
		})

	case ActionGiveUp:
		c.current = nil
		c.lastErr = fmt.Errorf("%w after %d attempts", ErrReconnectExhausted, next.Attempt)
		c.logger.Error(logModule, "giving up on reconnect", map[string]interface{}{
			"identifier": c.identifier,
			"attempts":   next.Attempt,
		})

	case ActionTeardown:
		after = append(after, c.detachLocked())
	}

	if next != prev {
		identifier, err := c.identifier, c.lastErr
		after = append(after, func() { c.notifyState(identifier, next, err) })
	}

	return func() {
		for _, f := range after {
			f()
		}
	}
}

// detachLocked forgets the live attempt and pending timer and returns the
// cleanup to run outside the lock.
func (c *Client) detachLocked() func() {
	a := c.current
	t := c.timer
	c.current = nil
	c.timer = nil
	c.timerSeq++

	return func() {
		if t != nil {
			t.Stop()
		}
		if a != nil && a.transport != nil {
			a.transport.Close()
		}
	}
}

// dialLocked registers a new attempt and returns the function that dials it.
func (c *Client) dialLocked() func() {
	a := &attempt{}
	c.current = a
	c.timer = nil
	target := c.url

	handler := TransportHandler{
		OnOpen:    func() { c.onOpen(a) },
		OnMessage: func(data []byte) { c.handleMessage(a, data) },
		OnError:   func(err error) { c.onError(a, err) },
		OnClose:   func() { c.onClose(a) },
	}

	return func() {
		t, err := c.factory(target, handler)

		c.mu.Lock()
		if err != nil {
			c.mu.Unlock()
			c.onError(a, err)
			c.onClose(a)
			return
		}
		if c.current != a || a.closed {
			c.mu.Unlock()
			t.Close()
			return
		}
		a.transport = t
		c.mu.Unlock()
	}
}

func (c *Client) onOpen(a *attempt) {
	c.mu.Lock()
	if c.current != a || a.closed {
		c.mu.Unlock()
		return
	}
	c.lastErr = nil
	c.transportErr = false
	effects := c.applyLocked(EventOpen)
	identifier := c.identifier
	c.mu.Unlock()

	c.logger.Info(logModule, "connected", map[string]interface{}{"identifier": identifier})
	effects()
}

func (c *Client) handleMessage(a *attempt, data []byte) {
	msg, err := ParseMessage(data, c.clock.Now())
	if err != nil {
		c.logger.Warn(logModule, "dropping malformed message", map[string]interface{}{
			"error":   err.Error(),
			"payload": truncate(string(data), 256),
		})
		return
	}

	c.mu.Lock()
	if c.current != a || a.closed {
		c.mu.Unlock()
		return
	}
	c.messages = append(c.messages, msg)
	if over := len(c.messages) - c.cfg.MessageLogLimit; over > 0 {
		c.messages = append([]Message(nil), c.messages[over:]...)
	}
	c.status = Fold(c.status, msg)
	status := c.status
	identifier := c.identifier
	c.mu.Unlock()

	for _, o := range c.onMessage {
		o(identifier, msg, status)
	}
}

func (c *Client) onError(a *attempt, err error) {
	c.mu.Lock()
	if c.current != a || a.closed {
		c.mu.Unlock()
		return
	}
	c.transportErr = true
	c.lastErr = fmt.Errorf("%w: %v", ErrTransport, err)
	effects := c.applyLocked(EventError)
	identifier := c.identifier
	c.mu.Unlock()

	c.logger.Warn(logModule, "transport error", map[string]interface{}{"identifier": identifier, "error": err.Error()})
	effects()
}

func (c *Client) onClose(a *attempt) {
	c.mu.Lock()
	if c.current != a || a.closed {
		c.mu.Unlock()
		return
	}
	a.closed = true
	effects := c.applyLocked(EventClose)
	c.mu.Unlock()

	effects()
}

func (c *Client) onTimer(seq uint64) {
	c.mu.Lock()
	if seq != c.timerSeq || c.state.Phase != PhaseReconnecting {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	effects := c.applyLocked(EventTimer)
	c.mu.Unlock()

	effects()
}

func (c *Client) notifyState(identifier string, state ConnectionState, err error) {
	for _, o := range c.onState {
		o(identifier, state, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
