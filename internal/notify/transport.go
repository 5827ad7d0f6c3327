package notify

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ConnState is the transport connection state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

const (
	// DefaultReconnectBase is the base interval for the linear reconnect
	// backoff (delay = base x attempt number).
	DefaultReconnectBase = 3 * time.Second
	// DefaultReconnectMax caps reconnect attempts; beyond it the transport
	// gives up and stays disconnected.
	DefaultReconnectMax = 5
)

// Transport is a reconnecting websocket client that bridges server-pushed
// notification events into a Center. Reconnects use linear backoff with a
// capped attempt count; outbound sends are at-most-once (dropped with a
// warning while disconnected).
type Transport struct {
	url         string
	center      *Center
	log         zerolog.Logger
	dialer      *websocket.Dialer
	base        time.Duration
	maxAttempts int

	mu         sync.Mutex
	wmu        sync.Mutex
	conn       *websocket.Conn
	state      ConnState
	attempts   int
	retryTimer *time.Timer
	closed     bool
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithReconnect overrides the backoff base interval and attempt cap.
func WithReconnect(base time.Duration, maxAttempts int) TransportOption {
	return func(t *Transport) {
		t.base = base
		t.maxAttempts = maxAttempts
	}
}

// WithTransportLogger sets the transport's logger.
func WithTransportLogger(log zerolog.Logger) TransportOption {
	return func(t *Transport) { t.log = log }
}

// NewTransport creates a transport for the given websocket endpoint,
// dispatching inbound events into center.
func NewTransport(wsURL string, center *Center, opts ...TransportOption) *Transport {
	t := &Transport{
		url:         wsURL,
		center:      center,
		log:         zerolog.Nop(),
		dialer:      websocket.DefaultDialer,
		base:        DefaultReconnectBase,
		maxAttempts: DefaultReconnectMax,
		state:       StateDisconnected,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EndpointFromPage derives the push endpoint URL from an http(s) page URL,
// matching the page's scheme.
func EndpointFromPage(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws/notifications"
	u.RawQuery = ""
	return u.String(), nil
}

// Connect starts the connection attempt. It returns immediately; connection
// status is reported through the store's IsConnected flag.
func (t *Transport) Connect() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.state = StateConnecting
	t.mu.Unlock()

	go t.dial()
}

func (t *Transport) dial() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.state = StateConnecting
	t.mu.Unlock()

	conn, _, err := t.dialer.Dial(t.url, nil)
	if err != nil {
		t.log.Warn().Err(err).Str("url", t.url).Msg("websocket dial failed")
		t.center.SetConnected(false)
		t.scheduleReconnect()
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.attempts = 0
	t.state = StateConnected
	t.mu.Unlock()

	t.center.SetConnected(true)
	t.log.Info().Str("url", t.url).Msg("websocket connected")

	go t.readLoop(conn)
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		t.handleMessage(data)
	}
	conn.Close()

	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	closed := t.closed
	t.state = StateDisconnected
	t.mu.Unlock()

	t.center.SetConnected(false)
	if !closed {
		t.scheduleReconnect()
	}
}

func (t *Transport) handleMessage(data []byte) {
	f, err := DecodeFrame(data)
	if err != nil {
		// Malformed pushes are logged and dropped, never fatal.
		t.log.Warn().Err(err).Msg("dropping malformed push frame")
		return
	}

	switch f.Type {
	case FrameNotification:
		t.center.Add(f.Inputs()[0])
	case FrameBulk:
		t.center.BulkAdd(f.Inputs())
	case FrameRead:
		t.center.MarkAsRead(f.ID)
	case FrameDeleted:
		t.center.Remove(f.ID)
	default:
		t.log.Warn().Str("type", string(f.Type)).Msg("dropping unexpected inbound frame type")
	}
}

func (t *Transport) scheduleReconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.retryTimer != nil {
		return
	}
	if t.attempts >= t.maxAttempts {
		t.state = StateDisconnected
		t.log.Error().Int("attempts", t.attempts).Msg("reconnect attempts exhausted, staying disconnected")
		return
	}

	t.attempts++
	delay := t.base * time.Duration(t.attempts)
	t.state = StateDisconnected
	t.retryTimer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.retryTimer = nil
		t.mu.Unlock()
		t.dial()
	})
	t.log.Info().Int("attempt", t.attempts).Dur("delay", delay).Msg("reconnect scheduled")
}

// Send publishes a client-originated frame if the transport is currently
// connected; otherwise the frame is dropped with a warning. There is no
// outbound queue.
func (t *Transport) Send(f *Frame) {
	t.mu.Lock()
	conn := t.conn
	connected := t.state == StateConnected
	t.mu.Unlock()

	if !connected || conn == nil {
		t.log.Warn().Str("type", string(f.Type)).Msg("transport disconnected, dropping outbound frame")
		return
	}

	data, err := f.Encode()
	if err != nil {
		t.log.Warn().Err(err).Msg("failed to encode outbound frame")
		return
	}

	t.wmu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	t.wmu.Unlock()
	if err != nil {
		t.log.Warn().Err(err).Msg("websocket write failed")
		t.center.SetConnected(false)
	}
}

// Subscribe asks the server to add topics to this client's subscription.
func (t *Transport) Subscribe(topics ...string) {
	t.Send(&Frame{Type: FrameSubscribe, Topics: topics})
}

// Unsubscribe asks the server to drop topics from this client's
// subscription.
func (t *Transport) Unsubscribe(topics ...string) {
	t.Send(&Frame{Type: FrameUnsubscribe, Topics: topics})
}

// Disconnect closes the connection and prevents any further reconnect
// attempt. Safe to call multiple times.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.retryTimer != nil {
		t.retryTimer.Stop()
		t.retryTimer = nil
	}
	conn := t.conn
	t.conn = nil
	t.state = StateDisconnected
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	t.center.SetConnected(false)
}

// State returns the current connection state.
func (t *Transport) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Attempts returns the number of reconnect attempts made since the last
// successful connection.
func (t *Transport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}
