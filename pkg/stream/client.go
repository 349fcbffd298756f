package stream

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Status is the connection lifecycle state, driven solely by transport
// events.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusError      Status = "error"
)

// Config controls connection and reconnection behavior.
type Config struct {
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	HandshakeTimeout  time.Duration
	PingInterval      time.Duration
}

func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		PingInterval:      30 * time.Second,
	}
}

// SnapshotHandler receives each normalized snapshot; the new snapshot
// replaces whatever was rendered before, wholesale.
type SnapshotHandler func(Snapshot)

// StatusHandler observes connection state transitions, for the visible
// status indicator.
type StatusHandler func(Status)

// Client keeps exactly one logical streaming connection alive for its own
// lifetime. Messages are read and delivered from a single goroutine, so
// snapshots arrive at the handler strictly in wire order. Drops are always
// retried with exponential backoff; there is no fatal error state.
type Client struct {
	url    string
	config Config
	logger *logrus.Logger

	onSnapshot SnapshotHandler
	onStatus   StatusHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewClient(url string, config Config, logger *logrus.Logger, onSnapshot SnapshotHandler, onStatus StatusHandler) *Client {
	return &Client{
		url:        url,
		config:     config,
		logger:     logger,
		onSnapshot: onSnapshot,
		onStatus:   onStatus,
		status:     StatusClosed,
		stop:       make(chan struct{}),
	}
}

// Start launches the connect/read/reconnect loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop tears the client down: it cancels any pending reconnect timer, closes
// the active connection and waits for the loop to exit.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
	c.wg.Wait()
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}
	retry := newBackoff(c.config.ReconnectDelay, c.config.MaxReconnectDelay)

	for {
		if c.stopped(ctx) {
			return
		}

		c.setStatus(StatusConnecting)
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.WithError(err).WithField("url", c.url).Warn("Websocket dial failed")
			c.setStatus(StatusClosed)
			if !c.wait(ctx, retry.Next()) {
				return
			}
			continue
		}

		c.setConn(conn)

		// Stop may have fired while the dial was in flight, before there
		// was a connection for it to close. Without this check the fresh
		// connection would keep readLoop alive forever.
		if c.stopped(ctx) {
			conn.Close()
			c.setConn(nil)
			return
		}

		c.setStatus(StatusOpen)
		retry.Reset()

		pingDone := make(chan struct{})
		c.wg.Add(1)
		go c.pingLoop(conn, pingDone)

		c.readLoop(conn)
		close(pingDone)

		c.setConn(nil)
		conn.Close()
		c.setStatus(StatusClosed)

		if c.stopped(ctx) {
			return
		}
		if !c.wait(ctx, retry.Next()) {
			return
		}
	}
}

// readLoop processes inbound messages in arrival order until the connection
// drops. Malformed payloads are logged and skipped without closing the
// connection; a read error surfaces the error state and returns so the run
// loop can funnel everything through the one reconnection path.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !c.stoppedNow() {
				c.logger.WithError(err).Warn("Websocket read failed")
				c.setStatus(StatusError)
			}
			return
		}

		snap, ok, err := Normalize(raw)
		if err != nil {
			c.logger.WithError(err).Warn("Discarding malformed feed message")
			continue
		}
		if !ok {
			continue
		}
		if c.onSnapshot != nil {
			c.onSnapshot(snap)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				// Reader sees the dead connection and reconnects.
				return
			}
		}
	}
}

// wait sleeps for the backoff delay, abandoning the pending reconnect when
// the client is stopped.
func (c *Client) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Client) stopped(ctx context.Context) bool {
	select {
	case <-c.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Client) stoppedNow() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()

	if changed && c.onStatus != nil {
		c.onStatus(s)
	}
}
