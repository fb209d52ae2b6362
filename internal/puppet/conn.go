// Package puppet holds the client side of the Puppet browse service: one
// WebSocket connection per session, outbound render requests, and dispatch of
// the tagged messages the service streams back.
package puppet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/swisscows/browsebridge/internal/protocol"
)

// State tracks the connection lifecycle. Transitions are one-way:
// unconnected -> open -> closed. There is no reconnect; a closed Conn stays
// closed and a new session needs a new Conn.
type State int

const (
	StateUnconnected State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNeverConnected is returned by Close on a Conn that never dialed.
// The legacy client dereferenced an absent handle here; this makes the
// caller error explicit instead.
var ErrNeverConnected = errors.New("puppet: close called before connect")

// Conn owns a single WebSocket connection to the Puppet endpoint. The
// transport handle is never exposed; all transitions go through Connect,
// Send, and Close. Inbound messages are dispatched one at a time in delivery
// order to the handlers supplied at construction.
type Conn struct {
	endpoint string
	handlers Handlers

	mu    sync.Mutex
	conn  net.Conn
	state State
}

// NewConn prepares an unconnected Conn for the given wss:// endpoint.
func NewConn(endpoint string, handlers Handlers) *Conn {
	return &Conn{endpoint: endpoint, handlers: handlers}
}

// Connect dials the endpoint and starts the read loop. Calling Connect on a
// Conn that already holds a transport replaces the old handle; this is
// intentionally permissive, matching a single-attempt client.
func (c *Conn) Connect(ctx context.Context) error {
	conn, _, _, err := ws.Dial(ctx, c.endpoint)
	if err != nil {
		return fmt.Errorf("puppet: dial %s: %w", c.endpoint, err)
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	slog.Debug("puppet: connected", "endpoint", c.endpoint)
	go c.readLoop(conn)
	return nil
}

// Send serializes payload and writes it as a text frame. Outside the open
// state it transmits nothing and reports the drop through exactly one
// diagnostic; it never panics and never returns an error to the caller.
func (c *Conn) Send(payload any) {
	c.mu.Lock()
	if c.state != StateOpen || c.conn == nil {
		state := c.state
		c.mu.Unlock()
		slog.Warn("puppet: send dropped, connection not open", "state", state.String())
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.mu.Unlock()
		slog.Error("puppet: send dropped, payload not serializable", "error", err)
		return
	}

	err = wsutil.WriteClientText(c.conn, data)
	c.mu.Unlock()
	if err != nil {
		slog.Error("puppet: send failed", "error", err)
	}
}

// Close shuts the transport down and moves the Conn to its terminal state.
// Closing a never-connected Conn is a caller error and returns
// ErrNeverConnected; closing twice is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateUnconnected:
		return ErrNeverConnected
	case StateClosed:
		return nil
	}

	c.state = StateClosed
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("puppet: close: %w", err)
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// readLoop pulls text frames off the wire and dispatches them in delivery
// order. It exits on the first read error, which covers both explicit Close
// and remote closure; either way the Conn ends up closed.
func (c *Conn) readLoop(conn net.Conn) {
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.state = StateClosed
				c.conn = nil
				_ = conn.Close()
			}
			c.mu.Unlock()
			slog.Debug("puppet: read loop exit", "error", err)
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("puppet: undecodable frame dropped", "error", err)
			continue
		}
		Dispatch(msg, c.handlers)
	}
}
