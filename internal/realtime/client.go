package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Delivery errors reported by Client.Deliver. Both are best-effort
// conditions: the dispatcher logs them and moves on.
var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

const (
	sendBufferSize    = 64
	writeTimeout      = 10 * time.Second
	keepAliveInterval = 25 * time.Second
	pingTimeout       = 5 * time.Second
)

// Client is a websocket-backed Connection. Sockets are push-only: the
// handler discards inbound frames with CloseRead and the client owns a
// single write loop, so writes to the underlying connection are never
// concurrent.
type Client struct {
	id     string
	userID uint64
	conn   *websocket.Conn
	send   chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient wraps an accepted websocket connection for the given user
// and starts its write and keep-alive loops.
func NewClient(userID uint64, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.writeLoop()
	go c.keepAliveLoop()
	return c
}

// ID returns the connection identifier.
func (c *Client) ID() string { return c.id }

// UserID returns the authenticated user this connection belongs to.
func (c *Client) UserID() uint64 { return c.userID }

// Deliver enqueues ev without blocking. A full buffer means the peer
// is not draining; the event is dropped rather than stalling the
// caller, per the best-effort contract.
func (c *Client) Deliver(ev Event) error {
	select {
	case <-c.ctx.Done():
		return ErrConnClosed
	case c.send <- ev:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the loops and closes the underlying socket. Safe to call
// more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = wsjson.Write(wctx, c.conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			if err := c.conn.Ping(pctx); err != nil {
				cancel()
				c.Close()
				return
			}
			cancel()
		}
	}
}
