package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wishlane/wishlane-backend/pkg/config"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

// Client wraps one websocket connection. The read pump dispatches inbound
// frames to the hub; the write pump drains the send buffer and keeps the
// connection alive with pings. Identity is asserted once at handshake time
// and never re-checked per message.
type Client struct {
	id     string
	userID uuid.UUID
	sock   *websocket.Conn
	hub    *Hub
	cfg    config.RealtimeConfig
	log    *logger.Logger

	send      chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

// ClientParams groups what a client needs to run.
type ClientParams struct {
	Socket *websocket.Conn
	Hub    *Hub
	UserID uuid.UUID
	Config config.RealtimeConfig
	Logger *logger.Logger
}

// NewClient builds a client for an already-upgraded, already-authenticated
// connection.
func NewClient(params ClientParams) (*Client, error) {
	if params.Socket == nil {
		return nil, fmt.Errorf("socket is required")
	}
	if params.Hub == nil {
		return nil, fmt.Errorf("hub is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return &Client{
		id:     uuid.NewString(),
		userID: params.UserID,
		sock:   params.Socket,
		hub:    params.Hub,
		cfg:    params.Config,
		log:    params.Logger,
		send:   make(chan Frame, params.Config.SendBufferSize),
		done:   make(chan struct{}),
	}, nil
}

func (c *Client) ID() string        { return c.id }
func (c *Client) UserID() uuid.UUID { return c.userID }

// Enqueue buffers an outbound frame. Full buffer means the frame is dropped;
// a slow reader never stalls the room.
func (c *Client) Enqueue(frame Frame) bool {
	select {
	case <-c.done:
		return false
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Run starts both pumps and blocks until the connection closes.
func (c *Client) Run(ctx context.Context) {
	ctx = c.log.WithConnectionID(c.log.WithUserID(ctx, c.userID.String()), c.id)
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Disconnect(ctx, c)
		c.close()
	}()

	c.sock.SetReadLimit(c.cfg.ReadLimitBytes)
	_ = c.sock.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn(ctx, "realtime connection closed unexpectedly")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Warn(ctx, "discarding malformed realtime frame")
			continue
		}
		c.dispatch(ctx, frame)
	}
}

func (c *Client) dispatch(ctx context.Context, frame Frame) {
	if frame.WishlistID == uuid.Nil {
		c.log.Warn(ctx, "discarding realtime frame without wishlist id")
		return
	}
	ctx = c.log.WithWishlistID(ctx, frame.WishlistID.String())

	switch frame.Event {
	case EventJoinWishlist:
		c.hub.Join(ctx, c, frame.WishlistID)
		c.log.Debug(ctx, "joined wishlist room")
	case EventLeaveWishlist:
		c.hub.Leave(ctx, c, frame.WishlistID)
		c.log.Debug(ctx, "left wishlist room")
	default:
		c.hub.Relay(ctx, c, frame)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			_ = c.sock.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.sock.WriteJSON(frame); err != nil {
				c.log.Warn(ctx, "realtime write failed")
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}
