package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wishlane/wishlane-backend/pkg/logger"
)

// Conn is the hub's view of one live realtime connection.
type Conn interface {
	ID() string
	UserID() uuid.UUID
	// Enqueue hands a frame to the connection's send buffer without
	// blocking. It reports false when the buffer is full and the frame
	// was dropped.
	Enqueue(frame Frame) bool
}

// Fanout forwards relayed frames to sibling instances so rooms spanning
// more than one process still receive broadcasts.
type Fanout interface {
	Forward(ctx context.Context, wishlistID uuid.UUID, frame Frame) error
}

type room struct {
	mu      sync.RWMutex
	members map[string]Conn
	closed  bool
}

// Hub maintains wishlist-keyed rooms and relays client-originated frames
// to every other member of a room. Rooms lock independently; traffic on
// one wishlist never stalls another.
type Hub struct {
	rooms  sync.Map // uuid.UUID -> *room
	fanout Fanout
	log    *logger.Logger
}

// HubParams groups dependencies for the hub. Fanout is optional; a single
// instance works without it.
type HubParams struct {
	Logger *logger.Logger
	Fanout Fanout
}

// NewHub constructs a hub.
func NewHub(params HubParams) (*Hub, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Hub{fanout: params.Fanout, log: params.Logger}, nil
}

// Join adds the connection to a wishlist room, creating the room on first
// join. Joining a room twice with the same connection is a no-op.
func (h *Hub) Join(ctx context.Context, c Conn, wishlistID uuid.UUID) {
	if c == nil || wishlistID == uuid.Nil {
		return
	}
	for {
		value, _ := h.rooms.LoadOrStore(wishlistID, &room{members: map[string]Conn{}})
		r := value.(*room)
		r.mu.Lock()
		if r.closed {
			// Lost a race with the last leave; the entry is gone, retry.
			r.mu.Unlock()
			continue
		}
		r.members[c.ID()] = c
		r.mu.Unlock()
		return
	}
}

// Leave removes the connection from a room. Leaving a room the connection
// never joined is a no-op.
func (h *Hub) Leave(ctx context.Context, c Conn, wishlistID uuid.UUID) {
	if c == nil {
		return
	}
	value, ok := h.rooms.Load(wishlistID)
	if !ok {
		return
	}
	h.removeMember(value.(*room), wishlistID, c.ID())
}

// Disconnect removes the connection from every room it joined. Called once
// when the transport closes; no other component needs to clean up.
func (h *Hub) Disconnect(ctx context.Context, c Conn) {
	if c == nil {
		return
	}
	h.rooms.Range(func(key, value any) bool {
		h.removeMember(value.(*room), key.(uuid.UUID), c.ID())
		return true
	})
}

// Relay delivers a client-originated frame to every other member of the
// frame's room. The sender never receives its own event. The payload is
// broadcast exactly as given.
func (h *Hub) Relay(ctx context.Context, sender Conn, frame Frame) {
	if !IsRelayable(frame.Event) {
		h.log.Warn(h.log.WithField(ctx, "event", frame.Event), "ignoring unknown realtime event")
		return
	}
	senderID := ""
	if sender != nil {
		senderID = sender.ID()
	}
	h.deliver(ctx, senderID, frame)

	if h.fanout != nil {
		if err := h.fanout.Forward(ctx, frame.WishlistID, frame); err != nil {
			h.log.Error(ctx, "forward realtime frame to siblings", err)
		}
	}
}

// deliver fans a frame out to the local room, excluding excludeID when set.
func (h *Hub) deliver(ctx context.Context, excludeID string, frame Frame) {
	value, ok := h.rooms.Load(frame.WishlistID)
	if !ok {
		return
	}
	r := value.(*room)

	r.mu.RLock()
	targets := make([]Conn, 0, len(r.members))
	for id, member := range r.members {
		if id == excludeID {
			continue
		}
		targets = append(targets, member)
	}
	r.mu.RUnlock()

	for _, member := range targets {
		if !member.Enqueue(frame) {
			dropCtx := h.log.WithConnectionID(ctx, member.ID())
			h.log.Warn(h.log.WithField(dropCtx, "event", frame.Event), "dropping frame for slow realtime client")
		}
	}
}

// RoomSize reports the current membership of a room. Zero for unknown rooms.
func (h *Hub) RoomSize(wishlistID uuid.UUID) int {
	value, ok := h.rooms.Load(wishlistID)
	if !ok {
		return 0
	}
	r := value.(*room)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (h *Hub) removeMember(r *room, wishlistID uuid.UUID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	delete(r.members, connID)
	if len(r.members) == 0 {
		r.closed = true
		h.rooms.Delete(wishlistID)
	}
}
