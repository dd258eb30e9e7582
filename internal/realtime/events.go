package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event kinds accepted over the realtime boundary. Join and leave manage
// room membership; the four mutation kinds are relayed to the room verbatim.
const (
	EventJoinWishlist  = "join-wishlist"
	EventLeaveWishlist = "leave-wishlist"

	EventProductAdded   = "product-added"
	EventProductUpdated = "product-updated"
	EventProductRemoved = "product-removed"
	EventWishlistUpdate = "wishlist-updated"
)

// Frame is the single wire shape for client-originated realtime traffic.
// Payload is passed through untouched; the hub never re-derives it from
// the store.
type Frame struct {
	Event      string          `json:"event"`
	WishlistID uuid.UUID       `json:"wishlistId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// IsRelayable reports whether the event kind is one of the four mutation
// notifications forwarded to room members.
func IsRelayable(event string) bool {
	switch event {
	case EventProductAdded, EventProductUpdated, EventProductRemoved, EventWishlistUpdate:
		return true
	}
	return false
}
