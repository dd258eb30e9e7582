package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/wishlane/wishlane-backend/pkg/logger"
	pkgredis "github.com/wishlane/wishlane-backend/pkg/redis"
)

// bridgeEnvelope wraps a relayed frame with the publishing instance's id so
// subscribers can ignore their own broadcasts.
type bridgeEnvelope struct {
	Origin string `json:"origin"`
	Frame  Frame  `json:"frame"`
}

type bridgePublisher interface {
	RoomChannel(tag, roomKey string) string
	Publish(ctx context.Context, channel string, payload []byte) error
	PSubscribe(ctx context.Context, pattern string) (*redislib.PubSub, error)
}

// Bridge fans relayed frames out through Redis Pub/Sub so rooms split
// across instances still hear each other. One channel per wishlist room.
type Bridge struct {
	instanceID string
	tag        string
	redis      bridgePublisher
	log        *logger.Logger
}

// BridgeParams groups bridge dependencies.
type BridgeParams struct {
	Redis  *pkgredis.Client
	Tag    string
	Logger *logger.Logger
}

// NewBridge constructs a bridge with a fresh instance id.
func NewBridge(params BridgeParams) (*Bridge, error) {
	if params.Redis == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	tag := params.Tag
	if tag == "" {
		tag = "wl"
	}
	return &Bridge{
		instanceID: uuid.NewString(),
		tag:        tag,
		redis:      params.Redis,
		log:        params.Logger,
	}, nil
}

// Forward publishes a relayed frame to the room's channel.
func (b *Bridge) Forward(ctx context.Context, wishlistID uuid.UUID, frame Frame) error {
	payload, err := json.Marshal(bridgeEnvelope{Origin: b.instanceID, Frame: frame})
	if err != nil {
		return fmt.Errorf("encode bridge envelope: %w", err)
	}
	return b.redis.Publish(ctx, b.redis.RoomChannel(b.tag, wishlistID.String()), payload)
}

// Run subscribes to every room channel and replays frames published by
// sibling instances into the local hub. Blocks until ctx is cancelled or
// the subscription drops.
func (b *Bridge) Run(ctx context.Context, hub *Hub) error {
	if hub == nil {
		return fmt.Errorf("hub is required")
	}
	sub, err := b.redis.PSubscribe(ctx, b.redis.RoomChannel(b.tag, "*"))
	if err != nil {
		return fmt.Errorf("subscribe room channels: %w", err)
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("room subscription closed")
			}
			b.handle(ctx, hub, msg.Payload)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, hub *Hub, payload string) {
	var envelope bridgeEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		b.log.Warn(ctx, "discarding malformed bridge envelope")
		return
	}
	if envelope.Origin == b.instanceID {
		return
	}
	if !IsRelayable(envelope.Frame.Event) || envelope.Frame.WishlistID == uuid.Nil {
		return
	}
	// Frames from siblings carry no local sender; everyone in the room
	// hears them.
	hub.deliver(ctx, "", envelope.Frame)
}
