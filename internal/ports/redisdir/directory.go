package redisdir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"landlord/internal/app"
	"landlord/internal/config"
	"landlord/internal/ports"

	"github.com/redis/go-redis/v9"
)

const (
	// RoomKeyPrefix prefixes room to node keys.
	RoomKeyPrefix = "landlord:room:"

	DefaultTTL = 10 * time.Minute
)

// RoomKey builds the key holding the node of a room.
// Key: landlord:room:{roomID}, Value: node id
func RoomKey(roomID string) string {
	return RoomKeyPrefix + roomID
}

// Directory stores room placement in Redis with a TTL refreshed while the room lives.
type Directory struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.RoomDirectory = (*Directory)(nil)

// NewClient creates a Redis client from config.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// New returns a directory over client. A non-positive ttl uses DefaultTTL.
func New(client redis.Cmdable, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Directory{client: client, ttl: ttl}
}

func (d *Directory) Register(ctx context.Context, roomID, node string) error {
	if err := d.client.Set(ctx, RoomKey(roomID), node, d.ttl).Err(); err != nil {
		return fmt.Errorf("register room %s: %w", roomID, err)
	}
	return nil
}

func (d *Directory) Lookup(ctx context.Context, roomID string) (string, error) {
	node, err := d.client.Get(ctx, RoomKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("room %s: %w", roomID, app.ErrRoomNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("lookup room %s: %w", roomID, err)
	}
	return node, nil
}

// Refresh extends the TTL of a live room.
func (d *Directory) Refresh(ctx context.Context, roomID string) error {
	ok, err := d.client.Expire(ctx, RoomKey(roomID), d.ttl).Result()
	if err != nil {
		return fmt.Errorf("refresh room %s: %w", roomID, err)
	}
	if !ok {
		return fmt.Errorf("room %s: %w", roomID, app.ErrRoomNotFound)
	}
	return nil
}

func (d *Directory) Unregister(ctx context.Context, roomID string) error {
	if err := d.client.Del(ctx, RoomKey(roomID)).Err(); err != nil {
		return fmt.Errorf("unregister room %s: %w", roomID, err)
	}
	return nil
}
