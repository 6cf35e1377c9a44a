package repository

import (
	"context"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/database"
)

// RedisPresenceRelay publishes online/offline transitions for other services
type RedisPresenceRelay struct {
	pubsub  *database.RedisPubSub
	channel string
	timeout time.Duration
}

// NewRedisPresenceRelay create a relay publishing on channel
func NewRedisPresenceRelay(pubsub *database.RedisPubSub, channel string) *RedisPresenceRelay {
	return &RedisPresenceRelay{pubsub: pubsub, channel: channel, timeout: 2 * time.Second}
}

// PublishTransition send one transition, bounded by a short timeout
func (r *RedisPresenceRelay) PublishTransition(t domain.PresenceTransition) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.pubsub.Publish(ctx, r.channel, t)
}
