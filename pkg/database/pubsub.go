package database

import (
	"context"
	"encoding/json"

	"focushub/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPubSub JSON messages over redis channels
type RedisPubSub struct {
	client redis.UniversalClient
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client redis.UniversalClient) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish marshal message and publish it on channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe calls handler with every raw payload on channel until ctx is done
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error {
	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(m.Payload))
			case <-ctx.Done():
				logger.Log.Info("subscription closed", zap.String("channel", channel))
				return
			}
		}
	}()
	return nil
}
