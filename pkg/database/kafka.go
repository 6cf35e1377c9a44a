package database

import (
	"context"
	"fmt"
	"time"

	"focushub/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry waits until one broker answers, then returns an async writer for k.Topic
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	var err error
	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var conn *kafka.Conn
		conn, err = kafka.DialContext(ctx, "tcp", k.Brokers[0])
		cancel()
		if err == nil {
			_ = conn.Close()
			logger.Log.Info("Kafka broker reachable", zap.Strings("brokers", k.Brokers), zap.Int("attempt", attempt))
			return &kafka.Writer{
				Addr:                   kafka.TCP(k.Brokers...),
				Topic:                  k.Topic,
				Balancer:               &kafka.LeastBytes{},
				AllowAutoTopicCreation: true,
				Async:                  true,
				Completion: func(messages []kafka.Message, err error) {
					if err != nil {
						logger.Log.Warn("kafka write failed", zap.Int("messages", len(messages)), zap.Error(err))
					}
				},
			}, nil
		}

		logger.Log.Warn("Kafka broker unreachable, retrying...",
			zap.Int("attempt", attempt), zap.Int("max", k.RetryCount), zap.Error(err))
		time.Sleep(k.RetryInterval)
	}

	return nil, fmt.Errorf("cannot reach kafka after %d attempts: %w", k.RetryCount, err)
}
