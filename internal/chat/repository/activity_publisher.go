package repository

import (
	"context"
	"encoding/json"

	"focushub/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// ActivityPublisher streams activity events
type ActivityPublisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
	Close() error
}

type kafkaActivityPublisher struct {
	writer *kafka.Writer
}

// NewKafkaActivityPublisher publish on the writer's topic, keyed by actor
func NewKafkaActivityPublisher(writer *kafka.Writer) ActivityPublisher {
	return &kafkaActivityPublisher{writer: writer}
}

func (p *kafkaActivityPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ActorID),
		Value: value,
	})
}

func (p *kafkaActivityPublisher) Close() error {
	return p.writer.Close()
}

// NopActivityPublisher drops everything, used when no broker is configured
type NopActivityPublisher struct{}

// Publish no-op
func (NopActivityPublisher) Publish(context.Context, domain.ActivityEvent) error { return nil }

// Close no-op
func (NopActivityPublisher) Close() error { return nil }
