package database

import (
	"fmt"
	"time"

	"focushub/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitRepo definition rabbit repo
type RabbitRepo interface {
	GetRabbit() *amqp.Channel
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type rabbitRepo struct {
	channel *amqp.Channel
}

// NewRabbitRepository create a RabbitRepository
func NewRabbitRepository(ch *amqp.Channel) RabbitRepo {
	return &rabbitRepo{channel: ch}
}

// ConnectRabbitMQWithRetry dial RabbitMQ, retrying RetryCount times
func ConnectRabbitMQWithRetry(d Connection) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for attempt := 1; attempt <= d.RetryCount; attempt++ {
		conn, err = amqp.Dial(d.ConnectStr)
		if err == nil {
			logger.Log.Info("RabbitMQ connected", zap.Int("attempt", attempt))
			return conn, nil
		}

		logger.Log.Warn("RabbitMQ connect failed, retrying...",
			zap.Int("attempt", attempt), zap.Int("max", d.RetryCount), zap.Error(err))
		time.Sleep(d.RetryInterval)
	}

	return nil, fmt.Errorf("cannot connect RabbitMQ after %d attempts: %w", d.RetryCount, err)
}

// GetRabbitMQChannelWithRetry open a channel on an existing connection
func GetRabbitMQChannelWithRetry(conn *amqp.Connection, maxRetries int, delay time.Duration) (*amqp.Channel, error) {
	var ch *amqp.Channel
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ch, err = conn.Channel()
		if err == nil {
			return ch, nil
		}

		logger.Log.Warn("RabbitMQ channel open failed, retrying...",
			zap.Int("attempt", attempt), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("cannot open RabbitMQ channel after %d attempts: %w", maxRetries, err)
}

// DeclareDurableQueue declares queue as durable and non-exclusive
func DeclareDurableQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(name, true, false, false, false, nil)
}

func (r *rabbitRepo) GetRabbit() *amqp.Channel {
	return r.channel
}

func (r *rabbitRepo) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return r.channel.Publish(exchange, key, mandatory, immediate, msg)
}
