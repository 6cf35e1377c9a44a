package app

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

var (
	// ErrConnectionClosed Send on a connection whose writer has stopped
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendQueueFull outbound queue full, frame dropped
	ErrSendQueueFull = errors.New("send queue full")
)

// Connection one live client channel. Send never blocks.
type Connection interface {
	ID() string
	UserID() string
	Send(resp domain.WSResponse) error
}

// wsConnection owns the outbound queue of one websocket, writePump is its only writer
type wsConnection struct {
	id     string
	userID string
	conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	pingInterval time.Duration
	metrics      *metrics.Metrics
}

func newWSConnection(id, userID string, conn *websocket.Conn, buffer int, pingInterval time.Duration, m *metrics.Metrics) *wsConnection {
	if buffer <= 0 {
		buffer = 64
	}
	if pingInterval <= 0 {
		pingInterval = 54 * time.Second
	}
	return &wsConnection{
		id:           id,
		userID:       userID,
		conn:         conn,
		send:         make(chan []byte, buffer),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		metrics:      m,
	}
}

func (c *wsConnection) ID() string     { return c.id }
func (c *wsConnection) UserID() string { return c.userID }

func (c *wsConnection) Send(resp domain.WSResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- b:
		return nil
	default:
		if c.metrics != nil {
			c.metrics.FramesDropped.Inc()
		}
		logger.Log.Warn("send queue full, frame dropped",
			zap.String("userID", c.userID), zap.String("connID", c.id), zap.String("event", resp.Event))
		return ErrSendQueueFull
	}
}

// pongWait read deadline, renewed by every pong
func (c *wsConnection) pongWait() time.Duration {
	return c.pingInterval * 10 / 9
}

func (c *wsConnection) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.Debug("websocket write failed", zap.String("connID", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Log.Debug("websocket ping failed", zap.String("connID", c.id), zap.Error(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsConnection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
