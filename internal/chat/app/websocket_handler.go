package app

import (
	"context"
	"encoding/json"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"
	"focushub/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatWebsocketHandler owns the lifecycle of every websocket connection
type ChatWebsocketHandler struct {
	presence   *PresenceTracker
	topics     *Topics
	dispatcher *Dispatcher
	metrics    *metrics.Metrics

	sendBuffer   int
	pingInterval time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	presence *PresenceTracker,
	topics *Topics,
	dispatcher *Dispatcher,
	m *metrics.Metrics,
	sendBuffer int,
	pingInterval time.Duration,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		presence:     presence,
		topics:       topics,
		dispatcher:   dispatcher,
		metrics:      m,
		sendBuffer:   sendBuffer,
		pingInterval: pingInterval,
	}
}

// HandleConnection entry point of one websocket, runs until the client goes away.
// The gate middleware has already put the authenticated id in Locals.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	if memberID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
		return
	}

	c := newWSConnection(uuid.New().String(), memberID, conn, h.sendBuffer, h.pingInterval, h.metrics)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	if h.metrics != nil {
		h.metrics.RecordWebSocketConnection()
	}
	logger.Log.Info("websocket connected", zap.String("userID", memberID), zap.String("connID", c.ID()))

	defer func() {
		h.topics.LeaveAll(c)
		h.presence.Deregister(c)
		c.close()
		<-writerDone
		if h.metrics != nil {
			h.metrics.RecordWebSocketDisconnection()
		}
		logger.Log.Info("websocket close", zap.String("userID", memberID), zap.String("connID", c.ID()))
	}()

	h.presence.Register(c)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Warn("websocket read error", zap.String("userID", memberID), zap.Error(err))
			}
			return
		}

		if mt != websocket.TextMessage {
			_ = c.Send(domain.WSResponse{Event: string(domain.EventError), Error: "text frames only"})
			continue
		}

		var req domain.WSRequest
		if err := json.Unmarshal(message, &req); err != nil {
			_ = c.Send(domain.WSResponse{Event: string(domain.EventError), Error: "malformed frame"})
			continue
		}

		h.dispatcher.Dispatch(ctx, c, req)
	}
}
