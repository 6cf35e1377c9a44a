package app

import (
	"context"
	"errors"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"

	"go.uber.org/zap"
)

// Dispatcher routes one decoded client frame to the message router and
// answers it: exactly one ack when the frame carries an ack id, otherwise an
// error push on failure.
type Dispatcher struct {
	router  *MessageRouter
	topics  *Topics
	metrics *metrics.Metrics
}

// NewDispatcher create Dispatcher, m may be nil
func NewDispatcher(router *MessageRouter, topics *Topics, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{router: router, topics: topics, metrics: m}
}

// Dispatch handle one frame from conn
func (d *Dispatcher) Dispatch(ctx context.Context, conn Connection, req domain.WSRequest) {
	payload, err := d.execute(ctx, conn, req)

	if d.metrics != nil {
		label := req.Event
		if errors.Is(err, domain.ErrUnknownEvent) {
			label = "unknown"
		}
		d.metrics.RecordEvent(label, err == nil)
	}

	if err != nil {
		fields := []zap.Field{zap.String("userID", conn.UserID()), zap.String("event", req.Event), zap.Error(err)}
		if domain.IsPersistence(err) {
			logger.Log.Error("websocket event failed", fields...)
		} else {
			logger.Log.Debug("websocket event rejected", fields...)
		}
	}

	switch {
	case req.AckID != "":
		_ = conn.Send(ack(req, payload, err))
	case err != nil:
		_ = conn.Send(domain.WSResponse{Event: string(domain.EventError), Error: clientError(err), Payload: map[string]string{"event": req.Event}})
	}
}

func (d *Dispatcher) execute(ctx context.Context, conn Connection, req domain.WSRequest) (interface{}, error) {
	ev, err := domain.DecodeClientEvent(req)
	if err != nil {
		return nil, err
	}

	switch e := ev.(type) {
	case domain.SendPrivateMessage:
		msg, err := d.router.SendDirectMessage(ctx, conn, e.RecipientID, e.Text)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": msg}, nil

	case domain.JoinPost:
		d.topics.Join(domain.PostTopic(e.PostID), conn)
		return map[string]string{"postId": e.PostID}, nil

	case domain.LeavePost:
		d.topics.Leave(domain.PostTopic(e.PostID), conn)
		return map[string]string{"postId": e.PostID}, nil

	case domain.AddComment:
		c, err := d.router.AddComment(ctx, conn.UserID(), e.PostID, e.Content, e.ParentCommentID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"comment": c}, nil

	case domain.CastVote:
		return d.router.Vote(ctx, conn.UserID(), e.TargetType, e.TargetID, e.Direction)

	case domain.DeleteComment:
		c, err := d.router.DeleteComment(ctx, conn.UserID(), e.CommentID)
		if err != nil {
			return nil, err
		}
		return map[string]string{"commentId": c.ID, "postId": c.Post}, nil
	}

	return nil, domain.ErrUnknownEvent
}

func ack(req domain.WSRequest, payload interface{}, err error) domain.WSResponse {
	resp := domain.WSResponse{Event: req.Event, AckID: req.AckID, Success: err == nil, Payload: payload}
	if err != nil {
		resp.Payload = nil
		resp.Error = clientError(err)
	}
	return resp
}

// clientError hides storage details from the client
func clientError(err error) string {
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return "failed to " + perr.Op
	}
	return err.Error()
}
