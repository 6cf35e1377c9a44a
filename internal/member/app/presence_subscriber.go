package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"focushub/internal/member/domain"
	"focushub/pkg/logger"

	"go.uber.org/zap"
)

// Subscriber delivers raw channel payloads until ctx is done
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(payload []byte)) error
}

// PresenceSubscriber keeps member.status in step with chat presence transitions
type PresenceSubscriber struct {
	usecase MemberUseCase
	sub     Subscriber
	channel string
	timeout time.Duration
}

// NewPresenceSubscriber create a PresenceSubscriber on channel
func NewPresenceSubscriber(usecase MemberUseCase, sub Subscriber, channel string) *PresenceSubscriber {
	return &PresenceSubscriber{usecase: usecase, sub: sub, channel: channel, timeout: 3 * time.Second}
}

// Start subscribes and returns once the subscription is confirmed
func (p *PresenceSubscriber) Start(ctx context.Context) error {
	if err := p.sub.Subscribe(ctx, p.channel, p.handle); err != nil {
		return err
	}
	logger.Log.Info("presence subscriber started", zap.String("channel", p.channel))
	return nil
}

func (p *PresenceSubscriber) handle(payload []byte) {
	var t domain.PresenceTransition
	if err := json.Unmarshal(payload, &t); err != nil {
		logger.Log.Warn("drop malformed presence transition", zap.ByteString("payload", payload), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.usecase.ApplyPresence(ctx, t)
	switch {
	case err == nil:
		logger.Log.Debug("presence applied", zap.String("member_id", t.UserID), zap.String("status", t.Status))
	case errors.Is(err, domain.ErrNotFound):
		logger.Log.Debug("presence for unknown member", zap.String("member_id", t.UserID))
	default:
		logger.Log.Warn("apply presence failed", zap.String("member_id", t.UserID), zap.Error(err))
	}
}
