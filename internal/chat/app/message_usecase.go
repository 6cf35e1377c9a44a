package app

import (
	"context"
	"strings"

	"focushub/internal/chat/domain"
	"focushub/internal/chat/repository"
	"focushub/pkg/logger"

	"go.uber.org/zap"
)

// MessageHistoryUseCase REST reads over direct messages
type MessageHistoryUseCase struct {
	msgRepo repository.MessageRepository
}

// NewMessageHistoryUseCase create MessageHistoryUseCase
func NewMessageHistoryUseCase(msgRepo repository.MessageRepository) *MessageHistoryUseCase {
	return &MessageHistoryUseCase{msgRepo: msgRepo}
}

// History last messages between userID and otherID, oldest first
func (uc *MessageHistoryUseCase) History(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return nil, domain.Validationf("otherUserId is required")
	}

	msgs, err := uc.msgRepo.History(ctx, domain.ConversationID(userID, otherID), domain.HistoryLimit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Unread unread counts addressed to userID grouped by sender
func (uc *MessageHistoryUseCase) Unread(ctx context.Context, userID string) ([]domain.UnreadCount, error) {
	counts, err := uc.msgRepo.UnreadBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []domain.UnreadCount{}
	}
	return counts, nil
}

// MarkRead marks everything senderID sent to userID as read
func (uc *MessageHistoryUseCase) MarkRead(ctx context.Context, userID, senderID string) (int64, error) {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return 0, domain.Validationf("otherUserId is required")
	}

	n, err := uc.msgRepo.MarkRead(ctx, userID, senderID)
	if err != nil {
		return 0, err
	}
	logger.Log.Debug("messages marked read", zap.String("userID", userID), zap.String("senderID", senderID), zap.Int64("count", n))
	return n, nil
}
