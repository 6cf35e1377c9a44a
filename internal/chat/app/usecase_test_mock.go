package app

import (
	"context"

	"focushub/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// History mock conversation history
func (m *MockMessageRepository) History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// UnreadBySender mock unread aggregation
func (m *MockMessageRepository) UnreadBySender(ctx context.Context, recipientID string) ([]domain.UnreadCount, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UnreadCount), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead mock mark read
func (m *MockMessageRepository) MarkRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	args := m.Called(ctx, recipientID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPostRepository Mock PostRepository
type MockPostRepository struct {
	mock.Mock
}

// Create mock create post
func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// FindByID mock find post
func (m *MockPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUser mock posts by user
func (m *MockPostRepository) FindByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// EnsurePinned mock pinned post
func (m *MockPostRepository) EnsurePinned(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateContent mock update post
func (m *MockPostRepository) UpdateContent(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// IncCommentCount mock counter
func (m *MockPostRepository) IncCommentCount(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

// ToggleVote mock atomic vote
func (m *MockPostRepository) ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Post, error) {
	args := m.Called(ctx, id, voter, dir)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCommentRepository Mock CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

// Create mock create comment
func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

// FindByID mock find comment
func (m *MockCommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListTopLevel mock top level comments
func (m *MockCommentRepository) ListTopLevel(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListReplies mock replies
func (m *MockCommentRepository) ListReplies(ctx context.Context, commentID string) ([]domain.Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// ToggleVote mock atomic vote
func (m *MockCommentRepository) ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Comment, error) {
	args := m.Called(ctx, id, voter, dir)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteThread mock cascading delete
func (m *MockCommentRepository) DeleteThread(ctx context.Context, id string) ([]string, int, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

// MockActivityPublisher Mock ActivityPublisher
type MockActivityPublisher struct {
	mock.Mock
}

// Publish mock publish
func (m *MockActivityPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Close mock close
func (m *MockActivityPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
