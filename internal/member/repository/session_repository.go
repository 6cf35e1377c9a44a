package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focushub/internal/member/domain"
	"focushub/pkg/database"

	"github.com/go-redis/redis/v8"
)

// SessionKeyPrefix redis key prefix of member sessions
const SessionKeyPrefix = "member:session:"

// SessionRepository one login session per member, kept in redis with a TTL
type SessionRepository interface {
	Save(ctx context.Context, session domain.MemberSession, ttl time.Duration) error
	Find(ctx context.Context, memberID string) (*domain.MemberSession, error)
	Remove(ctx context.Context, memberID string) error
	TTL(ctx context.Context, memberID string) (time.Duration, error)
	Extend(ctx context.Context, memberID string, ttl time.Duration) error
}

type sessionRepository struct {
	redis database.RedisRepository[domain.MemberSession]
}

// NewSessionRepository sessions under SessionKeyPrefix
func NewSessionRepository(client redis.UniversalClient) SessionRepository {
	return &sessionRepository{redis: database.NewRedisRepository[domain.MemberSession](client, SessionKeyPrefix)}
}

func (s *sessionRepository) Save(ctx context.Context, session domain.MemberSession, ttl time.Duration) error {
	return s.redis.Set(ctx, session.MemberID, session, ttl)
}

func (s *sessionRepository) Find(ctx context.Context, memberID string) (*domain.MemberSession, error) {
	session, err := s.redis.Get(ctx, memberID)
	if errors.Is(err, database.ErrRedisNil) {
		return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sessionRepository) Remove(ctx context.Context, memberID string) error {
	return s.redis.Del(ctx, memberID)
}

func (s *sessionRepository) TTL(ctx context.Context, memberID string) (time.Duration, error) {
	return s.redis.TTL(ctx, memberID)
}

func (s *sessionRepository) Extend(ctx context.Context, memberID string, ttl time.Duration) error {
	err := s.redis.Extend(ctx, memberID, ttl)
	if errors.Is(err, database.ErrRedisNil) {
		return fmt.Errorf("%w: session", domain.ErrNotFound)
	}
	return err
}
