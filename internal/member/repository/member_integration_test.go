//go:build integration

package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"focushub/internal/member/domain"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	testtool "focushub/pkg/test_tool"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pool        *pgxpool.Pool
	redisClient *redis.Client
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()

	postgresContainer, dsn, err := testtool.StartPostgres(ctx)
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	redisContainer, addr, err := testtool.StartRedis(ctx)
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}

	pool, err = database.NewDatabaseConnection(database.Connection{ConnectStr: dsn, RetryCount: 5, RetryInterval: time.Second})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr})

	code := m.Run()

	pool.Close()
	_ = redisClient.Close()
	_ = postgresContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	os.Exit(code)
}

func newMember(email string) *domain.Member {
	return &domain.Member{
		MemberID: uuid.New().String(),
		Name:     "Integration",
		Email:    email,
		Password: "hash",
		Role:     "student",
	}
}

func TestMemberRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRepository(pool)

	m := newMember("integration@example.com")
	require.NoError(t, repo.CreateUser(ctx, m))
	assert.NotZero(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.CreateUser(ctx, newMember("integration@example.com"))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("find by email and member id", func(t *testing.T) {
		byEmail, err := repo.FindByMember(ctx, &domain.MemberQuery{Email: &m.Email})
		require.NoError(t, err)
		assert.Equal(t, m.MemberID, byEmail.MemberID)

		byID, err := repo.FindByMember(ctx, &domain.MemberQuery{MemberID: &m.MemberID, Email: &m.Email})
		require.NoError(t, err)
		assert.Equal(t, m.ID, byID.ID)
	})

	t.Run("not found", func(t *testing.T) {
		missing := "missing@example.com"
		_, err := repo.FindByMember(ctx, &domain.MemberQuery{Email: &missing})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("status update", func(t *testing.T) {
		require.NoError(t, repo.UpdateMemberStatus(ctx, &domain.Member{MemberID: m.MemberID, Status: domain.MemberStatusOnLine}))
		got, err := repo.FindByMember(ctx, &domain.MemberQuery{MemberID: &m.MemberID})
		require.NoError(t, err)
		assert.Equal(t, domain.MemberStatusOnLine, got.Status)

		err = repo.UpdateMemberStatus(ctx, &domain.Member{MemberID: "nobody", Status: domain.MemberStatusOnLine})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list skips banned members", func(t *testing.T) {
		banned := newMember("banned@example.com")
		require.NoError(t, repo.CreateUser(ctx, banned))
		require.NoError(t, repo.UpdateMemberStatus(ctx, &domain.Member{MemberID: banned.MemberID, Status: domain.MemberStatusBan}))

		list, err := repo.ListMembers(ctx)
		require.NoError(t, err)
		for _, got := range list {
			assert.NotEqual(t, banned.MemberID, got.MemberID)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionRepository(redisClient)

	now := time.Now()
	s := domain.MemberSession{Token: "tk", MemberID: "m-1", CreatedAt: now, LastActivity: now, ExpiredAt: now.Add(time.Minute)}
	require.NoError(t, sessions.Save(ctx, s, time.Minute))

	got, err := sessions.Find(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "tk", got.Token)

	ttl, err := sessions.TTL(ctx, "m-1")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, sessions.Extend(ctx, "m-1", time.Hour))
	ttl, err = sessions.TTL(ctx, "m-1")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)

	require.NoError(t, sessions.Remove(ctx, "m-1"))
	_, err = sessions.Find(ctx, "m-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ttl, err = sessions.TTL(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ttl)

	assert.ErrorIs(t, sessions.Extend(ctx, "m-1", time.Hour), domain.ErrNotFound)
}
