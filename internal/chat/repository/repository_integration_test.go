//go:build integration

package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/database"
	"focushub/pkg/logger"
	testtool "focushub/pkg/test_tool"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	testDB    *mongo.Database
	redisAddr string
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()

	mongoContainer, uri, err := testtool.StartMongo(ctx)
	if err != nil {
		log.Fatalf("Failed to start MongoDB container: %v", err)
	}

	redisContainer, addr, err := testtool.StartRedis(ctx)
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}
	redisAddr = addr

	mdb, err := database.NewMongoDB(ctx, database.Connection{ConnectStr: uri, RetryCount: 5, RetryInterval: time.Second}, "focushub_test")
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	testDB = mdb.Database

	for _, ensure := range []func(context.Context, *mongo.Database) error{EnsureMessageIndexes, EnsurePostIndexes, EnsureCommentIndexes} {
		if err := ensure(ctx, testDB); err != nil {
			log.Fatalf("ensure indexes: %v", err)
		}
	}

	code := m.Run()

	_ = mdb.Close(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	os.Exit(code)
}

func TestMessageRepositoryHistoryAndUnread(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoMessageRepository(testDB)
	conv := domain.ConversationID("ann", "ben")
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	for i, text := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Insert(ctx, &domain.Message{
			ID:             "hist-" + text,
			ConversationID: conv,
			Sender:         "ann",
			Recipient:      "ben",
			Text:           text,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	last2, err := repo.History(ctx, conv, 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, "two", last2[0].Text)
	assert.Equal(t, "three", last2[1].Text)

	unread, err := repo.UnreadBySender(ctx, "ben")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "ann", unread[0].SenderID)
	assert.Equal(t, 3, unread[0].Count)

	n, err := repo.MarkRead(ctx, "ben", "ann")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	unread, err = repo.UnreadBySender(ctx, "ben")
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestPostRepositoryPinnedAndCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoPostRepository(testDB)
	now := time.Now().UTC().Truncate(time.Millisecond)

	first, err := repo.EnsurePinned(ctx, domain.NewCommunityPost("pinned-1", now))
	require.NoError(t, err)
	second, err := repo.EnsurePinned(ctx, domain.NewCommunityPost("pinned-2", now))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := repo.IncCommentCount(ctx, first.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = repo.IncCommentCount(ctx, first.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	voted, err := repo.ToggleVote(ctx, first.ID, "ann", domain.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, voted.Upvotes)
	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, got.Upvotes)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.IncCommentCount(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.ToggleVote(ctx, "missing", "ann", domain.VoteUp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepositoryToggleVote(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoPostRepository(testDB)
	post := &domain.Post{ID: "vote-post", User: "ann", Title: "votes", Upvotes: []string{"a"}, Downvotes: []string{"b"}, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, post))

	// upvote twice returns to no vote
	got, err := repo.ToggleVote(ctx, post.ID, "v", domain.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "v"}, got.Upvotes)
	got, err = repo.ToggleVote(ctx, post.ID, "v", domain.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Upvotes)

	// switching sides moves the voter, other voters stay
	_, err = repo.ToggleVote(ctx, post.ID, "v", domain.VoteUp)
	require.NoError(t, err)
	got, err = repo.ToggleVote(ctx, post.ID, "v", domain.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Upvotes)
	assert.Equal(t, []string{"b", "v"}, got.Downvotes)

	// voter ids are values, never field paths
	got, err = repo.ToggleVote(ctx, post.ID, "$downvotes", domain.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "$downvotes"}, got.Upvotes)
	assert.Equal(t, []string{"b", "v"}, got.Downvotes)
}

func TestPostRepositoryToggleVoteConcurrentVoters(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoPostRepository(testDB)
	// no vote arrays stored, the first toggle creates them
	post := &domain.Post{ID: "busy-post", User: "ann", Title: "busy", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, post))

	const voters = 25
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.ToggleVote(ctx, post.ID, fmt.Sprintf("voter-%d", i), domain.VoteUp)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Upvotes, voters)
}

func TestCommentRepositoryThreads(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoCommentRepository(testDB)
	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	parent := "top-1"

	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "top-1", Post: "thread-post", User: "ann", Content: "first", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "top-2", Post: "thread-post", User: "ben", Content: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "reply-1", Post: "thread-post", User: "ben", Content: "reply", ParentComment: &parent, CreatedAt: base.Add(2 * time.Minute)}))

	top, err := repo.ListTopLevel(ctx, "thread-post")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "top-1", top[0].ID)

	replies, err := repo.ListReplies(ctx, parent)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply-1", replies[0].ID)

	voted, err := repo.ToggleVote(ctx, "reply-1", "ann", domain.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, voted.Downvotes)
	assert.Equal(t, "thread-post", voted.Post)

	ids, deleted, err := repo.DeleteThread(ctx, "reply-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reply-1"}, ids)
	assert.Equal(t, 1, deleted)
	_, err = repo.FindByID(ctx, "reply-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommentRepositoryDeleteThreadCascades(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoCommentRepository(testDB)
	base := time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC)
	ptr := func(s string) *string { return &s }

	for i, c := range []*domain.Comment{
		{ID: "root", Post: "cascade-post", User: "ann", Content: "root"},
		{ID: "child-1", Post: "cascade-post", User: "ben", Content: "child", ParentComment: ptr("root")},
		{ID: "child-2", Post: "cascade-post", User: "cat", Content: "child", ParentComment: ptr("root")},
		{ID: "grandchild", Post: "cascade-post", User: "ann", Content: "deeper", ParentComment: ptr("child-1")},
		{ID: "sibling", Post: "cascade-post", User: "ben", Content: "untouched"},
	} {
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, c))
	}

	ids, deleted, err := repo.DeleteThread(ctx, "root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root", "child-1", "child-2", "grandchild"}, ids)
	assert.Equal(t, 4, deleted)

	for _, id := range ids {
		_, err := repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
	_, err = repo.FindByID(ctx, "sibling")
	assert.NoError(t, err)

	_, _, err = repo.DeleteThread(ctx, "root")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisPresenceRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()

	pubsub := database.NewRedisPubSub(client)
	received := make(chan []byte, 1)
	require.NoError(t, pubsub.Subscribe(ctx, "presence:test", func(payload []byte) {
		received <- payload
	}))

	relay := NewRedisPresenceRelay(pubsub, "presence:test")
	require.NoError(t, relay.PublishTransition(domain.PresenceTransition{UserID: "ann", Status: domain.StatusOnline}))

	select {
	case payload := <-received:
		assert.Contains(t, string(payload), `"userId":"ann"`)
		assert.Contains(t, string(payload), `"status":"online"`)
	case <-time.After(5 * time.Second):
		t.Fatal("transition not relayed")
	}
}
