package app

import (
	"context"
	"testing"

	"focushub/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newForumFixture() (*ForumUseCase, *MockPostRepository, *MockCommentRepository, *PresenceTracker) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	presence := NewPresenceTracker()
	return NewForumUseCase(posts, comments, presence), posts, comments, presence
}

func TestForumUseCase_CommunityFeed(t *testing.T) {
	uc, posts, comments, _ := newForumFixture()
	ctx := context.Background()

	pinned := &domain.Post{ID: "p1", Title: domain.CommunityPostTitle, IsPinned: true}
	posts.On("EnsurePinned", ctx, mock.MatchedBy(func(p *domain.Post) bool {
		return p.Title == domain.CommunityPostTitle && p.IsPinned && p.User == domain.SystemAuthor
	})).Return(pinned, nil)
	comments.On("ListTopLevel", ctx, "p1").Return([]domain.Comment{
		{ID: "c1", Post: "p1", Upvotes: []string{"a", "b"}, Downvotes: []string{"c"}},
	}, nil)

	thread, err := uc.CommunityFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, pinned, thread.Post)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, 1, thread.Comments[0].VoteScore)
	assert.Equal(t, 2, thread.Comments[0].UpvoteCount)
	assert.Equal(t, 1, thread.Comments[0].DownvoteCount)
}

func TestForumUseCase_CreatePostBroadcasts(t *testing.T) {
	uc, posts, _, presence := newForumFixture()
	ctx := context.Background()
	viewer := newFakeConn("v1", "viewer")
	presence.Register(viewer)

	posts.On("Create", ctx, mock.AnythingOfType("*domain.Post")).Return(nil)

	post, err := uc.CreatePost(ctx, "alice", domain.CreatePostInput{
		Title:   " Study group ",
		Content: "Anyone up for calculus?",
		Tags:    []string{"Math", "math", " Help "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Study group", post.Title)
	assert.Equal(t, []string{"math", "help"}, post.Tags)
	assert.Equal(t, 1, viewer.count(domain.EventNewPost))
}

func TestForumUseCase_UpdatePost(t *testing.T) {
	ctx := context.Background()
	title := "Updated"

	t.Run("author", func(t *testing.T) {
		uc, posts, _, presence := newForumFixture()
		viewer := newFakeConn("v1", "viewer")
		presence.Register(viewer)

		posts.On("FindByID", ctx, "p1").Return(&domain.Post{ID: "p1", User: "alice", Title: "Old", Content: "body"}, nil)
		posts.On("UpdateContent", ctx, mock.MatchedBy(func(p *domain.Post) bool {
			return p.Title == "Updated" && p.Content == "body" && p.IsEdited
		})).Return(nil)

		post, err := uc.UpdatePost(ctx, "alice", "p1", domain.UpdatePostInput{Title: &title})
		require.NoError(t, err)
		assert.True(t, post.IsEdited)
		assert.Equal(t, 1, viewer.count(domain.EventPostUpdated))
		posts.AssertExpectations(t)
	})

	t.Run("not the author", func(t *testing.T) {
		uc, posts, _, _ := newForumFixture()
		posts.On("FindByID", ctx, "p1").Return(&domain.Post{ID: "p1", User: "alice"}, nil)

		_, err := uc.UpdatePost(ctx, "bob", "p1", domain.UpdatePostInput{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		posts.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
	})
}

func TestForumUseCase_Replies(t *testing.T) {
	uc, _, comments, _ := newForumFixture()
	ctx := context.Background()
	comments.On("ListReplies", ctx, "c1").Return([]domain.Comment{{ID: "r1"}, {ID: "r2"}}, nil)

	replies, err := uc.Replies(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, replies, 2)

	_, err = uc.Replies(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
