package app

import (
	"context"
	"strings"
	"time"

	"focushub/internal/chat/domain"
	"focushub/internal/chat/repository"
	"focushub/pkg"
	"focushub/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostThread post with its top level comments
type PostThread struct {
	Post     *domain.Post         `json:"post"`
	Comments []domain.CommentView `json:"comments"`
}

// ForumUseCase REST side of the forum, realtime updates go out through presence
type ForumUseCase struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	presence *PresenceTracker
	now      func() time.Time
}

// NewForumUseCase create ForumUseCase
func NewForumUseCase(posts repository.PostRepository, comments repository.CommentRepository, presence *PresenceTracker) *ForumUseCase {
	return &ForumUseCase{
		posts:    posts,
		comments: comments,
		presence: presence,
		now:      time.Now,
	}
}

// CommunityFeed the pinned discussion post, created on first access, with its comments
func (uc *ForumUseCase) CommunityFeed(ctx context.Context) (*PostThread, error) {
	post, err := uc.posts.EnsurePinned(ctx, domain.NewCommunityPost(uuid.New().String(), uc.now().UTC()))
	if err != nil {
		return nil, err
	}
	return uc.thread(ctx, post)
}

// GetPost one post with its top level comments
func (uc *ForumUseCase) GetPost(ctx context.Context, id string) (*PostThread, error) {
	id, err := trimID(id)
	if err != nil {
		return nil, err
	}
	post, err := uc.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.thread(ctx, post)
}

func (uc *ForumUseCase) thread(ctx context.Context, post *domain.Post) (*PostThread, error) {
	comments, err := uc.comments.ListTopLevel(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostThread{Post: post, Comments: domain.NewCommentViews(comments)}, nil
}

// Replies direct replies of a comment
func (uc *ForumUseCase) Replies(ctx context.Context, commentID string) ([]domain.CommentView, error) {
	commentID, err := trimID(commentID)
	if err != nil {
		return nil, err
	}
	replies, err := uc.comments.ListReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return domain.NewCommentViews(replies), nil
}

// TrendingTags static list
func (uc *ForumUseCase) TrendingTags() []string {
	return append([]string(nil), domain.TrendingTags...)
}

// CreatePost stores a post by userID and broadcasts newPost
func (uc *ForumUseCase) CreatePost(ctx context.Context, userID string, in domain.CreatePostInput) (*domain.Post, error) {
	title, err := domain.CleanText("title", in.Title, domain.MaxPostTitleLength)
	if err != nil {
		return nil, err
	}
	content, err := domain.CleanText("content", in.Content, domain.MaxPostContentLength)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	post := &domain.Post{
		ID:        uuid.New().String(),
		User:      userID,
		Title:     title,
		Content:   content,
		Tags:      pkg.NormalizeTags(in.Tags),
		Upvotes:   []string{},
		Downvotes: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	uc.presence.Broadcast(domain.Push(domain.EventNewPost, post))
	logger.Log.Info("post created", zap.String("postID", post.ID), zap.String("userID", userID))
	return post, nil
}

// MyPosts posts by userID, newest first
func (uc *ForumUseCase) MyPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	return uc.posts.FindByUser(ctx, userID)
}

// UpdatePost edits title, content or tags of the caller's own post and broadcasts postUpdated
func (uc *ForumUseCase) UpdatePost(ctx context.Context, userID, postID string, in domain.UpdatePostInput) (*domain.Post, error) {
	postID, err := trimID(postID)
	if err != nil {
		return nil, err
	}
	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.User != userID {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		if post.Title, err = domain.CleanText("title", *in.Title, domain.MaxPostTitleLength); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		if post.Content, err = domain.CleanText("content", *in.Content, domain.MaxPostContentLength); err != nil {
			return nil, err
		}
	}
	if in.Tags != nil {
		post.Tags = pkg.NormalizeTags(in.Tags)
	}
	post.IsEdited = true
	post.UpdatedAt = uc.now().UTC()

	if err := uc.posts.UpdateContent(ctx, post); err != nil {
		return nil, err
	}

	uc.presence.Broadcast(domain.Push(domain.EventPostUpdated, post))
	return post, nil
}

func trimID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.Validationf("id is required")
	}
	return id, nil
}
