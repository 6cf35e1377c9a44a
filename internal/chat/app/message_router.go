package app

import (
	"context"
	"strings"
	"time"

	"focushub/internal/chat/domain"
	"focushub/internal/chat/repository"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPersistTimeout = 5 * time.Second

// MessageRouter validates, persists and fans out chat events.
// Nothing is pushed to any connection before the write succeeded.
type MessageRouter struct {
	messages repository.MessageRepository
	posts    repository.PostRepository
	comments repository.CommentRepository

	presence *PresenceTracker
	topics   *Topics

	activity       repository.ActivityPublisher
	metrics        *metrics.Metrics
	persistTimeout time.Duration

	now   func() time.Time
	newID func() string
}

// RouterOption configures a MessageRouter
type RouterOption func(*MessageRouter)

// WithActivityPublisher stream activity events after fan-out
func WithActivityPublisher(p repository.ActivityPublisher) RouterOption {
	return func(r *MessageRouter) { r.activity = p }
}

// WithRouterMetrics count persistence failures
func WithRouterMetrics(m *metrics.Metrics) RouterOption {
	return func(r *MessageRouter) { r.metrics = m }
}

// WithPersistTimeout bound every storage call
func WithPersistTimeout(d time.Duration) RouterOption {
	return func(r *MessageRouter) {
		if d > 0 {
			r.persistTimeout = d
		}
	}
}

// NewMessageRouter create a MessageRouter
func NewMessageRouter(
	messages repository.MessageRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	presence *PresenceTracker,
	topics *Topics,
	opts ...RouterOption,
) *MessageRouter {
	r := &MessageRouter{
		messages:       messages,
		posts:          posts,
		comments:       comments,
		presence:       presence,
		topics:         topics,
		activity:       repository.NopActivityPublisher{},
		persistTimeout: defaultPersistTimeout,
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// persistCtx detaches from the caller's cancellation so a closing connection
// does not abort an in-flight write, but still bounds it
func (r *MessageRouter) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.persistTimeout)
}

func (r *MessageRouter) persistFailed(op string, err error) error {
	perr := domain.NewPersistenceError(op, err)
	if domain.IsPersistence(perr) {
		logger.Log.Error("persistence failure", zap.String("op", op), zap.Error(err))
		if r.metrics != nil {
			r.metrics.PersistFailures.WithLabelValues(op).Inc()
		}
	}
	return perr
}

func (r *MessageRouter) publishActivity(ctx context.Context, ev domain.ActivityEvent) {
	ev.At = r.now().UTC()
	pctx, cancel := r.persistCtx(ctx)
	defer cancel()
	if err := r.activity.Publish(pctx, ev); err != nil {
		logger.Log.Warn("activity publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

// SendDirectMessage persists text from sender to recipientID, then pushes it to
// every recipient connection and every other connection of the sender, plus a
// newMessageNotification to the recipient.
func (r *MessageRouter) SendDirectMessage(ctx context.Context, sender Connection, recipientID, text string) (*domain.Message, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, domain.Validationf("recipientId is required")
	}
	text, err := domain.CleanText("text", text, domain.MaxMessageLength)
	if err != nil {
		return nil, err
	}

	senderID := sender.UserID()
	msg := &domain.Message{
		ID:             r.newID(),
		ConversationID: domain.ConversationID(senderID, recipientID),
		Sender:         senderID,
		Recipient:      recipientID,
		Text:           text,
		CreatedAt:      r.now().UTC(),
	}

	pctx, cancel := r.persistCtx(ctx)
	err = r.messages.Insert(pctx, msg)
	cancel()
	if err != nil {
		return nil, r.persistFailed("insert message", err)
	}

	delivered := map[string]struct{}{sender.ID(): {}}
	deliver := func(c Connection, resp domain.WSResponse) {
		if _, ok := delivered[c.ID()]; ok {
			return
		}
		delivered[c.ID()] = struct{}{}
		_ = c.Send(resp)
	}

	push := domain.Push(domain.EventReceivePrivateMessage, msg)
	notify := domain.Push(domain.EventNewMessageNotification, map[string]string{"senderId": senderID})
	for _, c := range r.presence.ConnectionsFor(recipientID) {
		deliver(c, push)
		if c.ID() != sender.ID() {
			_ = c.Send(notify)
		}
	}
	for _, c := range r.presence.ConnectionsFor(senderID) {
		deliver(c, push)
	}

	r.publishActivity(ctx, domain.ActivityEvent{
		Type:           domain.ActivityMessageSent,
		ActorID:        senderID,
		TargetID:       recipientID,
		ConversationID: msg.ConversationID,
	})
	return msg, nil
}

// AddComment persists a comment on postID, bumps the post's comment counter,
// pushes newComment to the post topic and commentAdded to everyone.
func (r *MessageRouter) AddComment(ctx context.Context, authorID, postID, content, parentCommentID string) (*domain.Comment, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, domain.Validationf("postId is required")
	}
	content, err := domain.CleanText("content", content, domain.MaxCommentLength)
	if err != nil {
		return nil, err
	}

	pctx, cancel := r.persistCtx(ctx)
	defer cancel()

	post, err := r.posts.FindByID(pctx, postID)
	if err != nil {
		return nil, r.persistFailed("find post", err)
	}

	comment := &domain.Comment{
		ID:        r.newID(),
		Post:      post.ID,
		User:      authorID,
		Content:   content,
		Upvotes:   []string{},
		Downvotes: []string{},
		CreatedAt: r.now().UTC(),
	}

	if parentCommentID = strings.TrimSpace(parentCommentID); parentCommentID != "" {
		parent, err := r.comments.FindByID(pctx, parentCommentID)
		if err != nil {
			return nil, r.persistFailed("find parent comment", err)
		}
		if parent.Post != post.ID {
			return nil, domain.Validationf("parent comment belongs to another post")
		}
		comment.ParentComment = &parent.ID
	}

	if err := r.comments.Create(pctx, comment); err != nil {
		return nil, r.persistFailed("insert comment", err)
	}

	count, err := r.posts.IncCommentCount(pctx, post.ID, 1)
	if err != nil {
		// the comment is stored; only the cached counter is stale
		logger.Log.Warn("comment counter update failed", zap.String("postID", post.ID), zap.Error(err))
		count = post.CommentCount + 1
	}

	r.topics.Publish(domain.PostTopic(post.ID), domain.Push(domain.EventNewComment, comment))
	r.presence.Broadcast(domain.Push(domain.EventCommentAdded, map[string]interface{}{
		"postId":       post.ID,
		"commentCount": count,
	}))

	r.publishActivity(ctx, domain.ActivityEvent{
		Type:     domain.ActivityCommentAdded,
		ActorID:  authorID,
		TargetID: comment.ID,
		PostID:   post.ID,
	})
	return comment, nil
}

// Vote toggles voterID's vote on a post or comment and pushes the new counts
// to the parent post's topic.
func (r *MessageRouter) Vote(ctx context.Context, voterID string, target domain.VoteTarget, targetID string, dir domain.VoteDirection) (*domain.VoteUpdate, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, domain.Validationf("targetId is required")
	}
	if dir != domain.VoteUp && dir != domain.VoteDown {
		return nil, domain.Validationf("direction must be up or down")
	}

	pctx, cancel := r.persistCtx(ctx)
	defer cancel()

	update := &domain.VoteUpdate{TargetType: target, TargetID: targetID}
	var event domain.Event

	switch target {
	case domain.VoteTargetPost:
		post, err := r.posts.ToggleVote(pctx, targetID, voterID, dir)
		if err != nil {
			return nil, r.persistFailed("update post votes", err)
		}
		update.PostID = post.ID
		update.Upvotes, update.Downvotes = len(post.Upvotes), len(post.Downvotes)
		event = domain.EventPostVoteUpdate

	case domain.VoteTargetComment:
		comment, err := r.comments.ToggleVote(pctx, targetID, voterID, dir)
		if err != nil {
			return nil, r.persistFailed("update comment votes", err)
		}
		update.PostID = comment.Post
		update.CommentID = comment.ID
		update.Upvotes, update.Downvotes = len(comment.Upvotes), len(comment.Downvotes)
		event = domain.EventCommentVoteUpdate

	default:
		return nil, domain.Validationf("targetType must be post or comment")
	}

	r.topics.Publish(domain.PostTopic(update.PostID), domain.Push(event, update))

	r.publishActivity(ctx, domain.ActivityEvent{
		Type:     domain.ActivityVoteCast,
		ActorID:  voterID,
		TargetID: targetID,
		PostID:   update.PostID,
	})
	return update, nil
}

// DeleteComment removes actorID's own comment with every reply below it and pushes
// commentDeleted to the post topic. The post's comment count drops by the number removed.
func (r *MessageRouter) DeleteComment(ctx context.Context, actorID, commentID string) (*domain.Comment, error) {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return nil, domain.Validationf("commentId is required")
	}

	pctx, cancel := r.persistCtx(ctx)
	defer cancel()

	comment, err := r.comments.FindByID(pctx, commentID)
	if err != nil {
		return nil, r.persistFailed("find comment", err)
	}
	if comment.User != actorID {
		return nil, domain.ErrForbidden
	}

	ids, deleted, err := r.comments.DeleteThread(pctx, comment.ID)
	if err != nil {
		return nil, r.persistFailed("delete comment", err)
	}

	count, err := r.posts.IncCommentCount(pctx, comment.Post, -deleted)
	if err != nil {
		logger.Log.Warn("comment counter update failed", zap.String("postID", comment.Post), zap.Error(err))
	}

	r.topics.Publish(domain.PostTopic(comment.Post), domain.Push(domain.EventCommentDeleted, map[string]interface{}{
		"commentId":  comment.ID,
		"postId":     comment.Post,
		"commentIds": ids,
	}))
	if err == nil {
		r.presence.Broadcast(domain.Push(domain.EventCommentAdded, map[string]interface{}{
			"postId":       comment.Post,
			"commentCount": count,
		}))
	}

	r.publishActivity(ctx, domain.ActivityEvent{
		Type:     domain.ActivityCommentDeleted,
		ActorID:  actorID,
		TargetID: comment.ID,
		PostID:   comment.Post,
	})
	return comment, nil
}
