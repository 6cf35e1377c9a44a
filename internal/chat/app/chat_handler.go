package app

import (
	"focushub/internal/api/handlers"
	"focushub/internal/chat/domain"
	"focushub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler REST surface of the chat service
type ChatHandler struct {
	history  *MessageHistoryUseCase
	forum    *ForumUseCase
	presence *PresenceTracker
}

// NewChatHandler create ChatHandler
func NewChatHandler(history *MessageHistoryUseCase, forum *ForumUseCase, presence *PresenceTracker) *ChatHandler {
	return &ChatHandler{history: history, forum: forum, presence: presence}
}

// History conversation with another user
// @Summary Direct message history
// @Tags Messages
// @Produce json
// @Param otherUserId path string true "other user id"
// @Success 200 {array} domain.Message
// @Router /messages/history/{otherUserId} [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	msgs, err := h.history.History(c.UserContext(), middlewares.MemberID(c), c.Params("otherUserId"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(msgs)
}

// Unread unread counts grouped by sender
// @Summary Unread direct messages per sender
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.UnreadCount
// @Router /messages/unread [get]
func (h *ChatHandler) Unread(c *fiber.Ctx) error {
	counts, err := h.history.Unread(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(counts)
}

// MarkRead mark messages from another user as read
// @Summary Mark conversation read
// @Tags Messages
// @Produce json
// @Param otherUserId path string true "other user id"
// @Router /messages/read/{otherUserId} [post]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.history.MarkRead(c.UserContext(), middlewares.MemberID(c), c.Params("otherUserId"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"modified": n})
}

// Online current presence snapshot
// @Summary Online users
// @Tags Presence
// @Produce json
// @Router /presence/online [get]
func (h *ChatHandler) Online(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"users": h.presence.OnlineUsers()})
}

// CommunityFeed pinned community post and its comments
// @Summary Community discussion
// @Tags Forum
// @Produce json
// @Success 200 {object} PostThread
// @Router /forum/posts [get]
func (h *ChatHandler) CommunityFeed(c *fiber.Ctx) error {
	thread, err := h.forum.CommunityFeed(c.UserContext())
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(thread)
}

// GetPost one post with comments
// @Summary Post detail
// @Tags Forum
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} PostThread
// @Router /forum/posts/{id} [get]
func (h *ChatHandler) GetPost(c *fiber.Ctx) error {
	thread, err := h.forum.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(thread)
}

// Replies replies of a comment
// @Summary Comment replies
// @Tags Forum
// @Produce json
// @Param commentId path string true "comment id"
// @Router /forum/comments/{commentId}/replies [get]
func (h *ChatHandler) Replies(c *fiber.Ctx) error {
	replies, err := h.forum.Replies(c.UserContext(), c.Params("commentId"))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"replies": replies})
}

// TrendingTags static trending tags
// @Summary Trending tags
// @Tags Forum
// @Router /forum/tags/trending [get]
func (h *ChatHandler) TrendingTags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tags": h.forum.TrendingTags()})
}

// CreatePost create a post
// @Summary Create post
// @Tags Forum
// @Accept json
// @Produce json
// @Param request body domain.CreatePostInput true "post"
// @Success 201 {object} domain.Post
// @Router /forum/posts [post]
func (h *ChatHandler) CreatePost(c *fiber.Ctx) error {
	var in domain.CreatePostInput
	if err := handlers.BindJSON(c, &in); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	post, err := h.forum.CreatePost(c.UserContext(), middlewares.MemberID(c), in)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// MyPosts posts of the caller
// @Summary My posts
// @Tags Forum
// @Produce json
// @Router /forum/my-posts [get]
func (h *ChatHandler) MyPosts(c *fiber.Ctx) error {
	posts, err := h.forum.MyPosts(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return c.JSON(posts)
}

// UpdatePost edit the caller's post
// @Summary Update post
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body domain.UpdatePostInput true "fields to change"
// @Router /forum/posts/{id} [put]
func (h *ChatHandler) UpdatePost(c *fiber.Ctx) error {
	var in domain.UpdatePostInput
	if err := handlers.BindJSON(c, &in); err != nil {
		return handlers.ErrorResponse(c, err)
	}
	post, err := h.forum.UpdatePost(c.UserContext(), middlewares.MemberID(c), c.Params("id"), in)
	if err != nil {
		return handlers.ErrorResponse(c, err)
	}
	return c.JSON(post)
}
