package domain

import "time"

// ActivityType kind of realtime activity streamed to analytics
type ActivityType string

const (
	// ActivityMessageSent direct message persisted
	ActivityMessageSent ActivityType = "message_sent"
	// ActivityCommentAdded comment persisted
	ActivityCommentAdded ActivityType = "comment_added"
	// ActivityCommentDeleted comment removed
	ActivityCommentDeleted ActivityType = "comment_deleted"
	// ActivityVoteCast vote toggled
	ActivityVoteCast ActivityType = "vote_cast"
)

// ActivityEvent one record on the activity topic
type ActivityEvent struct {
	Type     ActivityType `json:"type"`
	ActorID  string       `json:"actorId"`
	TargetID string       `json:"targetId"`
	// ConversationID for messages, PostID for forum activity
	ConversationID string    `json:"conversationId,omitempty"`
	PostID         string    `json:"postId,omitempty"`
	At             time.Time `json:"at"`
}
