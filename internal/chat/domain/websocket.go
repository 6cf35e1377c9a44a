package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Event websocket event name
type Event string

const (
	// EventInitialOnlineUsers snapshot of online ids pushed to a new connection
	EventInitialOnlineUsers Event = "initialOnlineUsers"
	// EventUserStatusUpdate online/offline transition broadcast
	EventUserStatusUpdate Event = "userStatusUpdate"

	// EventSendPrivateMessage client sends a direct message
	EventSendPrivateMessage Event = "sendPrivateMessage"
	// EventReceivePrivateMessage persisted direct message delivery
	EventReceivePrivateMessage Event = "receivePrivateMessage"
	// EventNewMessageNotification unread badge hint {senderId}
	EventNewMessageNotification Event = "newMessageNotification"

	// EventJoinPost subscribe to a post topic
	EventJoinPost Event = "joinPost"
	// EventLeavePost unsubscribe from a post topic
	EventLeavePost Event = "leavePost"

	// EventAddComment client adds a forum comment
	EventAddComment Event = "addComment"
	// EventNewComment comment pushed to the post topic
	EventNewComment Event = "newComment"
	// EventCommentAdded comment counter refresh {postId, commentCount}
	EventCommentAdded Event = "commentAdded"
	// EventDeleteComment client deletes its own comment
	EventDeleteComment Event = "deleteComment"
	// EventCommentDeleted comment removal pushed to the post topic
	EventCommentDeleted Event = "commentDeleted"

	// EventVote generic vote {targetType, targetId, direction}
	EventVote Event = "vote"
	// EventUpvotePost vote alias
	EventUpvotePost Event = "upvotePost"
	// EventDownvotePost vote alias
	EventDownvotePost Event = "downvotePost"
	// EventUpvoteComment vote alias
	EventUpvoteComment Event = "upvoteComment"
	// EventDownvoteComment vote alias
	EventDownvoteComment Event = "downvoteComment"
	// EventPostVoteUpdate post vote aggregates
	EventPostVoteUpdate Event = "postVoteUpdate"
	// EventCommentVoteUpdate comment vote aggregates
	EventCommentVoteUpdate Event = "commentVoteUpdate"

	// EventNewPost post created over REST
	EventNewPost Event = "newPost"
	// EventPostUpdated post edited over REST
	EventPostUpdated Event = "postUpdated"

	// EventError unsolicited failure push
	EventError Event = "error"
)

// WSRequest client frame, AckID present means exactly one reply with the same AckID
type WSRequest struct {
	Event string          `json:"event"`
	AckID string          `json:"ack_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSResponse server frame, either an ack or a push
type WSResponse struct {
	Event   string      `json:"event"`
	AckID   string      `json:"ack_id,omitempty"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Push builds a successful server push
func Push(event Event, payload interface{}) WSResponse {
	return WSResponse{Event: string(event), Success: true, Payload: payload}
}

// PresenceStatus online or offline
type PresenceStatus string

const (
	// StatusOnline user has at least one live connection
	StatusOnline PresenceStatus = "online"
	// StatusOffline user has no live connection
	StatusOffline PresenceStatus = "offline"
)

// PresenceTransition payload of userStatusUpdate, also relayed over redis
type PresenceTransition struct {
	UserID string         `json:"userId"`
	Status PresenceStatus `json:"status"`
	At     time.Time      `json:"at"`
}

// ClientEvent decoded inbound event, the set of implementations is closed
type ClientEvent interface {
	Name() Event
	clientEvent()
}

// SendPrivateMessage {recipientId, text}
type SendPrivateMessage struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}

// JoinPost postId or {postId}
type JoinPost struct {
	PostID string
}

// LeavePost postId or {postId}
type LeavePost struct {
	PostID string
}

// AddComment {postId, content, parentCommentId?}
type AddComment struct {
	PostID          string `json:"postId"`
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// CastVote from vote or one of its aliases
type CastVote struct {
	Alias      Event         `json:"-"`
	TargetType VoteTarget    `json:"targetType"`
	TargetID   string        `json:"targetId"`
	Direction  VoteDirection `json:"direction"`
}

// DeleteComment commentId or {commentId}
type DeleteComment struct {
	CommentID string
}

// Name event name
func (SendPrivateMessage) Name() Event { return EventSendPrivateMessage }

// Name event name
func (JoinPost) Name() Event { return EventJoinPost }

// Name event name
func (LeavePost) Name() Event { return EventLeavePost }

// Name event name
func (AddComment) Name() Event { return EventAddComment }

// Name event name, the alias the client used if any
func (v CastVote) Name() Event {
	if v.Alias != "" {
		return v.Alias
	}
	return EventVote
}

// Name event name
func (DeleteComment) Name() Event { return EventDeleteComment }

func (SendPrivateMessage) clientEvent() {}
func (JoinPost) clientEvent()           {}
func (LeavePost) clientEvent()          {}
func (AddComment) clientEvent()         {}
func (CastVote) clientEvent()           {}
func (DeleteComment) clientEvent()      {}

var voteAliases = map[Event]struct {
	target VoteTarget
	dir    VoteDirection
	key    string
}{
	EventUpvotePost:      {VoteTargetPost, VoteUp, "postId"},
	EventDownvotePost:    {VoteTargetPost, VoteDown, "postId"},
	EventUpvoteComment:   {VoteTargetComment, VoteUp, "commentId"},
	EventDownvoteComment: {VoteTargetComment, VoteDown, "commentId"},
}

// DecodeClientEvent turns a raw frame into a typed event
func DecodeClientEvent(req WSRequest) (ClientEvent, error) {
	name := Event(req.Event)

	switch name {
	case EventSendPrivateMessage:
		var e SendPrivateMessage
		if err := decodeObject(req.Data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case EventJoinPost, EventLeavePost:
		id, err := decodeID(req.Data, "postId")
		if err != nil {
			return nil, err
		}
		if name == EventJoinPost {
			return JoinPost{PostID: id}, nil
		}
		return LeavePost{PostID: id}, nil

	case EventAddComment:
		var e AddComment
		if err := decodeObject(req.Data, &e); err != nil {
			return nil, err
		}
		return e, nil

	case EventVote:
		var e CastVote
		if err := decodeObject(req.Data, &e); err != nil {
			return nil, err
		}
		if e.TargetType != VoteTargetPost && e.TargetType != VoteTargetComment {
			return nil, Validationf("targetType must be post or comment")
		}
		if e.Direction != VoteUp && e.Direction != VoteDown {
			return nil, Validationf("direction must be up or down")
		}
		if strings.TrimSpace(e.TargetID) == "" {
			return nil, Validationf("targetId is required")
		}
		return e, nil

	case EventUpvotePost, EventDownvotePost, EventUpvoteComment, EventDownvoteComment:
		alias := voteAliases[name]
		id, err := decodeID(req.Data, alias.key)
		if err != nil {
			return nil, err
		}
		return CastVote{Alias: name, TargetType: alias.target, TargetID: id, Direction: alias.dir}, nil

	case EventDeleteComment:
		id, err := decodeID(req.Data, "commentId")
		if err != nil {
			return nil, err
		}
		return DeleteComment{CommentID: id}, nil
	}

	return nil, ErrUnknownEvent
}

func decodeObject(data json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return Validationf("data is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return Validationf("malformed data: %v", err)
	}
	return nil
}

// decodeID accepts "id" or {"<key>": "id"} or {"id": "id"}
func decodeID(data json.RawMessage, key string) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", Validationf("%s is required", key)
	}

	var id string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", Validationf("malformed %s: %v", key, err)
		}
	} else {
		var obj map[string]interface{}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", Validationf("malformed data: %v", err)
		}
		if v, ok := obj[key].(string); ok {
			id = v
		} else if v, ok := obj["id"].(string); ok {
			id = v
		}
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", Validationf("%s is required", key)
	}
	return id, nil
}
