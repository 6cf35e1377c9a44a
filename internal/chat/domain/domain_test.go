package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDIsSymmetric(t *testing.T) {
	pairs := [][2]string{{"alice", "bob"}, {"64f0a", "64e9b"}, {"x", "x"}, {"", "z"}}
	for _, p := range pairs {
		assert.Equal(t, ConversationID(p[0], p[1]), ConversationID(p[1], p[0]))
	}
	assert.Equal(t, "alice-bob", ConversationID("bob", "alice"))
}

func TestCleanText(t *testing.T) {
	got, err := CleanText("text", "  hello ", MaxMessageLength)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = CleanText("text", "   ", MaxMessageLength)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CleanText("text", strings.Repeat("é", MaxMessageLength+1), MaxMessageLength)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CleanText("text", strings.Repeat("é", MaxMessageLength), MaxMessageLength)
	assert.NoError(t, err)
}

func TestVoteDirectionFields(t *testing.T) {
	same, opposite := VoteUp.Fields()
	assert.Equal(t, "upvotes", same)
	assert.Equal(t, "downvotes", opposite)

	same, opposite = VoteDown.Fields()
	assert.Equal(t, "downvotes", same)
	assert.Equal(t, "upvotes", opposite)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("insert message", cause)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, NewPersistenceError("x", nil))
	assert.False(t, IsPersistence(NewPersistenceError("x", ErrNotFound)))
}

func frame(event, data string) WSRequest {
	return WSRequest{Event: event, Data: json.RawMessage(data)}
}

func TestDecodeClientEvent(t *testing.T) {
	cases := []struct {
		name string
		req  WSRequest
		want ClientEvent
	}{
		{"dm", frame("sendPrivateMessage", `{"recipientId":"b","text":"hi"}`), SendPrivateMessage{RecipientID: "b", Text: "hi"}},
		{"join bare", frame("joinPost", `"p1"`), JoinPost{PostID: "p1"}},
		{"join object", frame("joinPost", `{"postId":"p1"}`), JoinPost{PostID: "p1"}},
		{"leave", frame("leavePost", `"p1"`), LeavePost{PostID: "p1"}},
		{"comment", frame("addComment", `{"postId":"p1","content":"c"}`), AddComment{PostID: "p1", Content: "c"}},
		{"vote", frame("vote", `{"targetType":"comment","targetId":"c1","direction":"down"}`),
			CastVote{TargetType: VoteTargetComment, TargetID: "c1", Direction: VoteDown}},
		{"upvote post alias", frame("upvotePost", `"p1"`),
			CastVote{Alias: EventUpvotePost, TargetType: VoteTargetPost, TargetID: "p1", Direction: VoteUp}},
		{"downvote comment alias", frame("downvoteComment", `{"commentId":"c1"}`),
			CastVote{Alias: EventDownvoteComment, TargetType: VoteTargetComment, TargetID: "c1", Direction: VoteDown}},
		{"delete", frame("deleteComment", `{"id":"c1"}`), DeleteComment{CommentID: "c1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeClientEvent(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, Event(tc.req.Event), got.Name())
		})
	}
}

func TestDecodeClientEventFailures(t *testing.T) {
	cases := map[string]WSRequest{
		"unknown":        frame("typing", `{}`),
		"no data":        {Event: "sendPrivateMessage"},
		"bad json":       frame("addComment", `{"postId":`),
		"empty id":       frame("joinPost", `""`),
		"bad direction":  frame("vote", `{"targetType":"post","targetId":"p","direction":"sideways"}`),
		"bad targetType": frame("vote", `{"targetType":"user","targetId":"p","direction":"up"}`),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClientEvent(req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := DecodeClientEvent(frame("typing", `{}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
