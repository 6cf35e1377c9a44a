package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxMessageLength direct message text limit in characters
	MaxMessageLength = 2000
	// HistoryLimit messages returned by a history fetch
	HistoryLimit = 50
)

// Message one persisted direct message
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	Sender         string    `bson:"sender" json:"sender"`
	Recipient      string    `bson:"recipient" json:"recipient"`
	Text           string    `bson:"text" json:"text"`
	IsRead         bool      `bson:"is_read" json:"isRead"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// UnreadCount unread direct messages from one sender
type UnreadCount struct {
	SenderID string    `bson:"_id" json:"senderId"`
	Count    int       `bson:"count" json:"count"`
	LastAt   time.Time `bson:"last_at" json:"lastAt"`
}

// ConversationID sorted ids joined by "-", same for (a,b) and (b,a)
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}

// CleanText trims text and checks it is non-empty and at most max characters
func CleanText(field, text string, max int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Validationf("%s is required", field)
	}
	if utf8.RuneCountInString(text) > max {
		return "", Validationf("%s exceeds %d characters", field, max)
	}
	return text, nil
}
