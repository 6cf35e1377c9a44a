package repository

import (
	"context"
	"fmt"

	"focushub/internal/chat/domain"
	"focushub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository direct message storage
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// History newest limit messages of a conversation, oldest first
	History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
	UnreadBySender(ctx context.Context, recipientID string) ([]domain.UnreadCount, error)
	MarkRead(ctx context.Context, recipientID, senderID string) (int64, error)
}

type mongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository on the messages collection
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{
		coll: db.Collection("messages"),
	}
}

// EnsureMessageIndexes history and unread lookups
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	return database.EnsureIndexes(ctx, db, "messages",
		mongo.IndexModel{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "is_read", Value: 1}}},
	)
}

func (r *mongoMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *mongoMessageRepository) History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}

	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *mongoMessageRepository) UnreadBySender(ctx context.Context, recipientID string) ([]domain.UnreadCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "recipient", Value: recipientID},
			{Key: "is_read", Value: false},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sender"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_at", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_at", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	results := []domain.UnreadCount{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}
	return results, nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	filter := bson.M{"recipient": recipientID, "sender": senderID, "is_read": false}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
