package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository forum post storage
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Post, error)
	// EnsurePinned returns the pinned post with post.Title, inserting post when absent
	EnsurePinned(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdateContent(ctx context.Context, post *domain.Post) error
	// IncCommentCount adds delta and returns the new count
	IncCommentCount(ctx context.Context, id string, delta int) (int, error)
	// ToggleVote applies voter's vote in a single write and returns the post after it
	ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Post, error)
}

type mongoPostRepository struct {
	coll *mongo.Collection
}

// NewMongoPostRepository create a PostRepository on the posts collection
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection("posts")}
}

// EnsurePostIndexes author and recency lookups
func EnsurePostIndexes(ctx context.Context, db *mongo.Database) error {
	return database.EnsureIndexes(ctx, db, "posts",
		mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "title", Value: 1}, {Key: "is_pinned", Value: 1}}},
	)
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return err
}

func (r *mongoPostRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFound("post", id, err)
	}
	return &post, nil
}

func (r *mongoPostRepository) FindByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	posts := []domain.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepository) EnsurePinned(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	filter := bson.M{"title": post.Title, "is_pinned": true}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out domain.Post
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": post}, opts).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mongoPostRepository) UpdateContent(ctx context.Context, post *domain.Post) error {
	update := bson.M{"$set": bson.M{
		"title":      post.Title,
		"content":    post.Content,
		"tags":       post.Tags,
		"is_edited":  post.IsEdited,
		"updated_at": post.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound("post", post.ID, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *mongoPostRepository) IncCommentCount(ctx context.Context, id string, delta int) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"comment_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var post domain.Post
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		return 0, notFound("post", id, err)
	}
	return post.CommentCount, nil
}

func (r *mongoPostRepository) ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Post, error) {
	var post domain.Post
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleVotePipeline(voter, dir), afterUpdate()).Decode(&post); err != nil {
		return nil, notFound("post", id, err)
	}
	return &post, nil
}
