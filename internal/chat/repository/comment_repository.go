package repository

import (
	"context"

	"focushub/internal/chat/domain"
	"focushub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository forum comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListTopLevel comments of a post without a parent, oldest first
	ListTopLevel(ctx context.Context, postID string) ([]domain.Comment, error)
	ListReplies(ctx context.Context, commentID string) ([]domain.Comment, error)
	// ToggleVote applies voter's vote in a single write and returns the comment after it
	ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Comment, error)
	// DeleteThread removes the comment and every reply below it. ids is what was
	// matched, deleted what was actually removed.
	DeleteThread(ctx context.Context, id string) (ids []string, deleted int, err error)
}

type mongoCommentRepository struct {
	coll *mongo.Collection
}

// NewMongoCommentRepository create a CommentRepository on the comments collection
func NewMongoCommentRepository(db *mongo.Database) CommentRepository {
	return &mongoCommentRepository{coll: db.Collection("comments")}
}

// EnsureCommentIndexes per-post and reply lookups
func EnsureCommentIndexes(ctx context.Context, db *mongo.Database) error {
	return database.EnsureIndexes(ctx, db, "comments",
		mongo.IndexModel{Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "parent_comment", Value: 1}}},
	)
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := r.coll.InsertOne(ctx, comment)
	return err
}

func (r *mongoCommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound("comment", id, err)
	}
	return &c, nil
}

func (r *mongoCommentRepository) find(ctx context.Context, filter bson.M) ([]domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	comments := []domain.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *mongoCommentRepository) ListTopLevel(ctx context.Context, postID string) ([]domain.Comment, error) {
	return r.find(ctx, bson.M{"post": postID, "parent_comment": nil})
}

func (r *mongoCommentRepository) ListReplies(ctx context.Context, commentID string) ([]domain.Comment, error) {
	return r.find(ctx, bson.M{"parent_comment": commentID})
}

func (r *mongoCommentRepository) ToggleVote(ctx context.Context, id, voter string, dir domain.VoteDirection) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleVotePipeline(voter, dir), afterUpdate()).Decode(&c); err != nil {
		return nil, notFound("comment", id, err)
	}
	return &c, nil
}

func (r *mongoCommentRepository) DeleteThread(ctx context.Context, id string) ([]string, int, error) {
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err(); err != nil {
		return nil, 0, notFound("comment", id, err)
	}

	ids := []string{id}
	for frontier := []string{id}; len(frontier) > 0; {
		children, err := r.childIDs(ctx, frontier)
		if err != nil {
			return nil, 0, err
		}
		ids = append(ids, children...)
		frontier = children
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, 0, err
	}
	if res.DeletedCount == 0 {
		return nil, 0, notFound("comment", id, mongo.ErrNoDocuments)
	}
	return ids, int(res.DeletedCount), nil
}

func (r *mongoCommentRepository) childIDs(ctx context.Context, parents []string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"parent_comment": bson.M{"$in": parents}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
