package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"focushub/internal/material/domain"
	"focushub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaterialRepository owner scoped material metadata
type MaterialRepository interface {
	Create(ctx context.Context, m *domain.Material) error
	FindOwned(ctx context.Context, userID, id string) (*domain.Material, error)
	List(ctx context.Context, userID string, f domain.Filter) ([]domain.Material, error)
	// RecordDownload bumps download_count, sets last_accessed and returns the updated document
	RecordDownload(ctx context.Context, userID, id string, at time.Time) (*domain.Material, error)
	Delete(ctx context.Context, userID, id string) error
}

type mongoMaterialRepository struct {
	coll *mongo.Collection
}

// NewMongoMaterialRepository create a MaterialRepository on the materials collection
func NewMongoMaterialRepository(db *mongo.Database) MaterialRepository {
	return &mongoMaterialRepository{coll: db.Collection("materials")}
}

// EnsureMaterialIndexes owner listing by recency
func EnsureMaterialIndexes(ctx context.Context, db *mongo.Database) error {
	return database.EnsureIndexes(ctx, db, "materials",
		mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "tags", Value: 1}}},
	)
}

func notFound(id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
	}
	return err
}

func (r *mongoMaterialRepository) Create(ctx context.Context, m *domain.Material) error {
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *mongoMaterialRepository) FindOwned(ctx context.Context, userID, id string) (*domain.Material, error) {
	var m domain.Material
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&m); err != nil {
		return nil, notFound(id, err)
	}
	return &m, nil
}

func listFilter(userID string, f domain.Filter) bson.M {
	filter := bson.M{"user": userID}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"subject": re},
			bson.M{"tags": re},
		}
	}
	if f.Type != "" {
		filter["file_type"] = f.Type
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	return filter
}

func (r *mongoMaterialRepository) List(ctx context.Context, userID string, f domain.Filter) ([]domain.Material, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, listFilter(userID, f), opts)
	if err != nil {
		return nil, err
	}
	materials := []domain.Material{}
	if err := cur.All(ctx, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *mongoMaterialRepository) RecordDownload(ctx context.Context, userID, id string, at time.Time) (*domain.Material, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"download_count": 1},
		"$set": bson.M{"last_accessed": at, "updated_at": at},
	}

	var m domain.Material
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "user": userID}, update, opts).Decode(&m); err != nil {
		return nil, notFound(id, err)
	}
	return &m, nil
}

func (r *mongoMaterialRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(id, mongo.ErrNoDocuments)
	}
	return nil
}
