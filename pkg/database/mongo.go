package database

import (
	"context"
	"fmt"
	"time"

	"focushub/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoPingTimeout = 5 * time.Second

// NewMongoDB connects and pings the primary, retrying c.RetryCount times
func NewMongoDB(ctx context.Context, c Connection, dbName string) (*MongoDB, error) {
	clientOpts := options.Client().ApplyURI(c.ConnectStr)

	attempts := max(c.RetryCount, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := mongo.Connect(ctx, clientOpts)
		if err == nil {
			if err = pingPrimary(ctx, client); err == nil {
				logger.Log.Info("MongoDB connected", zap.String("database", dbName), zap.Int("attempt", attempt))
				return &MongoDB{Client: client, Database: client.Database(dbName)}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err

		logger.Log.Warn("Failed to connect to MongoDB, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < attempts {
			time.Sleep(c.RetryInterval)
		}
	}

	return nil, fmt.Errorf("connect mongo %s: %w", dbName, lastErr)
}

func pingPrimary(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates models on collection, indexes that already exist are kept
func EnsureIndexes(ctx context.Context, db *mongo.Database, collection string, models ...mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("ensure %s indexes: %w", collection, err)
	}
	logger.Log.Debug("indexes ready", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
