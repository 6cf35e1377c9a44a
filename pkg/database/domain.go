package database

import (
	"fmt"
	"net/url"
	"time"

	"focushub/pkg/config"

	"go.mongodb.org/mongo-driver/mongo"
)

// Connection definition slq setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// MongoDB definition mongo db
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// MinIOConnection definition minio
type MinIOConnection struct {
	Endpoint   string
	User       string
	Password   string
	BucketName string
	UseSSL     bool

	RetryCount    int
	RetryInterval time.Duration
}

// KafkaConnection definition kafka
type KafkaConnection struct {
	Brokers       []string
	Topic         string
	RetryCount    int
	RetryInterval time.Duration
}

// MongoConnection build mongo connect setting from yaml
func MongoConnection(c config.DatabaseConfig) Connection {
	uri := fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
	if c.User != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d",
			url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port)
	}
	return Connection{
		ConnectStr:    uri,
		RetryCount:    max(c.RetryCount, 1),
		RetryInterval: time.Duration(c.RetryInterval) * time.Second,
	}
}

// PostgresConnection build postgres connect setting from yaml
func PostgresConnection(c config.DatabaseConfig) Connection {
	return Connection{
		ConnectStr: fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Database),
		RetryCount:    max(c.RetryCount, 1),
		RetryInterval: time.Duration(c.RetryInterval) * time.Second,
	}
}
