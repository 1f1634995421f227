package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/studydash/core/internal/infrastructure/config"
)

// DB wraps the document store client. One instance is created at process
// start and injected into everything that needs collection access; it is
// disconnected explicitly on shutdown.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	config config.DatabaseConfig
}

// New connects to the document store and verifies the connection
func New(cfg config.DatabaseConfig) (*DB, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("document store connection string is not configured")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	return &DB{
		client: client,
		db:     client.Database(cfg.Name),
		config: cfg,
	}, nil
}

// Collection returns a handle to the named collection
func (db *DB) Collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// Ping pings the document store
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// HealthCheck checks document store health
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("document store health check failed: %w", err)
	}

	return nil
}

// Name returns the database name in use
func (db *DB) Name() string {
	return db.config.Name
}

// Close disconnects from the document store
func (db *DB) Close(ctx context.Context) error {
	if db.client != nil {
		return db.client.Disconnect(ctx)
	}
	return nil
}
