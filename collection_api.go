package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionAPI defines the MongoDB operations the archive needs, allowing for testing
type CollectionAPI interface {
	InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
}

// MongoDBCollection is a wrapper around mongo.Collection to implement CollectionAPI
type MongoDBCollection struct {
	*mongo.Collection
}

func (c *MongoDBCollection) InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	return c.Collection.InsertOne(ctx, document)
}

// AssignmentRecord is the archived form of one run.
type AssignmentRecord struct {
	RunID       string       `bson:"run_id"`
	Input       string       `bson:"input"`
	Output      string       `bson:"output"`
	CreatedAt   time.Time    `bson:"created_at"`
	Assignments []Assignment `bson:"assignments"`
}

// AssignmentArchive stores the codes handed out by each run.
type AssignmentArchive struct {
	collection CollectionAPI
	timeout    time.Duration
}

func NewAssignmentArchive(collection CollectionAPI, timeout time.Duration) *AssignmentArchive {
	return &AssignmentArchive{collection: collection, timeout: timeout}
}

// Record inserts rec, bounded by the archive timeout.
func (a *AssignmentArchive) Record(ctx context.Context, rec AssignmentRecord) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	if _, err := a.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("archive run %s: %w", rec.RunID, err)
	}
	return nil
}

// ConnectArchive opens a client for cfg. The returned function disconnects it.
func ConnectArchive(ctx context.Context, cfg ArchiveConfig) (*AssignmentArchive, func(context.Context) error, error) {
	opts := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.Timeout > 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	return NewAssignmentArchive(&MongoDBCollection{collection}, cfg.Timeout), client.Disconnect, nil
}
