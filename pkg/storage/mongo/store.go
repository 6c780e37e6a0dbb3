// Package mongo stores render history in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

// DefaultCollection holds renders unless Config names another.
const DefaultCollection = "renders"

// Config configures [NewStore].
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a MongoDB-backed [storage.Store]. It is safe for concurrent use.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects, verifies the connection and ensures the created_at
// index used by List.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Store{client: client, coll: coll}, nil
}

func (s *Store) Save(ctx context.Context, r *storage.Render) error {
	if err := storage.ValidateID(r.ID); err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*storage.Render, error) {
	var r storage.Render
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find render: %w", err)
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]storage.Render, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"artifacts": 0})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	var out []storage.Render
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode renders: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ storage.Store = (*Store)(nil)
