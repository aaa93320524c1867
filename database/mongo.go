package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-api/pkg/retry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UserCollection     = "users"
	ProductCollection  = "products"
	BrandCollection    = "brands"
	CategoryCollection = "categories"
	OrderCollection    = "orders"
)

var (
	ErrNotFound          = errors.New("database: document not found")
	ErrDuplicate         = errors.New("database: duplicate key")
	ErrStale             = errors.New("database: document changed concurrently")
	ErrInsufficientStock = errors.New("database: insufficient stock")
)

type Options struct {
	URI             string
	Database        string
	ConnectTimeout  time.Duration
	QueryTimeout    time.Duration
	ConnectAttempts int
}

// Connect opens a client and pings the primary, retrying with backoff while
// the server is not reachable yet.
func Connect(ctx context.Context, opts Options) (*mongo.Client, error) {
	const op = "database.Connect"
	log := slog.With("op", op)

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg := retry.Config{
		MaxAttempts: opts.ConnectAttempts,
		Backoff:     retry.ExponentialBackoff(250 * time.Millisecond),
		OnRetry: func(attempt int, err error) {
			log.Warn("mongo ping failed, retrying", "attempt", attempt, "err", err)
		},
	}
	err = retry.Do(ctx, cfg, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	log.Info("connected to mongodb", "database", opts.Database)
	return client, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on for
// duplicate detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: unique},
		},
		BrandCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		CategoryCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		OrderCollection: {
			{Keys: bson.D{{Key: "orderBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, indexes := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
