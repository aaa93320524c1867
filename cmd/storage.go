package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-api/config"
	"ecommerce-api/database"
	"ecommerce-api/database/inmemory"
	"ecommerce-api/models"
	"ecommerce-api/services"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type storage struct {
	users      services.UserStore
	products   services.ProductStore
	brands     services.NamedStore[models.Brand]
	categories services.NamedStore[models.Category]
	orders     services.OrderStore
	ping       func(ctx context.Context) error
	close      func()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return storage{
			users:      inmemory.NewUserRepository(),
			products:   inmemory.NewProductRepository(),
			brands:     inmemory.NewBrandRepository(),
			categories: inmemory.NewCategoryRepository(),
			orders:     inmemory.NewOrderRepository(),
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil
	}

	client, err := database.Connect(ctx, database.Options{
		URI:             cfg.Mongo.URI,
		Database:        cfg.Mongo.Database,
		ConnectTimeout:  cfg.Mongo.ConnectTimeout,
		QueryTimeout:    cfg.Mongo.QueryTimeout,
		ConnectAttempts: cfg.Mongo.ConnectAttempts,
	})
	if err != nil {
		return storage{}, err
	}

	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return storage{}, fmt.Errorf("ensure indexes: %w", err)
	}

	timeout := cfg.Mongo.QueryTimeout
	return storage{
		users:      database.NewUserRepository(db, timeout),
		products:   database.NewProductRepository(db, timeout),
		brands:     database.NewBrandRepository(db, timeout),
		categories: database.NewCategoryRepository(db, timeout),
		orders:     database.NewOrderRepository(db, timeout),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				slog.Error("mongo disconnect", "err", err)
			}
		},
	}, nil
}
