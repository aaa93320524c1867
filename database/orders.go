package database

import (
	"context"
	"time"

	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewOrderRepository(db *mongo.Database, timeout time.Duration) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrderCollection), timeout: timeout}
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, order)
	return translate(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	return order, translate(err)
}

func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if f.OrderBy != nil {
		filter["orderBy"] = *f.OrderBy
	}

	page := models.NewPage(f.Page.Number, f.Page.Limit)
	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
