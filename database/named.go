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

// NamedRepository stores brands or categories: documents with an id and a
// unique name.
type NamedRepository[T models.Named[T]] struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewBrandRepository(db *mongo.Database, timeout time.Duration) *NamedRepository[models.Brand] {
	return &NamedRepository[models.Brand]{coll: db.Collection(BrandCollection), timeout: timeout}
}

func NewCategoryRepository(db *mongo.Database, timeout time.Duration) *NamedRepository[models.Category] {
	return &NamedRepository[models.Category]{coll: db.Collection(CategoryCollection), timeout: timeout}
}

func (r *NamedRepository[T]) Create(ctx context.Context, doc T) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, doc)
	return translate(err)
}

func (r *NamedRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc T
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	return doc, translate(err)
}

func (r *NamedRepository[T]) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *NamedRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

func (r *NamedRepository[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *NamedRepository[T]) Rename(ctx context.Context, id primitive.ObjectID, name string) (T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": name}}, opts).Decode(&doc)
	return doc, translate(err)
}

func (r *NamedRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
