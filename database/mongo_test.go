package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testTimeout = time.Second

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func countResponse(n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, "shop.users", mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, "shop.users", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func noMatch() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

func TestReplaceCart(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	lines := []models.CartLine{{Product: productID, Quantity: 2, Price: 9.5}}

	mt.Run("matching version", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: userID},
			{Key: "email", Value: "a@b.com"},
			{Key: "cartVersion", Value: int64(4)},
			{Key: "cart", Value: bson.A{bson.D{
				{Key: "product", Value: productID},
				{Key: "quantity", Value: 2},
				{Key: "price", Value: 9.5},
			}}},
		}}))

		user, err := repo.ReplaceCart(context.Background(), userID, lines, 3)
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), user.CartVersion)
		require.Len(mt, user.Cart, 1)
		assert.Equal(mt, 2, user.Cart[0].Quantity)

		cmd := mt.GetStartedEvent().Command
		version, ok := cmd.Lookup("query", "cartVersion").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(3), version)
		inc, ok := cmd.Lookup("update", "$inc", "cartVersion").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(1), inc)
	})

	mt.Run("unversioned document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: userID},
			{Key: "cartVersion", Value: int64(1)},
		}}))

		_, err := repo.ReplaceCart(context.Background(), userID, nil, 0)
		require.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		_, hasOr := cmd.Lookup("query", "$or").ArrayOK()
		assert.True(mt, hasOr)
		_, isArray := cmd.Lookup("update", "$set", "cart").ArrayOK()
		assert.True(mt, isArray, "nil lines must be stored as an empty array")
	})

	mt.Run("stale version", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(noMatch(), countResponse(1))

		_, err := repo.ReplaceCart(context.Background(), userID, lines, 3)
		assert.ErrorIs(mt, err, ErrStale)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(noMatch(), countResponse(0))

		_, err := repo.ReplaceCart(context.Background(), userID, lines, 3)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUserCreateDuplicate(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.users index: email_1",
		}))

		err := repo.Create(context.Background(), models.User{ID: primitive.NewObjectID(), Email: "a@b.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("other write error", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, testTimeout)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))

		err := repo.Create(context.Background(), models.User{ID: primitive.NewObjectID()})
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, ErrDuplicate))
	})
}

func TestReserveStock(t *testing.T) {
	mt := newMock(t)
	productID := primitive.NewObjectID()
	updated := func(n int) bson.D {
		return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
	}

	mt.Run("enough stock", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, testTimeout)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repo.ReserveStock(context.Background(), productID, 3))

		cmd := mt.GetStartedEvent().Command
		stmt := cmd.Lookup("updates").Array().Index(0).Value().Document()
		floor, ok := stmt.Lookup("q", "quantity", "$gte").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(3), floor)
		inc, ok := stmt.Lookup("u", "$inc", "quantity").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(-3), inc)
	})

	mt.Run("insufficient stock", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, testTimeout)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "name", Value: "mug"},
				{Key: "quantity", Value: 1},
			}),
		)

		err := repo.ReserveStock(context.Background(), productID, 3)
		assert.ErrorIs(mt, err, ErrInsufficientStock)
	})

	mt.Run("missing product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, testTimeout)
		mt.AddMockResponses(
			updated(0),
			mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch),
		)

		err := repo.ReserveStock(context.Background(), productID, 3)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestProductSearchIsLiteral(t *testing.T) {
	mt := newMock(t)

	mt.Run("quoted pattern", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, testTimeout)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "name", Value: "a.b mug"},
			}),
			mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(1)}}),
		)

		products, total, err := repo.List(context.Background(), models.ProductFilter{
			Search: "a.b",
			Page:   models.NewPage(2, 5),
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), total)
		require.Len(mt, products, 1)

		cmd := mt.GetStartedEvent().Command
		pattern, opts := cmd.Lookup("filter", "name").Regex()
		assert.Equal(mt, `a\.b`, pattern)
		assert.Equal(mt, "i", opts)
		assert.Equal(mt, int64(5), cmd.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(5), cmd.Lookup("limit").AsInt64())
	})
}

func TestNamedCreateDuplicate(t *testing.T) {
	mt := newMock(t)

	mt.Run("brand name taken", func(mt *mtest.T) {
		repo := NewBrandRepository(mt.DB, testTimeout)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.brands index: name_1",
		}))

		err := repo.Create(context.Background(), models.NewBrand("Acme"))
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}
