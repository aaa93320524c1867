// Package services implements the business operations behind the HTTP
// handlers. Services depend on the store interfaces below and report
// failures as apperr errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error)
	List(ctx context.Context, f models.UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.UserUpdate) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	SetPasswordReset(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error
	ChangePassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error
	ReplaceCart(ctx context.Context, id primitive.ObjectID, lines []models.CartLine, version int64) (models.User, error)
	AddToWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error)
	RemoveFromWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error)
}

type ProductStore interface {
	Create(ctx context.Context, p models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type NamedStore[T models.Named[T]] interface {
	Create(ctx context.Context, doc T) error
	FindByID(ctx context.Context, id primitive.ObjectID) (T, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]T, error)
	List(ctx context.Context) ([]T, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string) (T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error)
}

var (
	_ UserStore                   = (*database.UserRepository)(nil)
	_ ProductStore                = (*database.ProductRepository)(nil)
	_ NamedStore[models.Brand]    = (*database.NamedRepository[models.Brand])(nil)
	_ NamedStore[models.Category] = (*database.NamedRepository[models.Category])(nil)
	_ OrderStore                  = (*database.OrderRepository)(nil)
)

// storeErr converts a repository error into an apperr error. notFound is the
// client message used for database.ErrNotFound.
func storeErr(op string, err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	case errors.Is(err, database.ErrDuplicate):
		return apperr.Wrap(apperr.KindConflict, "already exists", err)
	case errors.Is(err, database.ErrStale):
		return apperr.Wrap(apperr.KindStale, "cart was modified by another request, retry", err)
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}

// Paged is one page of a listing plus the numbers the list endpoints report.
type Paged[T any] struct {
	Items       []T
	Total       int64
	TotalPages  int64
	CurrentPage int
}

func newPaged[T any](items []T, total int64, page models.Page) Paged[T] {
	page = models.NewPage(page.Number, page.Limit)
	return Paged[T]{
		Items:       items,
		Total:       total,
		TotalPages:  page.TotalPages(total),
		CurrentPage: page.Number,
	}
}
