package services

import (
	"context"
	"errors"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/database"
	"ecommerce-api/models"
	"ecommerce-api/pkg/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cartRetry re-reads the cart when a concurrent write bumped its version.
var cartRetry = retry.Config{
	MaxAttempts: 3,
	Backoff:     retry.ConstantBackoff(5 * time.Millisecond),
	ShouldRetry: func(err error) bool { return errors.Is(err, database.ErrStale) },
}

type CartService struct {
	users    UserStore
	products ProductStore
}

func NewCartService(users UserStore, products ProductStore) *CartService {
	return &CartService{users: users, products: products}
}

type Cart struct {
	Lines    []models.CartLine
	Subtotal float64
}

func cartOf(u models.User) Cart {
	lines := u.Cart
	if lines == nil {
		lines = []models.CartLine{}
	}
	return Cart{Lines: lines, Subtotal: models.CartSubtotal(lines)}
}

// Upsert sets the quantity of productID in the user's cart and refreshes the
// line's price, title and image from the product. A zero quantity means 1.
func (s *CartService) Upsert(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (Cart, error) {
	const op = "CartService.Upsert"

	if userID.IsZero() {
		return Cart{}, apperr.BadRequest("user id is required")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return Cart{}, apperr.BadRequest("quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Cart{}, storeErr(op, err, "product not found")
	}

	updated, err := s.rewrite(ctx, userID, func(lines []models.CartLine) ([]models.CartLine, error) {
		return models.UpsertLine(lines, models.NewCartLine(product, quantity)), nil
	})
	if err != nil {
		return Cart{}, storeErr(op, err, "user not found")
	}
	return cartOf(updated), nil
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (Cart, error) {
	const op = "CartService.Get"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Cart{}, storeErr(op, err, "user not found")
	}
	return cartOf(user), nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (Cart, error) {
	const op = "CartService.Remove"

	updated, err := s.rewrite(ctx, userID, func(lines []models.CartLine) ([]models.CartLine, error) {
		out, ok := models.RemoveLine(lines, productID)
		if !ok {
			return nil, apperr.NotFound("product is not in cart")
		}
		return out, nil
	})
	if err != nil {
		return Cart{}, storeErr(op, err, "user not found")
	}
	return cartOf(updated), nil
}

// rewrite applies edit to the user's current cart and stores the result
// conditioned on the version it read.
func (s *CartService) rewrite(ctx context.Context, userID primitive.ObjectID, edit func([]models.CartLine) ([]models.CartLine, error)) (models.User, error) {
	return retry.DoWithResult(ctx, cartRetry, func(ctx context.Context) (models.User, error) {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return models.User{}, err
		}
		lines, err := edit(user.Cart)
		if err != nil {
			return models.User{}, err
		}
		return s.users.ReplaceCart(ctx, user.ID, lines, user.CartVersion)
	})
}

// Wishlist returns the wished products that still exist, in the order they
// were added.
func (s *CartService) Wishlist(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	const op = "CartService.Wishlist"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err, "user not found")
	}
	found, err := s.products.FindByIDs(ctx, user.Wishlist)
	if err != nil {
		return nil, storeErr(op, err, "product not found")
	}

	products := make([]models.Product, 0, len(found))
	for _, id := range user.Wishlist {
		if p, ok := found[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *CartService) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) ([]models.Product, error) {
	const op = "CartService.AddToWishlist"

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, storeErr(op, err, "product not found")
	}
	if _, err := s.users.AddToWishlist(ctx, userID, productID); err != nil {
		return nil, storeErr(op, err, "user not found")
	}
	return s.Wishlist(ctx, userID)
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) ([]models.Product, error) {
	const op = "CartService.RemoveFromWishlist"

	if _, err := s.users.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, storeErr(op, err, "user not found")
	}
	return s.Wishlist(ctx, userID)
}
