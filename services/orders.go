package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/auth"
	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderServiceConfig struct {
	// ReserveStock makes checkout take line quantities off product stock and
	// fail when a product runs short.
	ReserveStock bool
}

type OrderService struct {
	users    UserStore
	products ProductStore
	orders   OrderStore
	cfg      OrderServiceConfig
	now      func() time.Time
}

func NewOrderService(users UserStore, products ProductStore, orders OrderStore, cfg OrderServiceConfig) *OrderService {
	return &OrderService{
		users:    users,
		products: products,
		orders:   orders,
		cfg:      cfg,
		now:      time.Now,
	}
}

type reservation struct {
	productID primitive.ObjectID
	quantity  int
}

// PlaceOrder turns the user's cart into an order priced from the live
// catalog and empties the cart.
//
// The cart is claimed first by clearing it under its version, so of two
// concurrent checkouts only one gets the lines. If the order cannot be stored
// afterwards the lines are put back.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, address, status string) (models.Order, error) {
	const op = "OrderService.PlaceOrder"
	log := slog.With("op", op, "user_id", userID.Hex())

	orderStatus, err := models.ParseOrderStatus(status)
	if err != nil {
		return models.Order{}, apperr.BadRequest(err.Error())
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Order{}, apperr.ErrEmptyCart
	}
	if err != nil {
		return models.Order{}, storeErr(op, err, "user not found")
	}
	if len(user.Cart) == 0 {
		return models.Order{}, apperr.ErrEmptyCart
	}

	lines, err := s.priceLines(ctx, op, user.Cart)
	if err != nil {
		return models.Order{}, err
	}

	var reserved []reservation
	if s.cfg.ReserveStock {
		reserved, err = s.reserve(ctx, op, lines)
		if err != nil {
			return models.Order{}, err
		}
	}

	if _, err := s.users.ReplaceCart(ctx, user.ID, nil, user.CartVersion); err != nil {
		s.rollbackStock(ctx, reserved)
		return models.Order{}, storeErr(op, err, "user not found")
	}

	if address = strings.TrimSpace(address); address == "" {
		address = user.Address
	}
	now := s.now().UTC()
	order := models.Order{
		ID:        primitive.NewObjectID(),
		Products:  lines,
		Status:    orderStatus,
		Total:     models.OrderTotal(lines),
		OrderBy:   user.ID,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// the claim bumped the version by one
		if _, restoreErr := s.users.ReplaceCart(ctx, user.ID, user.Cart, user.CartVersion+1); restoreErr != nil {
			log.Error("restore cart after failed order insert", "err", restoreErr)
		}
		s.rollbackStock(ctx, reserved)
		return models.Order{}, storeErr(op, err, "order not found")
	}

	log.Info("order placed", "order_id", order.ID.Hex(), "total", order.Total, "lines", len(lines))
	return order, nil
}

// priceLines snapshots every cart line from the current product document.
func (s *OrderService) priceLines(ctx context.Context, op string, cart []models.CartLine) ([]models.OrderLine, error) {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, l := range cart {
		ids = append(ids, l.Product)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(op, err, "product not found")
	}

	lines := make([]models.OrderLine, 0, len(cart))
	for _, l := range cart {
		p, ok := products[l.Product]
		if !ok {
			return nil, apperr.BadRequest(fmt.Sprintf("product %s is no longer available", l.Product.Hex()))
		}
		lines = append(lines, models.NewOrderLine(p, l.Quantity))
	}
	return lines, nil
}

func (s *OrderService) reserve(ctx context.Context, op string, lines []models.OrderLine) ([]reservation, error) {
	reserved := make([]reservation, 0, len(lines))
	for _, l := range lines {
		err := s.products.ReserveStock(ctx, l.Product, l.Quantity)
		if err == nil {
			reserved = append(reserved, reservation{productID: l.Product, quantity: l.Quantity})
			continue
		}

		s.rollbackStock(ctx, reserved)
		switch {
		case errors.Is(err, database.ErrInsufficientStock):
			return nil, apperr.BadRequest(fmt.Sprintf("not enough stock for %s", l.Name))
		case errors.Is(err, database.ErrNotFound):
			return nil, apperr.BadRequest(fmt.Sprintf("product %s is no longer available", l.Product.Hex()))
		}
		return nil, storeErr(op, err, "product not found")
	}
	return reserved, nil
}

func (s *OrderService) rollbackStock(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := s.products.ReleaseStock(ctx, r.productID, r.quantity); err != nil {
			slog.With("op", "OrderService.rollbackStock").Error("release stock",
				"product_id", r.productID.Hex(), "quantity", r.quantity, "err", err)
		}
	}
}

// Get returns an order visible to the caller. Orders of other customers are
// reported as missing.
func (s *OrderService) Get(ctx context.Context, caller auth.Identity, id primitive.ObjectID) (models.Order, error) {
	const op = "OrderService.Get"

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, storeErr(op, err, "order not found")
	}
	if err := auth.OwnerOrAdmin(order.OrderBy)(caller); err != nil {
		return models.Order{}, apperr.NotFound("order not found")
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID, page models.Page) (Paged[models.Order], error) {
	return s.list(ctx, "OrderService.ListMine", models.OrderFilter{OrderBy: &userID, Page: page})
}

func (s *OrderService) ListAll(ctx context.Context, page models.Page) (Paged[models.Order], error) {
	return s.list(ctx, "OrderService.ListAll", models.OrderFilter{Page: page})
}

func (s *OrderService) list(ctx context.Context, op string, f models.OrderFilter) (Paged[models.Order], error) {
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return Paged[models.Order]{}, storeErr(op, err, "")
	}
	return newPaged(orders, total, f.Page), nil
}
