package inmemory

import (
	"context"
	"errors"
	"sync"

	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]models.Order
	ids   []primitive.ObjectID

	// FailCreate, when set, is returned by Create instead of storing the
	// order.
	FailCreate error
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{store: make(map[primitive.ObjectID]models.Order)}
}

var errNilOrderID = errors.New("inmemory: order id is required")

func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate != nil {
		return r.FailCreate
	}
	if order.ID.IsZero() {
		return errNilOrderID
	}
	if _, ok := r.store[order.ID]; ok {
		return database.ErrDuplicate
	}
	order.Products = append([]models.OrderLine{}, order.Products...)
	r.store[order.ID] = order
	r.ids = append(r.ids, order.ID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.store[id]
	if !ok {
		return models.Order{}, database.ErrNotFound
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Order{}
	for _, id := range newestFirst(r.ids) {
		order := r.store[id]
		if f.OrderBy != nil && order.OrderBy != *f.OrderBy {
			continue
		}
		matched = append(matched, order)
	}
	return paginate(matched, f.Page), int64(len(matched)), nil
}

// Count returns the number of stored orders.
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}
