package inmemory

import (
	"context"
	"sync"
	"time"

	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]models.Product
	ids   []primitive.ObjectID
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{store: make(map[primitive.ObjectID]models.Product)}
}

func (r *ProductRepository) Create(ctx context.Context, p models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[p.ID]; ok {
		return database.ErrDuplicate
	}
	r.store[p.ID] = p
	r.ids = append(r.ids, p.ID)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.store[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Product{}
	for _, id := range newestFirst(r.ids) {
		p := r.store[id]
		if f.Search != "" && !containsFold(p.Name, f.Search) {
			continue
		}
		matched = append(matched, p)
	}
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Brand != nil {
		brand := *u.Brand
		p.Brand = &brand
	}
	if u.Category != nil {
		category := *u.Category
		p.Category = &category
	}
	p.UpdatedAt = time.Now().UTC()
	r.store[id] = p
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.store, id)
	r.ids = without(r.ids, id)
	return nil
}

func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[id]
	if !ok {
		return database.ErrNotFound
	}
	if p.Quantity < qty {
		return database.ErrInsufficientStock
	}
	p.Quantity -= qty
	r.store[id] = p
	return nil
}

func (r *ProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.store[id]; ok {
		p.Quantity += qty
		r.store[id] = p
	}
	return nil
}
