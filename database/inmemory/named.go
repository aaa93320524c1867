package inmemory

import (
	"context"
	"sort"
	"sync"

	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NamedRepository[T models.Named[T]] struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]T
}

func NewNamedRepository[T models.Named[T]]() *NamedRepository[T] {
	return &NamedRepository[T]{store: make(map[primitive.ObjectID]T)}
}

func NewBrandRepository() *NamedRepository[models.Brand] {
	return NewNamedRepository[models.Brand]()
}

func NewCategoryRepository() *NamedRepository[models.Category] {
	return NewNamedRepository[models.Category]()
}

// nameTaken is called with the lock held.
func (r *NamedRepository[T]) nameTaken(self primitive.ObjectID, name string) bool {
	for id, doc := range r.store {
		if id != self && doc.Ref().Name == name {
			return true
		}
	}
	return false
}

func (r *NamedRepository[T]) Create(ctx context.Context, doc T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := doc.Ref()
	if _, ok := r.store[ref.ID]; ok || r.nameTaken(ref.ID, ref.Name) {
		return database.ErrDuplicate
	}
	r.store[ref.ID] = doc
	return nil
}

func (r *NamedRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.store[id]
	if !ok {
		var zero T
		return zero, database.ErrNotFound
	}
	return doc, nil
}

func (r *NamedRepository[T]) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for _, id := range ids {
		if doc, ok := r.store[id]; ok {
			out = append(out, doc)
		}
	}
	sortByName(out)
	return out, nil
}

func (r *NamedRepository[T]) List(ctx context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.store))
	for _, doc := range r.store {
		out = append(out, doc)
	}
	sortByName(out)
	return out, nil
}

func (r *NamedRepository[T]) Rename(ctx context.Context, id primitive.ObjectID, name string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	doc, ok := r.store[id]
	if !ok {
		return zero, database.ErrNotFound
	}
	if r.nameTaken(id, name) {
		return zero, database.ErrDuplicate
	}
	doc = doc.WithName(name)
	r.store[id] = doc
	return doc, nil
}

func (r *NamedRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func sortByName[T models.Named[T]](docs []T) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Ref().Name < docs[j].Ref().Name
	})
}
