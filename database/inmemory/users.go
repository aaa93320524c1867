package inmemory

import (
	"context"
	"sync"
	"time"

	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]models.User
	ids   []primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{store: make(map[primitive.ObjectID]models.User)}
}

func cloneUser(u models.User) models.User {
	u.Cart = append([]models.CartLine{}, u.Cart...)
	u.Wishlist = append([]primitive.ObjectID{}, u.Wishlist...)
	return u
}

// taken reports whether email or mobile already belongs to a user other than
// self. Callers hold the lock.
func (r *UserRepository) taken(self primitive.ObjectID, email, mobile string) bool {
	for id, u := range r.store {
		if id == self {
			continue
		}
		if (email != "" && u.Email == email) || (mobile != "" && u.Mobile == mobile) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; ok {
		return database.ErrDuplicate
	}
	if r.taken(user.ID, user.Email, user.Mobile) {
		return database.ErrDuplicate
	}
	r.store[user.ID] = cloneUser(user)
	r.ids = append(r.ids, user.ID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error) {
	return r.findFirst(func(u models.User) bool {
		return u.PasswordResetToken != "" &&
			u.PasswordResetToken == digest &&
			u.PasswordResetExpires != nil &&
			u.PasswordResetExpires.After(now)
	})
}

func (r *UserRepository) findFirst(match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.ids {
		if u := r.store[id]; match(u) {
			return cloneUser(u), nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context, f models.UserFilter) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.User{}
	for _, id := range newestFirst(r.ids) {
		u := r.store[id]
		if f.Search != "" && !containsFold(u.Firstname, f.Search) && !containsFold(u.Lastname, f.Search) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	if upd.Firstname != nil {
		u.Firstname = *upd.Firstname
	}
	if upd.Lastname != nil {
		u.Lastname = *upd.Lastname
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Mobile != nil {
		u.Mobile = *upd.Mobile
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsBlocked != nil {
		u.IsBlocked = *upd.IsBlocked
	}
	if r.taken(id, u.Email, u.Mobile) {
		return models.User{}, database.ErrDuplicate
	}
	u.UpdatedAt = time.Now().UTC()
	r.store[id] = u
	return cloneUser(u), nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.store, id)
	r.ids = without(r.ids, id)
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.mutate(id, func(u *models.User) { u.RefreshToken = token })
}

func (r *UserRepository) SetPasswordReset(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.PasswordResetToken = digest
		u.PasswordResetExpires = &expires
	})
}

func (r *UserRepository) ChangePassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.Password = hash
		u.PasswordChangedAt = &at
		u.UpdatedAt = at
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		u.RefreshToken = ""
	})
}

func (r *UserRepository) ReplaceCart(ctx context.Context, id primitive.ObjectID, lines []models.CartLine, version int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	if u.CartVersion != version {
		return models.User{}, database.ErrStale
	}
	u.Cart = append([]models.CartLine{}, lines...)
	u.CartVersion++
	u.UpdatedAt = time.Now().UTC()
	r.store[id] = u
	return cloneUser(u), nil
}

func (r *UserRepository) AddToWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error) {
	return r.mutateAndGet(id, func(u *models.User) {
		for _, p := range u.Wishlist {
			if p == productID {
				return
			}
		}
		u.Wishlist = append(u.Wishlist, productID)
	})
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error) {
	return r.mutateAndGet(id, func(u *models.User) {
		u.Wishlist = without(u.Wishlist, productID)
	})
}

func (r *UserRepository) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	_, err := r.mutateAndGet(id, fn)
	return err
}

func (r *UserRepository) mutateAndGet(id primitive.ObjectID, fn func(*models.User)) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	u = cloneUser(u)
	fn(&u)
	r.store[id] = u
	return cloneUser(u), nil
}
