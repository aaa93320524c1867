package database

import (
	"context"
	"errors"
	"regexp"
	"time"

	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{coll: db.Collection(UserCollection), timeout: timeout}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error) {
	return r.findOne(ctx, bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	return user, translate(err)
}

func (r *UserRepository) List(ctx context.Context, f models.UserFilter) ([]models.User, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"firstname": pattern},
			bson.M{"lastname": pattern},
		}
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
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, u models.UserUpdate) (models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Firstname != nil {
		set["firstname"] = *u.Firstname
	}
	if u.Lastname != nil {
		set["lastname"] = *u.Lastname
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Mobile != nil {
		set["mobile"] = *u.Mobile
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	if u.IsBlocked != nil {
		set["isBlocked"] = *u.IsBlocked
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}}
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *UserRepository) SetPasswordReset(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"passwordResetToken":   digest,
		"passwordResetExpires": expires,
	}})
}

// ChangePassword stores a new hash and drops the reset token and the refresh
// token so existing sessions cannot be refreshed.
func (r *UserRepository) ChangePassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password":          hash,
			"passwordChangedAt": at,
			"updatedAt":         at,
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
			"refreshToken":         "",
		},
	})
}

// ReplaceCart writes lines as the user's cart if the stored cart version still
// equals version, and bumps the version. A mismatch is ErrStale.
func (r *UserRepository) ReplaceCart(ctx context.Context, id primitive.ObjectID, lines []models.CartLine, version int64) (models.User, error) {
	if lines == nil {
		lines = []models.CartLine{}
	}
	filter := bson.M{"_id": id, "cartVersion": version}
	if version == 0 {
		// documents written before versioning have no cartVersion field
		filter = bson.M{"_id": id, "$or": bson.A{
			bson.M{"cartVersion": 0},
			bson.M{"cartVersion": bson.M{"$exists": false}},
		}}
	}
	update := bson.M{
		"$set": bson.M{"cart": lines, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"cartVersion": 1},
	}

	user, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, r.staleOrMissing(ctx, id)
	}
	return user, err
}

func (r *UserRepository) AddToWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"wishlist": productID}})
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, id, productID primitive.ObjectID) (models.User, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"wishlist": productID}})
}

func (r *UserRepository) staleOrMissing(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStale
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	return user, translate(err)
}

func (r *UserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
