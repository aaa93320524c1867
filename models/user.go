package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var ErrUnknownRole = errors.New("role must be admin or user")

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", ErrUnknownRole
}

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Firstname string               `bson:"firstname" json:"firstname"`
	Lastname  string               `bson:"lastname" json:"lastname"`
	Email     string               `bson:"email" json:"email"`
	Mobile    string               `bson:"mobile" json:"mobile"`
	Address   string               `bson:"address" json:"address"`
	Avatar    string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Password  string               `bson:"password" json:"-"`
	Role      Role                 `bson:"role" json:"role"`
	Cart      []CartLine           `bson:"cart" json:"cart"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	IsBlocked bool                 `bson:"isBlocked" json:"isBlocked"`

	// CartVersion is bumped by every cart write and guards read-modify-write
	// cycles on Cart.
	CartVersion int64 `bson:"cartVersion" json:"-"`

	RefreshToken         string     `bson:"refreshToken,omitempty" json:"-"`
	PasswordChangedAt    *time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string     `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PasswordHasher turns a raw password into its stored one-way form.
type PasswordHasher interface {
	Hash(raw string) (string, error)
}

type NewUserParams struct {
	Firstname string
	Lastname  string
	Email     string
	Mobile    string
	Address   string
	Password  string
	Role      string
}

// NewUser builds a user ready to be inserted. The raw password is hashed
// here; a User value never carries plaintext.
func NewUser(p NewUserParams, hasher PasswordHasher) (User, error) {
	role, err := ParseRole(p.Role)
	if err != nil {
		return User{}, err
	}

	hashed, err := hasher.Hash(p.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	return User{
		ID:        primitive.NewObjectID(),
		Firstname: strings.TrimSpace(p.Firstname),
		Lastname:  strings.TrimSpace(p.Lastname),
		Email:     NormalizeEmail(p.Email),
		Mobile:    strings.TrimSpace(p.Mobile),
		Address:   strings.TrimSpace(p.Address),
		Password:  hashed,
		Role:      role,
		Cart:      []CartLine{},
		Wishlist:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is the user as returned by login: no credentials and no role.
type Profile struct {
	ID        primitive.ObjectID   `json:"id"`
	Firstname string               `json:"firstname"`
	Lastname  string               `json:"lastname"`
	Email     string               `json:"email"`
	Mobile    string               `json:"mobile"`
	Address   string               `json:"address"`
	Avatar    string               `json:"avatar,omitempty"`
	Cart      []CartLine           `json:"cart"`
	Wishlist  []primitive.ObjectID `json:"wishlist"`
	IsBlocked bool                 `json:"isBlocked"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Address:   u.Address,
		Avatar:    u.Avatar,
		Cart:      u.Cart,
		Wishlist:  u.Wishlist,
		IsBlocked: u.IsBlocked,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserUpdate carries the admin-editable fields. Nil fields are left as is.
type UserUpdate struct {
	Firstname *string
	Lastname  *string
	Email     *string
	Mobile    *string
	Address   *string
	Role      *Role
	IsBlocked *bool
}

// UserFilter selects users by a case-insensitive substring of the first or
// last name.
type UserFilter struct {
	Search string
	Page   Page
}
