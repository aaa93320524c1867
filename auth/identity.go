package auth

import (
	"ecommerce-api/apperr"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated caller. It is either Admin or Customer.
type Identity interface {
	UserID() primitive.ObjectID
	Role() models.Role
	identity()
}

type Admin struct {
	ID primitive.ObjectID
}

func (a Admin) UserID() primitive.ObjectID { return a.ID }
func (Admin) Role() models.Role            { return models.RoleAdmin }
func (Admin) identity()                    {}

type Customer struct {
	ID primitive.ObjectID
}

func (c Customer) UserID() primitive.ObjectID { return c.ID }
func (Customer) Role() models.Role            { return models.RoleUser }
func (Customer) identity()                    {}

func NewIdentity(id primitive.ObjectID, role models.Role) (Identity, error) {
	switch role {
	case models.RoleAdmin:
		return Admin{ID: id}, nil
	case models.RoleUser:
		return Customer{ID: id}, nil
	}
	return nil, models.ErrUnknownRole
}

// Policy decides whether an identity may proceed.
type Policy func(Identity) error

func Authenticated(id Identity) error {
	if id == nil {
		return apperr.ErrMissingToken
	}
	return nil
}

func AdminOnly(id Identity) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if _, ok := id.(Admin); !ok {
		return apperr.ErrAdminRequired
	}
	return nil
}

// OwnerOrAdmin lets admins through and customers only for their own records.
func OwnerOrAdmin(owner primitive.ObjectID) Policy {
	return func(id Identity) error {
		if err := Authenticated(id); err != nil {
			return err
		}
		switch v := id.(type) {
		case Admin:
			return nil
		case Customer:
			if v.ID == owner {
				return nil
			}
		}
		return apperr.Forbidden("access denied")
	}
}
