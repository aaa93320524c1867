package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Image       string              `bson:"image" json:"image"`
	Price       float64             `bson:"price" json:"price"`
	Quantity    int                 `bson:"quantity" json:"quantity"`
	Brand       *primitive.ObjectID `bson:"brand,omitempty" json:"brand,omitempty"`
	Category    *primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type NamedRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// ProductView is a product with brand and category resolved to names.
type ProductView struct {
	Product
	Brand    *NamedRef `json:"brand"`
	Category *NamedRef `json:"category"`
}

// ProductUpdate carries a partial product update. Nil fields are left as is.
type ProductUpdate struct {
	Name        *string
	Description *string
	Image       *string
	Price       *float64
	Quantity    *int
	Brand       *primitive.ObjectID
	Category    *primitive.ObjectID
}

type ProductFilter struct {
	Search string
	Page   Page
}
