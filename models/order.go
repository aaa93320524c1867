package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderSucceeded OrderStatus = "Successed"
	OrderCancelled OrderStatus = "Cancelled"
)

var ErrUnknownOrderStatus = errors.New("status must be Successed or Cancelled")

// ParseOrderStatus accepts the empty string as the default status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case "", OrderSucceeded:
		return OrderSucceeded, nil
	case OrderCancelled:
		return OrderCancelled, nil
	}
	return "", ErrUnknownOrderStatus
}

// OrderLine is a copy of the product as it was at checkout.
type OrderLine struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	Name     string             `bson:"name" json:"name"`
	Image    string             `bson:"image" json:"image"`
}

func NewOrderLine(p Product, quantity int) OrderLine {
	return OrderLine{
		Product:  p.ID,
		Quantity: quantity,
		Price:    p.Price,
		Name:     p.Name,
		Image:    p.Image,
	}
}

type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Products  []OrderLine        `bson:"products" json:"products"`
	Status    OrderStatus        `bson:"status" json:"status"`
	Total     float64            `bson:"total" json:"total"`
	OrderBy   primitive.ObjectID `bson:"orderBy" json:"orderBy"`
	Address   string             `bson:"address" json:"address"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderTotal is the sum of price*quantity over lines, rounded to cents.
func OrderTotal(lines []OrderLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}

type OrderFilter struct {
	OrderBy *primitive.ObjectID
	Page    Page
}
