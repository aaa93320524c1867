package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is embedded in User. Price, Title and Image are a snapshot of the
// product taken when the line was last written.
type CartLine struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	Title    string             `bson:"title" json:"title"`
	Image    string             `bson:"image" json:"image"`
}

func NewCartLine(p Product, quantity int) CartLine {
	return CartLine{
		Product:  p.ID,
		Quantity: quantity,
		Price:    p.Price,
		Title:    p.Name,
		Image:    p.Image,
	}
}

// UpsertLine returns a copy of lines where the line for l.Product is replaced
// by l, or l appended when there is none. At most one line per product.
func UpsertLine(lines []CartLine, l CartLine) []CartLine {
	out := make([]CartLine, 0, len(lines)+1)
	replaced := false
	for _, cur := range lines {
		if cur.Product == l.Product {
			if !replaced {
				out = append(out, l)
				replaced = true
			}
			continue
		}
		out = append(out, cur)
	}
	if !replaced {
		out = append(out, l)
	}
	return out
}

// RemoveLine drops the line for productID. ok is false when there was none.
func RemoveLine(lines []CartLine, productID primitive.ObjectID) (out []CartLine, ok bool) {
	out = make([]CartLine, 0, len(lines))
	for _, cur := range lines {
		if cur.Product == productID {
			ok = true
			continue
		}
		out = append(out, cur)
	}
	return out, ok
}

// CartSubtotal sums the snapshot prices. It is for display only; checkout
// prices lines from the live catalog.
func CartSubtotal(lines []CartLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}
