// Package inmemory holds map-backed repositories with the same contracts as
// the MongoDB ones. They back the tests and the memory storage driver.
package inmemory

import (
	"strings"

	"ecommerce-api/models"
)

// newestFirst returns ids in reverse insertion order.
func newestFirst[K comparable](ids []K) []K {
	out := make([]K, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func paginate[T any](items []T, p models.Page) []T {
	page := models.NewPage(p.Number, p.Limit)
	start := int(page.Skip())
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func without[K comparable](ids []K, id K) []K {
	out := ids[:0:0]
	for _, cur := range ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	return out
}
