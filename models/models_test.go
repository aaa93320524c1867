package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type prefixHasher struct{}

func (prefixHasher) Hash(raw string) (string, error) {
	return "hashed:" + raw, nil
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("boom")
}

func TestNewUser(t *testing.T) {
	t.Run("HashesPassword", func(t *testing.T) {
		u, err := NewUser(NewUserParams{
			Firstname: "A",
			Lastname:  "B",
			Email:     " A@B.com ",
			Mobile:    "0123456789",
			Address:   "X",
			Password:  "12345678",
			Role:      "user",
		}, prefixHasher{})
		require.NoError(t, err)

		assert.False(t, u.ID.IsZero())
		assert.Equal(t, "a@b.com", u.Email)
		assert.Equal(t, RoleUser, u.Role)
		assert.Equal(t, "hashed:12345678", u.Password)
		assert.NotNil(t, u.Cart)
		assert.NotNil(t, u.Wishlist)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := NewUser(NewUserParams{Password: "12345678", Role: "root"}, prefixHasher{})
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("HasherFailure", func(t *testing.T) {
		_, err := NewUser(NewUserParams{Password: "12345678", Role: "admin"}, failingHasher{})
		assert.Error(t, err)
	})
}

func TestUpsertLine(t *testing.T) {
	p1 := Product{ID: primitive.NewObjectID(), Name: "one", Price: 10}
	p2 := Product{ID: primitive.NewObjectID(), Name: "two", Price: 5}

	lines := UpsertLine(nil, NewCartLine(p1, 2))
	lines = UpsertLine(lines, NewCartLine(p2, 1))
	require.Len(t, lines, 2)

	p1.Price = 12
	lines = UpsertLine(lines, NewCartLine(p1, 5))
	require.Len(t, lines, 2)
	assert.Equal(t, p1.ID, lines[0].Product)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 12.0, lines[0].Price)

	lines, ok := RemoveLine(lines, p2.ID)
	assert.True(t, ok)
	assert.Len(t, lines, 1)

	_, ok = RemoveLine(lines, p2.ID)
	assert.False(t, ok)
}

func TestOrderTotal(t *testing.T) {
	lines := []OrderLine{
		{Price: 0.1, Quantity: 3},
		{Price: 19.99, Quantity: 2},
	}
	assert.Equal(t, 40.28, OrderTotal(lines))
	assert.Equal(t, 0.0, OrderTotal(nil))
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("")
	require.NoError(t, err)
	assert.Equal(t, OrderSucceeded, s)

	s, err = ParseOrderStatus("Cancelled")
	require.NoError(t, err)
	assert.Equal(t, OrderCancelled, s)

	_, err = ParseOrderStatus("Shipped")
	assert.ErrorIs(t, err, ErrUnknownOrderStatus)
}

func TestPage(t *testing.T) {
	p := NewPage(0, 0)
	assert.Equal(t, Page{Number: 1, Limit: DefaultPageLimit}, p)
	assert.Equal(t, int64(0), p.Skip())

	p = NewPage(3, 500)
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, int64(200), p.Skip())

	p = NewPage(1, 10)
	assert.Equal(t, int64(3), p.TotalPages(21))
	assert.Equal(t, int64(0), p.TotalPages(0))
}

func TestProfileOmitsCredentials(t *testing.T) {
	u := User{Email: "a@b.com", Password: "secret-hash", Role: RoleAdmin, RefreshToken: "rt"}

	raw, err := json.Marshal(u.Profile())
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `"email":"a@b.com"`)
	assert.NotContains(t, body, "secret-hash")
	assert.NotContains(t, body, `"role"`)
	assert.NotContains(t, body, "refreshToken")

	raw, err = json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"role":"admin"`)
}
