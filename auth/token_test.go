package auth

import (
	"testing"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService(TokenConfig{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)
	return s
}

func TestNewTokenServiceRequiresSecrets(t *testing.T) {
	_, err := NewTokenService(TokenConfig{AccessSecret: "a"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestTokens(t)
	userID := primitive.NewObjectID()

	token, err := s.IssueAccessToken(userID, models.RoleAdmin)
	require.NoError(t, err)

	id, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID())
	assert.Equal(t, models.RoleAdmin, id.Role())
	assert.IsType(t, Admin{}, id)
}

func TestAccessTokenLifetime(t *testing.T) {
	s := newTestTokens(t)
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	token, err := s.IssueAccessToken(primitive.NewObjectID(), models.RoleUser)
	require.NoError(t, err)

	var claims AccessClaims
	_, _, err = new(jwt.Parser).ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(72*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyRejects(t *testing.T) {
	s := newTestTokens(t)
	userID := primitive.NewObjectID()

	t.Run("Expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(-4 * 24 * time.Hour) }
		defer func() { s.now = time.Now }()

		token, err := s.IssueAccessToken(userID, models.RoleUser)
		require.NoError(t, err)

		_, err = s.VerifyAccessToken(token)
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewTokenService(TokenConfig{AccessSecret: "other", RefreshSecret: "other"})
		require.NoError(t, err)
		token, err := other.IssueAccessToken(userID, models.RoleUser)
		require.NoError(t, err)

		_, err = s.VerifyAccessToken(token)
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("RefreshTokenIsNotAccessToken", func(t *testing.T) {
		token, err := s.IssueRefreshToken(userID)
		require.NoError(t, err)

		_, err = s.VerifyAccessToken(token)
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := s.VerifyAccessToken("not-a-token")
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	})
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := newTestTokens(t)
	userID := primitive.NewObjectID()

	first, err := s.IssueRefreshToken(userID)
	require.NoError(t, err)
	second, err := s.IssueRefreshToken(userID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	got, err := s.VerifyRefreshToken(second)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
