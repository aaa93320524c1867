package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecommerce-api/auth"
	"ecommerce-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{AccessSecret: "access", RefreshSecret: "refresh"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger())
	protected := r.Group("/", Authenticate(tokens))
	protected.GET("/me", func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id.UserID().Hex(), "role": id.Role()})
	})
	protected.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, tokens := newRouter(t)
	userID := primitive.NewObjectID()
	token, err := tokens.IssueAccessToken(userID, models.RoleUser)
	require.NoError(t, err)

	t.Run("no header", func(t *testing.T) {
		w := do(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "no token provided", body["message"])
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Basic abc").Code)
	})

	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer not.a.token").Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := tokens.IssueRefreshToken(userID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer "+refresh).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(r, "/me", "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.Hex())
	})
}

func TestRequireAdmin(t *testing.T) {
	r, tokens := newRouter(t)
	userToken, err := tokens.IssueAccessToken(primitive.NewObjectID(), models.RoleUser)
	require.NoError(t, err)
	adminToken, err := tokens.IssueAccessToken(primitive.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+adminToken).Code)
}

func TestRequestIDHeader(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, "/me", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://shop.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://shop.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
