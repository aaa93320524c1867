package middleware

import (
	"strings"

	"ecommerce-api/apperr"
	"ecommerce-api/auth"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.Identity, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header. A missing
// token aborts with 401, a token that fails verification with 403.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, apperr.ErrMissingToken)
			return
		}

		id, err := tokens.VerifyAccessToken(token)
		if err != nil {
			abortWithError(c, apperr.ErrInvalidToken)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// Require runs policy against the identity set by Authenticate.
func Require(policy auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		if err := policy(id); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return Require(auth.AdminOnly)
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.KindOf(err).Status(), gin.H{
		"success": false,
		"message": apperr.Message(err),
	})
}
