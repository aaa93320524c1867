package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		check  HealthCheck
		status int
	}{
		{name: "no check", status: http.StatusOK},
		{name: "healthy", check: func(context.Context) error { return nil }, status: http.StatusOK},
		{name: "down", check: func(context.Context) error { return errors.New("no reachable servers") }, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", health(tc.check))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
