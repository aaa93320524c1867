package routes

import (
	"context"
	"net/http"
	"time"

	"ecommerce-api/controllers"
	"ecommerce-api/middleware"
	"ecommerce-api/models"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether the storage backend is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserAdminController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Products   *controllers.ProductController
	Brands     *controllers.NamedController[models.Brand]
	Categories *controllers.NamedController[models.Category]
	Health     HealthCheck
}

func RegisterRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenVerifier) {
	controllers.RegisterValidators()

	r.GET("/health", health(h.Health))

	api := r.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
		api.POST("/refresh-token", h.Auth.Refresh)
		api.POST("/forgot-password", h.Auth.ForgotPassword)
		api.PUT("/reset-password/:token", h.Auth.ResetPassword)

		api.GET("/products", h.Products.List)
		api.GET("/products/:id", h.Products.Get)
		api.GET("/brands", h.Brands.List)
		api.GET("/categories", h.Categories.List)

		user := api.Group("/", middleware.Authenticate(tokens))
		{
			user.POST("/logout", h.Auth.Logout)
			user.GET("/me", h.Auth.Me)

			user.GET("/cart", h.Cart.Get)
			user.PUT("/cart", h.Cart.Upsert)
			user.DELETE("/cart/:productId", h.Cart.Remove)

			user.GET("/wishlist", h.Cart.Wishlist)
			user.POST("/wishlist", h.Cart.AddToWishlist)
			user.DELETE("/wishlist/:productId", h.Cart.RemoveFromWishlist)

			user.POST("/orders", h.Orders.PlaceOrder)
			user.GET("/orders", h.Orders.ListMine)
			user.GET("/orders/:id", h.Orders.Get)
		}

		admin := api.Group("/", middleware.Authenticate(tokens), middleware.RequireAdmin())
		{
			admin.GET("/users", h.Users.List)
			admin.GET("/users/:id", h.Users.Get)
			admin.PUT("/users/:id", h.Users.Update)
			admin.DELETE("/users/:id", h.Users.Delete)

			admin.POST("/products", h.Products.Create)
			admin.PUT("/products/:id", h.Products.Update)
			admin.DELETE("/products/:id", h.Products.Delete)

			admin.POST("/brands", h.Brands.Create)
			admin.PUT("/brands/:id", h.Brands.Update)
			admin.DELETE("/brands/:id", h.Brands.Delete)

			admin.POST("/categories", h.Categories.Create)
			admin.PUT("/categories/:id", h.Categories.Update)
			admin.DELETE("/categories/:id", h.Categories.Delete)

			admin.GET("/admin/orders", h.Orders.ListAll)
		}
	}
}

func health(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
