package controllers

import (
	"net/http"

	"ecommerce-api/models"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func cartBody(cart services.Cart) gin.H {
	return gin.H{"cart": cart.Lines, "subtotal": cart.Subtotal}
}

type upsertCartRequest struct {
	ID       string `json:"id" form:"id" binding:"required,objectid"`
	Quantity int    `json:"quantity" form:"quantity" binding:"gte=0"`
}

// Upsert handles PUT /cart. Quantity defaults to 1.
func (h *CartController) Upsert(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req upsertCartRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	productID, err := parseID(req.ID, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Upsert(ctx, userID, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	body := cartBody(cart)
	body["message"] = "cart updated"
	respond(c, http.StatusOK, body)
}

func (h *CartController) Get(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Get(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cartBody(cart))
}

func (h *CartController) Remove(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.Remove(ctx, userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cartBody(cart))
}

func (h *CartController) Wishlist(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.carts.Wishlist(ctx, userID)
	h.respondWishlist(c, products, err)
}

type wishlistRequest struct {
	ID string `json:"id" form:"id" binding:"required,objectid"`
}

func (h *CartController) AddToWishlist(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req wishlistRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	productID, err := parseID(req.ID, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.carts.AddToWishlist(ctx, userID, productID)
	h.respondWishlist(c, products, err)
}

func (h *CartController) RemoveFromWishlist(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.carts.RemoveFromWishlist(ctx, userID, productID)
	h.respondWishlist(c, products, err)
}

func (h *CartController) respondWishlist(c *gin.Context, products []models.Product, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"wishlist": products})
}
