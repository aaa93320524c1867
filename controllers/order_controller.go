package controllers

import (
	"net/http"

	"ecommerce-api/apperr"
	"ecommerce-api/middleware"
	"ecommerce-api/models"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type placeOrderRequest struct {
	Address string `json:"address" form:"address"`
	Status  string `json:"status" form:"status"`
}

// PlaceOrder checks out the caller's cart.
func (h *OrderController) PlaceOrder(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req placeOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, userID, req.Address, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

func (h *OrderController) ListMine(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.orders.ListMine(ctx, userID, pageFrom(c))
	h.respondPage(c, page, err)
}

func (h *OrderController) Get(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperr.ErrMissingToken)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Get(ctx, identity, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

// ListAll is the admin view over every order.
func (h *OrderController) ListAll(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.orders.ListAll(ctx, pageFrom(c))
	h.respondPage(c, page, err)
}

func (h *OrderController) respondPage(c *gin.Context, page services.Paged[models.Order], err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"totalOrders": page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"orders":      page.Items,
	})
}
