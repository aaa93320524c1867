package controllers

import (
	"net/http"

	"ecommerce-api/models"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

type createProductRequest struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description" binding:"required"`
	Image       string  `json:"image" form:"image" binding:"required"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	Quantity    int     `json:"quantity" form:"quantity" binding:"gte=0"`
	Brand       *string `json:"brand" form:"brand"`
	Category    *string `json:"category" form:"category"`
}

func (h *ProductController) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	brand, err := optionalID(req.Brand)
	if err != nil {
		respondError(c, err)
		return
	}
	category, err := optionalID(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.products.Create(ctx, services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Brand:       brand,
		Category:    category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"product": product})
}

// List handles GET /products?page=1&limit=10&search=.
func (h *ProductController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.products.List(ctx, models.ProductFilter{Search: c.Query("search"), Page: pageFrom(c)})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"totalProducts": page.Total,
		"totalPages":    page.TotalPages,
		"currentPage":   page.CurrentPage,
		"products":      page.Items,
	})
}

func (h *ProductController) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.products.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": product})
}

type updateProductRequest struct {
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	Image       *string  `json:"image" form:"image"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gt=0"`
	Quantity    *int     `json:"quantity" form:"quantity" binding:"omitempty,gte=0"`
	Brand       *string  `json:"brand" form:"brand"`
	Category    *string  `json:"category" form:"category"`
}

func (h *ProductController) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	brand, err := optionalID(req.Brand)
	if err != nil {
		respondError(c, err)
		return
	}
	category, err := optionalID(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.products.Update(ctx, id, models.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Brand:       brand,
		Category:    category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": product})
}

func (h *ProductController) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.products.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "product deleted"})
}
