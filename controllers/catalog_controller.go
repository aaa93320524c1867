package controllers

import (
	"net/http"

	"ecommerce-api/models"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

// NamedController serves brands or categories. Responses use the plural
// and singular keys given at construction.
type NamedController[T models.Named[T]] struct {
	svc      *services.NamedService[T]
	singular string
	plural   string
}

func NewBrandController(svc *services.NamedService[models.Brand]) *NamedController[models.Brand] {
	return &NamedController[models.Brand]{svc: svc, singular: "brand", plural: "brands"}
}

func NewCategoryController(svc *services.NamedService[models.Category]) *NamedController[models.Category] {
	return &NamedController[models.Category]{svc: svc, singular: "category", plural: "categories"}
}

type nameRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func (h *NamedController[T]) Create(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := h.svc.Create(ctx, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{h.singular: doc})
}

func (h *NamedController[T]) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	docs, err := h.svc.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{h.plural: docs})
}

func (h *NamedController[T]) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := h.svc.Rename(ctx, id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{h.singular: doc})
}

func (h *NamedController[T]) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": h.singular + " deleted"})
}
