package controllers

import (
	"net/http"

	"ecommerce-api/models"
	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

type UserAdminController struct {
	users *services.UserService
}

func NewUserAdminController(users *services.UserService) *UserAdminController {
	return &UserAdminController{users: users}
}

func (h *UserAdminController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.users.List(ctx, models.UserFilter{Search: c.Query("search"), Page: pageFrom(c)})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"totalUsers":  page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"users":       page.Items,
	})
}

func (h *UserAdminController) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}

type updateUserRequest struct {
	Firstname *string `json:"firstname" form:"firstname"`
	Lastname  *string `json:"lastname" form:"lastname"`
	Email     *string `json:"email" form:"email" binding:"omitempty,email"`
	Mobile    *string `json:"mobile" form:"mobile" binding:"omitempty,mobile"`
	Address   *string `json:"address" form:"address"`
	Role      *string `json:"role" form:"role" binding:"omitempty,oneof=admin user"`
	IsBlocked *bool   `json:"isBlocked" form:"isBlocked"`
}

func (r updateUserRequest) toUpdate() models.UserUpdate {
	u := models.UserUpdate{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
		Mobile:    r.Mobile,
		Address:   r.Address,
		IsBlocked: r.IsBlocked,
	}
	if r.Role != nil {
		role := models.Role(*r.Role)
		u.Role = &role
	}
	return u
}

func (h *UserAdminController) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Update(ctx, id, req.toUpdate())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserAdminController) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "user deleted"})
}
