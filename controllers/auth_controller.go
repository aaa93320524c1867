package controllers

import (
	"net/http"
	"time"

	"ecommerce-api/services"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refreshToken"

type AuthController struct {
	users      *services.UserService
	refreshTTL time.Duration
}

func NewAuthController(users *services.UserService, refreshTTL time.Duration) *AuthController {
	return &AuthController{users: users, refreshTTL: refreshTTL}
}

type registerRequest struct {
	Firstname string `json:"firstname" form:"firstname" binding:"required"`
	Lastname  string `json:"lastname" form:"lastname" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Mobile    string `json:"mobile" form:"mobile" binding:"required,mobile"`
	Address   string `json:"address" form:"address" binding:"required"`
	Password  string `json:"password" form:"password" binding:"required,min=8,max=72"`
	Role      string `json:"role" form:"role" binding:"required,oneof=admin user"`
}

func (h *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Register(ctx, services.RegisterInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "registration successful, please log in",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.refreshTTL.Seconds()))
	respond(c, http.StatusOK, gin.H{
		"accessToken": session.AccessToken,
		"userData":    session.User.Profile(),
	})
}

// Refresh reads the refresh cookie and answers with a new access token. The
// cookie is replaced by a rotated refresh token.
func (h *AuthController) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := h.users.Refresh(ctx, token)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.refreshTTL.Seconds()))
	respond(c, http.StatusOK, gin.H{"accessToken": session.AccessToken})
}

func (h *AuthController) Logout(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Logout(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	respond(c, http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthController) Me(c *gin.Context) {
	userID, err := caller(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Get(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user.Profile()})
}

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

func (h *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.ForgotPassword(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message": "if the email is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

func (h *AuthController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.ResetPassword(ctx, c.Param("token"), req.Password); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "password updated"})
}

func (h *AuthController) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, true)
}
