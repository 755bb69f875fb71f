package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"saleshub-system/internal/middleware"
	"saleshub-system/internal/store"
	"saleshub-system/internal/utils"
)

type AuthHandler struct {
	users    *store.UserStore
	redis    *redis.Client
	tokenTTL time.Duration
}

func NewAuthHandler(users *store.UserStore, redisClient *redis.Client, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, redis: redisClient, tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to register user"))
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Username, user.DisplayName, user.IsAdmin, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to issue token"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("User registered successfully", map[string]interface{}{
		"token":      token,
		"expires_at": exp,
		"user":       user,
	}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, store.ErrUserBlocked):
			c.JSON(http.StatusForbidden, errorResponse(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse("Authentication failed"))
		}
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Username, user.DisplayName, user.IsAdmin, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", map[string]interface{}{
		"token":      token,
		"expires_at": exp,
		"user":       user,
	}))
}

// Logout revokes the presented token; it stays invalid until it would have
// expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.RevokeSession(c, h.redis)
	c.JSON(http.StatusOK, successResponse("Signed out", nil))
}
