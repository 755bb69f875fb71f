package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saleshub-system/internal/permissions"
	"saleshub-system/internal/store"
)

// UserAdminHandler serves the two privileged administration endpoints:
// listing every account with its permission data and rewriting a target
// account's access. Both sit behind the admin gate.
type UserAdminHandler struct {
	users *store.UserStore
}

func NewUserAdminHandler(users *store.UserStore) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

type UpdateAccessRequest struct {
	Permissions *permissions.Set `json:"permissions,omitempty"`
	IsAdmin     *bool            `json:"is_admin,omitempty"`
	IsBlocked   *bool            `json:"is_blocked,omitempty"`
}

func (h *UserAdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.users.ListAccounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list accounts"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Accounts retrieved successfully", accounts))
}

func (h *UserAdminHandler) UpdateAccess(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid user ID"))
		return
	}

	var req UpdateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	if req.Permissions != nil {
		for _, p := range *req.Permissions {
			if !permissions.All().Has(p) {
				c.JSON(http.StatusBadRequest, errorResponse("Unknown permission: "+string(p)))
				return
			}
		}
	}

	user, err := h.users.UpdateAccess(c.Request.Context(), id, req.Permissions, req.IsAdmin, req.IsBlocked)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update access"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Access updated successfully", user))
}
