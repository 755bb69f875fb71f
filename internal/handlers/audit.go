package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saleshub-system/internal/audit"
)

type AuditHandler struct {
	listener *audit.Listener
}

func NewAuditHandler(listener *audit.Listener) *AuditHandler {
	return &AuditHandler{listener: listener}
}

// List returns the in-memory trail, newest first. There is nothing behind
// it: a restart starts over with an empty list.
func (h *AuditHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Audit records retrieved successfully", h.listener.Records()))
}
