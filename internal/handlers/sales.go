package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saleshub-system/internal/store"
)

type SalesHandler struct {
	sales *store.SalesStore
}

func NewSalesHandler(sales *store.SalesStore) *SalesHandler {
	return &SalesHandler{sales: sales}
}

type CreateDraftRequest struct {
	OrderDate *string `json:"order_date,omitempty"`
}

type UpdateDraftRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	OrderDate  *string `json:"order_date,omitempty"`
}

type AddLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int32 `json:"quantity"`
}

type UpdateLineRequest struct {
	ProductID *int64 `json:"product_id,omitempty"`
	Quantity  *int32 `json:"quantity,omitempty"`
}

type SubmitDraftRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

type UpdateSaleRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	SaleDate   *string `json:"sale_date,omitempty"`
}

type ListSalesQuery struct {
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
	StartDate string `form:"start_date,omitempty"`
	EndDate   string `form:"end_date,omitempty"`
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// --- Drafts ---

func (h *SalesHandler) CreateDraft(c *gin.Context) {
	// An empty body is fine; a malformed one is not.
	var req CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
			return
		}
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		parsed, err := parseDate(*req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid order date, expected YYYY-MM-DD"))
			return
		}
		orderDate = parsed
	}

	draft, err := h.sales.CreateDraft(c.Request.Context(), callerID(c), orderDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create draft"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Draft created successfully", draft))
}

func (h *SalesHandler) GetDraft(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}

	view, err := h.sales.GetDraft(c.Request.Context(), draftID, callerID(c))
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Draft retrieved successfully", view))
}

func (h *SalesHandler) UpdateDraft(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}

	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var orderDate *time.Time
	if req.OrderDate != nil {
		parsed, err := parseDate(*req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid order date, expected YYYY-MM-DD"))
			return
		}
		orderDate = &parsed
	}

	view, err := h.sales.UpdateDraft(c.Request.Context(), draftID, callerID(c), req.CustomerID, req.EmployeeID, orderDate)
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Draft updated successfully", view))
}

func (h *SalesHandler) AddLine(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	view, err := h.sales.AddLine(c.Request.Context(), draftID, callerID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Line added successfully", view))
}

func (h *SalesHandler) UpdateLine(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}
	lineID, err := strconv.ParseInt(c.Param("line_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid line ID"))
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	view, err := h.sales.UpdateLine(c.Request.Context(), draftID, callerID(c), lineID, req.ProductID, req.Quantity)
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Line updated successfully", view))
}

func (h *SalesHandler) RemoveLine(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}
	lineID, err := strconv.ParseInt(c.Param("line_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid line ID"))
		return
	}

	view, err := h.sales.RemoveLine(c.Request.Context(), draftID, callerID(c), lineID)
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Line removed successfully", view))
}

func (h *SalesHandler) SubmitDraft(c *gin.Context) {
	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid draft ID"))
		return
	}

	var req SubmitDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	view, err := h.sales.Submit(c.Request.Context(), draftID, callerID(c), req.IdempotencyKey)
	if err != nil {
		h.draftError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order created successfully", view))
}

func (h *SalesHandler) draftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, errorResponse("Not found"))
	case errors.Is(err, store.ErrDraftSubmitted),
		errors.Is(err, store.ErrMissingCustomer),
		errors.Is(err, store.ErrMissingEmployee),
		errors.Is(err, store.ErrNoLines),
		errors.Is(err, store.ErrNoPrice):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
	}
}

// --- Sales ---

func (h *SalesHandler) List(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	var from, to *time.Time
	if query.StartDate != "" {
		parsed, err := parseDate(query.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid start date, expected YYYY-MM-DD"))
			return
		}
		from = &parsed
	}
	if query.EndDate != "" {
		parsed, err := parseDate(query.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid end date, expected YYYY-MM-DD"))
			return
		}
		to = &parsed
	}

	sales, total, err := h.sales.List(c.Request.Context(), from, to, query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list sales"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Sales retrieved successfully", sales, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}))
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid sale ID"))
		return
	}

	view, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Sale not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch sale"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale retrieved successfully", view))
}

func (h *SalesHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid sale ID"))
		return
	}

	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var saleDate *time.Time
	if req.SaleDate != nil {
		parsed, err := parseDate(*req.SaleDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid sale date, expected YYYY-MM-DD"))
			return
		}
		saleDate = &parsed
	}

	view, err := h.sales.Update(c.Request.Context(), id, callerID(c), req.CustomerID, req.EmployeeID, saleDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Sale not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update sale"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale updated successfully", view))
}

func (h *SalesHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid sale ID"))
		return
	}

	if err := h.sales.Delete(c.Request.Context(), id, callerID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Sale not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete sale"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Sale deleted successfully", nil))
}
