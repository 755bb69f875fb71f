package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/store"
)

type CustomerHandler struct {
	customers *store.CustomerStore
}

func NewCustomerHandler(customers *store.CustomerStore) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type CreateCustomerRequest struct {
	CustomerNumber string `json:"customer_number" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Address        string `json:"address"`
	PaymentTerm    string `json:"payment_term"`
}

type UpdateCustomerRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	PaymentTerm *string `json:"payment_term,omitempty"`
}

type ListCustomersQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
	SearchTerm *string `form:"search,omitempty"`
}

func (h *CustomerHandler) List(c *gin.Context) {
	var query ListCustomersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	customers, total, err := h.customers.List(c.Request.Context(), query.SearchTerm, query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list customers"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved successfully", customers, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid customer ID"))
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Customer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch customer"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer retrieved successfully", customer))
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customer := models.Customer{
		CustomerNumber: req.CustomerNumber,
		Name:           req.Name,
		Address:        req.Address,
		PaymentTerm:    req.PaymentTerm,
	}
	if err := h.customers.Create(c.Request.Context(), &customer); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to create customer: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Customer created successfully", customer))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid customer ID"))
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), id, req.Name, req.Address, req.PaymentTerm)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Customer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update customer"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer updated successfully", customer))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid customer ID"))
		return
	}

	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Customer not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete customer"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Customer deleted successfully", nil))
}
