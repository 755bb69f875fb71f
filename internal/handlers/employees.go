package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/store"
)

type EmployeeHandler struct {
	employees *store.EmployeeStore
}

func NewEmployeeHandler(employees *store.EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

type CreateEmployeeRequest struct {
	EmployeeNumber string  `json:"employee_number" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Position       string  `json:"position"`
	Department     string  `json:"department"`
	HireDate       *string `json:"hire_date"`
}

type UpdateEmployeeRequest struct {
	Name       *string `json:"name,omitempty"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	HireDate   *string `json:"hire_date,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

type ListEmployeesQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
	IsActive   *bool   `form:"is_active,omitempty"`
	SearchTerm *string `form:"search,omitempty"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func (h *EmployeeHandler) List(c *gin.Context) {
	var query ListEmployeesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	employees, total, err := h.employees.List(c.Request.Context(), query.SearchTerm, query.IsActive, query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list employees"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Employees retrieved successfully", employees, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}))
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid employee ID"))
		return
	}

	employee, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Employee not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch employee"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Employee retrieved successfully", employee))
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	employee := models.Employee{
		EmployeeNumber: req.EmployeeNumber,
		Name:           req.Name,
		Position:       req.Position,
		Department:     req.Department,
		IsActive:       true,
	}
	if req.HireDate != nil {
		hireDate, err := parseDate(*req.HireDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid hire date, expected YYYY-MM-DD"))
			return
		}
		employee.HireDate = &hireDate
	}

	if err := h.employees.Create(c.Request.Context(), &employee); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to create employee: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Employee created successfully", employee))
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid employee ID"))
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var hireDate *time.Time
	if req.HireDate != nil {
		parsed, err := parseDate(*req.HireDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid hire date, expected YYYY-MM-DD"))
			return
		}
		hireDate = &parsed
	}

	employee, err := h.employees.Update(c.Request.Context(), id, req.Name, req.Position, req.Department, hireDate, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Employee not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update employee"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Employee updated successfully", employee))
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid employee ID"))
		return
	}

	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Employee not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete employee"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Employee deleted successfully", nil))
}
