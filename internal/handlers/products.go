package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/store"
)

type ProductHandler struct {
	products *store.ProductStore
}

func NewProductHandler(products *store.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

type CreateProductRequest struct {
	ProductCode string `json:"product_code" binding:"required"`
	Description string `json:"description" binding:"required"`
	Unit        string `json:"unit" binding:"required"`
}

type UpdateProductRequest struct {
	Description *string `json:"description,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type AppendPriceRequest struct {
	EffectiveDate string `json:"effective_date" binding:"required"`
	UnitPrice     string `json:"unit_price" binding:"required"`
}

type ListProductsQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
	IsActive   *bool   `form:"is_active,omitempty"`
	SearchTerm *string `form:"search,omitempty"`
}

func (h *ProductHandler) List(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	products, total, err := h.products.List(c.Request.Context(), query.SearchTerm, query.IsActive, query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list products"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", products, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch product"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product retrieved successfully", product))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	product := models.Product{
		ProductCode: req.ProductCode,
		Description: req.Description,
		Unit:        req.Unit,
		IsActive:    true,
	}
	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to create product: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product created successfully", product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req.Description, req.Unit, req.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update product"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product updated successfully", product))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete product"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product deleted successfully", nil))
}

// AppendPrice records a new price-history entry for the product.
func (h *ProductHandler) AppendPrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var req AppendPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid effective date, expected YYYY-MM-DD"))
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || unitPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid unit price"))
		return
	}

	entry, err := h.products.AppendPrice(c.Request.Context(), id, effectiveDate, unitPrice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to record price"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Price recorded successfully", entry))
}

func (h *ProductHandler) PriceHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	entries, err := h.products.History(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch price history"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Price history retrieved successfully", entries))
}

// CurrentPrice resolves the effective price, optionally at a reference
// date passed as ?at=YYYY-MM-DD.
func (h *ProductHandler) CurrentPrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var ref *time.Time
	if at := c.Query("at"); at != "" {
		parsed, err := parseDate(at)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid reference date, expected YYYY-MM-DD"))
			return
		}
		ref = &parsed
	}

	price, err := h.products.PriceAt(c.Request.Context(), id, ref)
	if err != nil {
		if errors.Is(err, store.ErrNoPrice) {
			c.JSON(http.StatusNotFound, errorResponse("Product has no effective price"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to resolve price"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Price resolved successfully", map[string]interface{}{
		"product_id": id,
		"unit_price": price,
	}))
}
