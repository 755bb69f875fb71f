package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/store"
)

func seedPricedProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{ProductCode: "P-100", Description: "Widget", Unit: "pcs", IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	products := store.NewProductStore(db, nil)
	ctx := context.Background()
	for day, price := range map[string]decimal.Decimal{
		"2023-01-01": decimal.NewFromInt(10),
		"2024-01-01": decimal.NewFromInt(15),
	} {
		effective, err := time.Parse("2006-01-02", day)
		if err != nil {
			t.Fatalf("bad test date: %v", err)
		}
		if _, err := products.AppendPrice(ctx, product.ID, effective, price); err != nil {
			t.Fatalf("failed to seed price: %v", err)
		}
	}
	return product
}

func TestCurrentPriceEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	product := seedPricedProduct(t, db)

	handler := NewProductHandler(store.NewProductStore(db, nil))
	r := gin.New()
	r.GET("/products/:id/price", handler.CurrentPrice)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	base := "/products/" + strconv.FormatInt(product.ID, 10) + "/price"

	w := get(base)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	data := resp.Data.(map[string]interface{})
	if data["unit_price"] != "15" {
		t.Fatalf("expected latest price 15, got %v", data["unit_price"])
	}

	w = get(base + "?at=2023-06-01")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = decodeEnvelope(t, w)
	data = resp.Data.(map[string]interface{})
	if data["unit_price"] != "10" {
		t.Fatalf("expected historical price 10, got %v", data["unit_price"])
	}

	// Before the first entry there is no effective price.
	w = get(base + "?at=2022-01-01")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first entry, got %d", w.Code)
	}

	w = get(base + "?at=not-a-date")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestAppendPriceEndpointRejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)
	product := seedPricedProduct(t, db)

	handler := NewProductHandler(store.NewProductStore(db, nil))
	r := gin.New()
	r.POST("/products/:id/prices", handler.AppendPrice)

	base := "/products/" + strconv.FormatInt(product.ID, 10) + "/prices"

	w := postJSON(t, r, base, AppendPriceRequest{EffectiveDate: "2024-06-01", UnitPrice: "-1.00"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", w.Code)
	}

	w = postJSON(t, r, base, AppendPriceRequest{EffectiveDate: "June 1st", UnitPrice: "12.00"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}

	w = postJSON(t, r, "/products/9999/prices", AppendPriceRequest{EffectiveDate: "2024-06-01", UnitPrice: "12.00"}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", w.Code)
	}

	w = postJSON(t, r, base, AppendPriceRequest{EffectiveDate: "2024-06-01", UnitPrice: "12.00"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}
