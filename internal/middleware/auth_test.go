package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/permissions"
	"saleshub-system/internal/store"
	"saleshub-system/internal/utils"
)

func newAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := utils.GenerateToken(user.ID, user.Username, user.DisplayName, user.IsAdmin, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func TestJWTAuthGate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", JWTAuth(nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})

	// No token: the gate answers 401 instead of serving the page.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Malformed header.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", w.Code)
	}

	// Garbage token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", w.Code)
	}

	// Valid session.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", bearerFor(t, models.User{ID: 7, Username: "dana"}))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAuthTestDB(t)
	users := store.NewUserStore(db)

	viewer := models.User{Username: "viewer", Email: "viewer@example.com", Password: "x",
		Permissions: permissions.Set{permissions.ViewSales}}
	admin := models.User{Username: "admin", Email: "admin@example.com", Password: "x", IsAdmin: true}
	blocked := models.User{Username: "blocked", Email: "blocked@example.com", Password: "x", IsBlocked: true,
		Permissions: permissions.Set{permissions.ViewSales}}
	for _, u := range []*models.User{&viewer, &admin, &blocked} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	r := gin.New()
	r.Use(JWTAuth(nil))
	r.GET("/sales", RequirePermission(users, permissions.ViewSales), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/sales", RequirePermission(users, permissions.EditSales), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(method, path string, user models.User) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", bearerFor(t, user))
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := get(http.MethodGet, "/sales", viewer); code != http.StatusOK {
		t.Fatalf("viewer should read sales, got %d", code)
	}
	if code := get(http.MethodPost, "/sales", viewer); code != http.StatusForbidden {
		t.Fatalf("viewer must not edit sales, got %d", code)
	}
	if code := get(http.MethodPost, "/sales", admin); code != http.StatusOK {
		t.Fatalf("admin passes every check, got %d", code)
	}
	if code := get(http.MethodGet, "/sales", blocked); code != http.StatusForbidden {
		t.Fatalf("blocked account must be rejected, got %d", code)
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newAuthTestDB(t)
	users := store.NewUserStore(db)

	regular := models.User{Username: "regular", Email: "regular@example.com", Password: "x"}
	admin := models.User{Username: "admin", Email: "admin@example.com", Password: "x", IsAdmin: true}
	privileged := models.User{Username: "root", Email: "superadmin@saleshub.local", Password: "x"}
	for _, u := range []*models.User{&regular, &admin, &privileged} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	r := gin.New()
	r.Use(JWTAuth(nil))
	r.GET("/admin", RequireAdmin(users, "superadmin@saleshub.local"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(user models.User) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", bearerFor(t, user))
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := get(regular); code != http.StatusForbidden {
		t.Fatalf("regular account must be rejected, got %d", code)
	}
	if code := get(admin); code != http.StatusOK {
		t.Fatalf("admin flag must pass, got %d", code)
	}
	if code := get(privileged); code != http.StatusOK {
		t.Fatalf("privileged email must pass, got %d", code)
	}
}
