package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"saleshub-system/internal/audit"
	"saleshub-system/internal/database/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	// A pooled :memory: connection would be a different empty database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Product{},
		&models.PriceHistory{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleDetail{},
		&models.OrderDraft{},
		&models.OrderDraftLine{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return parsed
}

func seedProductWithPrices(t *testing.T, db *gorm.DB, code string, prices map[string]string) models.Product {
	t.Helper()

	product := models.Product{ProductCode: code, Description: "Product " + code, Unit: "pcs", IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	store := NewProductStore(db, nil)
	for day, price := range prices {
		unitPrice, err := decimal.NewFromString(price)
		if err != nil {
			t.Fatalf("bad test price %q: %v", price, err)
		}
		if _, err := store.AppendPrice(context.Background(), product.ID, date(t, day), unitPrice); err != nil {
			t.Fatalf("failed to seed price: %v", err)
		}
	}
	return product
}

func seedCustomer(t *testing.T, db *gorm.DB) models.Customer {
	t.Helper()
	customer := models.Customer{CustomerNumber: "C001", Name: "Acme Trading", Address: "12 Harbor Rd", PaymentTerm: "NET30"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	return customer
}

func seedEmployee(t *testing.T, db *gorm.DB) models.Employee {
	t.Helper()
	employee := models.Employee{EmployeeNumber: "E001", Name: "Dana Reyes", Position: "Sales Rep", IsActive: true}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
	return employee
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", DisplayName: username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) all() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.Event, len(p.events))
	copy(out, p.events)
	return out
}

func assertDecimal(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	expected, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expected decimal %q: %v", want, err)
	}
	if !got.Equal(expected) {
		t.Fatalf("expected %s, got %s", expected, got)
	}
}
