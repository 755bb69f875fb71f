package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"employee_number"`
	Name           string `gorm:"type:varchar(128);not null" json:"name"`
	Position       string `gorm:"type:varchar(64)" json:"position"`
	Department     string `gorm:"type:varchar(64)" json:"department"`
	HireDate       *time.Time `json:"hire_date"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductCode string `gorm:"type:varchar(32);uniqueIndex;not null" json:"product_code"`
	Description string `gorm:"type:varchar(128);not null" json:"description"`
	Unit        string `gorm:"type:varchar(16);not null" json:"unit"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	PriceHistory []PriceHistory `gorm:"foreignKey:ProductID" json:"price_history,omitempty"`
}

// PriceHistory rows are append-only. The price of a product never lives on
// the product itself: every read resolves the entry with the latest
// effective date not after the reference date.
type PriceHistory struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     int64           `gorm:"index;not null" json:"product_id"`
	EffectiveDate time.Time       `gorm:"index;not null" json:"effective_date"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Customer struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"customer_number"`
	Name           string `gorm:"type:varchar(128);not null" json:"name"`
	Address        string `gorm:"type:text" json:"address"`
	PaymentTerm    string `gorm:"type:varchar(32)" json:"payment_term"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Sale is the order header. The transaction number is server-issued and
// unique; the idempotency key lets a client re-submit the same draft
// without creating a second sale.
type Sale struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNumber string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_number"`
	IdempotencyKey    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	CustomerID        int64     `gorm:"not null" json:"customer_id"`
	EmployeeID        int64     `gorm:"not null" json:"employee_id"`
	SaleDate          time.Time `gorm:"index;not null" json:"sale_date"`
	CreatedBy         int64     `gorm:"not null" json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Customer *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Employee *Employee    `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Details  []SaleDetail `gorm:"foreignKey:SaleID" json:"details,omitempty"`
}

// SaleDetail deliberately stores no price. Unit price and amount are
// reconstructed from PriceHistory at the sale date on every read.
type SaleDetail struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID    int64 `gorm:"index;not null" json:"sale_id"`
	ProductID int64 `gorm:"not null" json:"product_id"`
	Quantity  int32 `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

const (
	DraftStatusOpen      int32 = 0
	DraftStatusSubmitted int32 = 1
)

// OrderDraft is the sales-order composer: a per-user working order that is
// assembled line by line and then submitted as one transaction.
type OrderDraft struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"index;not null" json:"user_id"`
	CustomerID *int64     `json:"customer_id"`
	EmployeeID *int64     `json:"employee_id"`
	OrderDate  time.Time  `gorm:"not null" json:"order_date"`
	Status     int32      `gorm:"not null;default:0" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Lines []OrderDraftLine `gorm:"foreignKey:DraftID" json:"lines,omitempty"`
}

type OrderDraftLine struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DraftID   int64 `gorm:"index;not null" json:"draft_id"`
	ProductID int64 `gorm:"not null" json:"product_id"`
	Quantity  int32 `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
