package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saleshub-system/internal/audit"
	"saleshub-system/internal/database/models"
)

var (
	ErrDraftSubmitted  = errors.New("draft has already been submitted")
	ErrMissingCustomer = errors.New("a customer must be selected")
	ErrMissingEmployee = errors.New("an employee must be selected")
	ErrNoLines         = errors.New("order must have at least one line item")
)

// DraftLine is a composer line with its prices resolved at read time.
type DraftLine struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"product_id"`
	ProductCode       string          `json:"product_code"`
	Description       string          `json:"description"`
	Unit              string          `json:"unit"`
	Quantity          int32           `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	OriginalUnitPrice decimal.Decimal `json:"original_unit_price"`
	Amount            decimal.Decimal `json:"amount"`
}

type DraftView struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	CustomerID *int64          `json:"customer_id"`
	EmployeeID *int64          `json:"employee_id"`
	OrderDate  time.Time       `json:"order_date"`
	Status     int32           `json:"status"`
	Lines      []DraftLine     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

type SaleLine struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type SaleView struct {
	ID                int64           `json:"id"`
	TransactionNumber string          `json:"transaction_number"`
	CustomerID        int64           `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	EmployeeID        int64           `json:"employee_id"`
	EmployeeName      string          `json:"employee_name"`
	SaleDate          time.Time       `json:"sale_date"`
	Lines             []SaleLine      `json:"lines"`
	Total             decimal.Decimal `json:"total"`
}

type SalesStore struct {
	db        *gorm.DB
	products  *ProductStore
	publisher audit.Publisher
}

func NewSalesStore(db *gorm.DB, products *ProductStore, publisher audit.Publisher) *SalesStore {
	return &SalesStore{db: db, products: products, publisher: publisher}
}

func (s *SalesStore) publish(ctx context.Context, action audit.Action, sale models.Sale, actorID int64) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, audit.Event{
		Action:            action,
		SaleID:            sale.ID,
		TransactionNumber: sale.TransactionNumber,
		ActorID:           actorID,
		OccurredAt:        time.Now(),
	})
}

// --- Order drafts (the composer) ---

func (s *SalesStore) CreateDraft(ctx context.Context, userID int64, orderDate time.Time) (models.OrderDraft, error) {
	draft := models.OrderDraft{
		UserID:    userID,
		OrderDate: orderDate,
		Status:    models.DraftStatusOpen,
	}
	err := s.db.WithContext(ctx).Create(&draft).Error
	return draft, err
}

func (s *SalesStore) openDraft(ctx context.Context, draftID, userID int64) (models.OrderDraft, error) {
	var draft models.OrderDraft
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", draftID, userID).
		First(&draft).Error
	if err != nil {
		return draft, err
	}
	if draft.Status != models.DraftStatusOpen {
		return draft, ErrDraftSubmitted
	}
	return draft, nil
}

func (s *SalesStore) UpdateDraft(ctx context.Context, draftID, userID int64, customerID, employeeID *int64, orderDate *time.Time) (DraftView, error) {
	draft, err := s.openDraft(ctx, draftID, userID)
	if err != nil {
		return DraftView{}, err
	}

	if customerID != nil {
		var customer models.Customer
		if err := s.db.WithContext(ctx).First(&customer, *customerID).Error; err != nil {
			return DraftView{}, err
		}
		draft.CustomerID = customerID
	}
	if employeeID != nil {
		var employee models.Employee
		if err := s.db.WithContext(ctx).First(&employee, *employeeID).Error; err != nil {
			return DraftView{}, err
		}
		draft.EmployeeID = employeeID
	}
	if orderDate != nil {
		draft.OrderDate = *orderDate
	}

	if err := s.db.WithContext(ctx).Save(&draft).Error; err != nil {
		return DraftView{}, err
	}
	return s.GetDraft(ctx, draftID, userID)
}

// AddLine appends a line item. The product must resolve to a current price
// at the draft's order date, which is also where the seeded amount
// (price x quantity) comes from.
func (s *SalesStore) AddLine(ctx context.Context, draftID, userID, productID int64, quantity int32) (DraftView, error) {
	draft, err := s.openDraft(ctx, draftID, userID)
	if err != nil {
		return DraftView{}, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return DraftView{}, err
	}

	if quantity < 1 {
		quantity = 1
	}

	ref := draft.OrderDate
	if _, err := s.products.PriceAt(ctx, productID, &ref); err != nil {
		return DraftView{}, err
	}

	line := models.OrderDraftLine{
		DraftID:   draft.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.db.WithContext(ctx).Create(&line).Error; err != nil {
		return DraftView{}, err
	}
	return s.GetDraft(ctx, draftID, userID)
}

// UpdateLine edits an existing line. The amount is recomputed from the
// line's own current price, never from a price captured at add time.
func (s *SalesStore) UpdateLine(ctx context.Context, draftID, userID, lineID int64, productID *int64, quantity *int32) (DraftView, error) {
	draft, err := s.openDraft(ctx, draftID, userID)
	if err != nil {
		return DraftView{}, err
	}

	var line models.OrderDraftLine
	if err := s.db.WithContext(ctx).
		Where("id = ? AND draft_id = ?", lineID, draft.ID).
		First(&line).Error; err != nil {
		return DraftView{}, err
	}

	if productID != nil {
		var product models.Product
		if err := s.db.WithContext(ctx).First(&product, *productID).Error; err != nil {
			return DraftView{}, err
		}
		ref := draft.OrderDate
		if _, err := s.products.PriceAt(ctx, *productID, &ref); err != nil {
			return DraftView{}, err
		}
		line.ProductID = *productID
	}
	if quantity != nil {
		if *quantity < 1 {
			*quantity = 1
		}
		line.Quantity = *quantity
	}

	if err := s.db.WithContext(ctx).Save(&line).Error; err != nil {
		return DraftView{}, err
	}
	return s.GetDraft(ctx, draftID, userID)
}

func (s *SalesStore) RemoveLine(ctx context.Context, draftID, userID, lineID int64) (DraftView, error) {
	draft, err := s.openDraft(ctx, draftID, userID)
	if err != nil {
		return DraftView{}, err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND draft_id = ?", lineID, draft.ID).
		Delete(&models.OrderDraftLine{})
	if result.Error != nil {
		return DraftView{}, result.Error
	}
	if result.RowsAffected == 0 {
		return DraftView{}, gorm.ErrRecordNotFound
	}
	return s.GetDraft(ctx, draftID, userID)
}

// GetDraft resolves every line's current price at the draft date and the
// running total, the sum of line amounts.
func (s *SalesStore) GetDraft(ctx context.Context, draftID, userID int64) (DraftView, error) {
	var draft models.OrderDraft
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", draftID, userID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_draft_lines.id") }).
		Preload("Lines.Product").
		First(&draft).Error
	if err != nil {
		return DraftView{}, err
	}

	view := DraftView{
		ID:         draft.ID,
		UserID:     draft.UserID,
		CustomerID: draft.CustomerID,
		EmployeeID: draft.EmployeeID,
		OrderDate:  draft.OrderDate,
		Status:     draft.Status,
		Lines:      make([]DraftLine, 0, len(draft.Lines)),
		Total:      decimal.Zero,
	}

	ref := draft.OrderDate
	for _, line := range draft.Lines {
		unitPrice, err := s.products.PriceAt(ctx, line.ProductID, &ref)
		if err != nil && !errors.Is(err, ErrNoPrice) {
			return DraftView{}, err
		}
		originalPrice, err := s.products.OriginalPrice(ctx, line.ProductID)
		if err != nil && !errors.Is(err, ErrNoPrice) {
			return DraftView{}, err
		}

		amount := unitPrice.Mul(decimal.NewFromInt32(line.Quantity))
		lv := DraftLine{
			ID:                line.ID,
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			UnitPrice:         unitPrice,
			OriginalUnitPrice: originalPrice,
			Amount:            amount,
		}
		if line.Product != nil {
			lv.ProductCode = line.Product.ProductCode
			lv.Description = line.Product.Description
			lv.Unit = line.Product.Unit
		}
		view.Lines = append(view.Lines, lv)
		view.Total = view.Total.Add(amount)
	}

	return view, nil
}

// --- Submission ---

// Submit turns a complete draft into a sale header plus details in a single
// transaction; either everything is persisted or nothing is. Re-submitting
// with the same idempotency key returns the sale created the first time.
func (s *SalesStore) Submit(ctx context.Context, draftID, userID int64, idempotencyKey string) (SaleView, error) {
	var existing models.Sale
	err := s.db.WithContext(ctx).
		Where("idempotency_key = ?", idempotencyKey).
		First(&existing).Error
	if err == nil {
		return s.Get(ctx, existing.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SaleView{}, err
	}

	var draft models.OrderDraft
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", draftID, userID).
		Preload("Lines").
		First(&draft).Error; err != nil {
		return SaleView{}, err
	}

	if draft.Status != models.DraftStatusOpen {
		return SaleView{}, ErrDraftSubmitted
	}
	if draft.CustomerID == nil {
		return SaleView{}, ErrMissingCustomer
	}
	if draft.EmployeeID == nil {
		return SaleView{}, ErrMissingEmployee
	}
	if len(draft.Lines) == 0 {
		return SaleView{}, ErrNoLines
	}

	sale := models.Sale{
		TransactionNumber: uuid.NewString(),
		IdempotencyKey:    idempotencyKey,
		CustomerID:        *draft.CustomerID,
		EmployeeID:        *draft.EmployeeID,
		SaleDate:          draft.OrderDate,
		CreatedBy:         userID,
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return SaleView{}, err
	}

	for _, line := range draft.Lines {
		detail := models.SaleDetail{
			SaleID:    sale.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if err := tx.Create(&detail).Error; err != nil {
			tx.Rollback()
			return SaleView{}, err
		}
	}

	if err := tx.Model(&models.OrderDraft{}).
		Where("id = ?", draft.ID).
		Update("status", models.DraftStatusSubmitted).Error; err != nil {
		tx.Rollback()
		return SaleView{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return SaleView{}, err
	}

	s.publish(ctx, audit.ActionCreated, sale, userID)

	return s.Get(ctx, sale.ID)
}

// --- Sale reads ---

func (s *SalesStore) Get(ctx context.Context, id int64) (SaleView, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Employee").
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("sale_details.id") }).
		Preload("Details.Product").
		First(&sale, id).Error
	if err != nil {
		return SaleView{}, err
	}
	return s.buildView(ctx, sale)
}

func (s *SalesStore) List(ctx context.Context, from, to *time.Time, page, pageSize int) ([]SaleView, int64, error) {
	var sales []models.Sale
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Sale{})
	if from != nil {
		query = query.Where("sale_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("sale_date <= ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pageOffset(page, pageSize)
	err := query.
		Preload("Customer").
		Preload("Employee").
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("sale_details.id") }).
		Preload("Details.Product").
		Order("sale_date DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]SaleView, 0, len(sales))
	for _, sale := range sales {
		view, err := s.buildView(ctx, sale)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *SalesStore) Update(ctx context.Context, id, actorID int64, customerID, employeeID *int64, saleDate *time.Time) (SaleView, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		return SaleView{}, err
	}

	if customerID != nil {
		var customer models.Customer
		if err := s.db.WithContext(ctx).First(&customer, *customerID).Error; err != nil {
			return SaleView{}, err
		}
		sale.CustomerID = *customerID
	}
	if employeeID != nil {
		var employee models.Employee
		if err := s.db.WithContext(ctx).First(&employee, *employeeID).Error; err != nil {
			return SaleView{}, err
		}
		sale.EmployeeID = *employeeID
	}
	if saleDate != nil {
		sale.SaleDate = *saleDate
	}

	if err := s.db.WithContext(ctx).Save(&sale).Error; err != nil {
		return SaleView{}, err
	}

	s.publish(ctx, audit.ActionUpdated, sale, actorID)
	return s.Get(ctx, id)
}

func (s *SalesStore) Delete(ctx context.Context, id, actorID int64) error {
	var sale models.Sale
	if err := s.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("sale_id = ?", id).Delete(&models.SaleDetail{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Sale{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.publish(ctx, audit.ActionDeleted, sale, actorID)
	return nil
}

// buildView reconstructs the historical prices for a sale: each detail gets
// the unit price effective at the sale date. Amounts are never read from
// storage because they are never written there.
func (s *SalesStore) buildView(ctx context.Context, sale models.Sale) (SaleView, error) {
	view := SaleView{
		ID:                sale.ID,
		TransactionNumber: sale.TransactionNumber,
		CustomerID:        sale.CustomerID,
		EmployeeID:        sale.EmployeeID,
		SaleDate:          sale.SaleDate,
		Lines:             make([]SaleLine, 0, len(sale.Details)),
		Total:             decimal.Zero,
	}
	if sale.Customer != nil {
		view.CustomerName = sale.Customer.Name
	}
	if sale.Employee != nil {
		view.EmployeeName = sale.Employee.Name
	}

	ref := sale.SaleDate
	for _, detail := range sale.Details {
		unitPrice, err := s.products.PriceAt(ctx, detail.ProductID, &ref)
		if err != nil && !errors.Is(err, ErrNoPrice) {
			return SaleView{}, err
		}

		amount := unitPrice.Mul(decimal.NewFromInt32(detail.Quantity))
		lv := SaleLine{
			ID:        detail.ID,
			ProductID: detail.ProductID,
			Quantity:  detail.Quantity,
			UnitPrice: unitPrice,
			Amount:    amount,
		}
		if detail.Product != nil {
			lv.ProductCode = detail.Product.ProductCode
			lv.Description = detail.Product.Description
			lv.Unit = detail.Product.Unit
		}
		view.Lines = append(view.Lines, lv)
		view.Total = view.Total.Add(amount)
	}

	return view, nil
}
