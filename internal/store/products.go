package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
)

const (
	PRODUCT_CACHE_PREFIX    = "products:"
	PRODUCT_PRICE_CACHE_KEY = "products:current-price"
	PRICE_CACHE_TTL         = 5 * time.Minute
)

// ErrNoPrice means no price-history entry is effective at the reference
// date. Callers decide whether that is a validation error (adding a draft
// line) or a zero-amount read (historical views).
var ErrNoPrice = errors.New("product has no effective price")

type ProductStore struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductStore(db *gorm.DB, redisClient *redis.Client) *ProductStore {
	return &ProductStore{db: db, redis: redisClient}
}

func (s *ProductStore) invalidateCaches(ctx context.Context, productIDs ...int64) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, PRODUCT_PRICE_CACHE_KEY)
	for _, id := range productIDs {
		cacheKey := fmt.Sprintf("%s%d", PRODUCT_CACHE_PREFIX, id)
		_ = s.redis.Del(ctx, cacheKey)
	}
}

func (s *ProductStore) List(ctx context.Context, searchTerm *string, isActive *bool, page, pageSize int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Product{})

	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if searchTerm != nil && *searchTerm != "" {
		term := "%" + *searchTerm + "%"
		query = query.Where("product_code LIKE ? OR description LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pageOffset(page, pageSize)
	if err := query.Order("product_code").Offset(offset).Limit(pageSize).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id int64) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	return product, err
}

func (s *ProductStore) GetByCode(ctx context.Context, code string) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("product_code = ?", code).First(&product).Error
	return product, err
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}
	s.invalidateCaches(ctx, product.ID)
	return nil
}

func (s *ProductStore) Update(ctx context.Context, id int64, description, unit *string, isActive *bool) (models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return product, err
	}

	if description != nil {
		product.Description = *description
	}
	if unit != nil {
		product.Unit = *unit
	}
	if isActive != nil {
		product.IsActive = *isActive
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return product, err
	}
	s.invalidateCaches(ctx, product.ID)
	return product, nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.invalidateCaches(ctx, id)
	return nil
}

// AppendPrice adds a price-history entry. History is append-only: there is
// no update or delete path for price rows anywhere in the service.
func (s *ProductStore) AppendPrice(ctx context.Context, productID int64, effectiveDate time.Time, unitPrice decimal.Decimal) (models.PriceHistory, error) {
	entry := models.PriceHistory{
		ID:            uuid.New(),
		ProductID:     productID,
		EffectiveDate: effectiveDate,
		UnitPrice:     unitPrice,
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return entry, err
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return entry, err
	}
	s.invalidateCaches(ctx, productID)
	return entry, nil
}

// History returns all price entries for a product, oldest first.
func (s *ProductStore) History(ctx context.Context, productID int64) ([]models.PriceHistory, error) {
	var entries []models.PriceHistory
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("effective_date").
		Find(&entries).Error
	return entries, err
}

// PriceAt resolves the unit price effective at ref: the entry with the
// greatest effective date not after ref. A nil ref means the globally
// latest entry.
func (s *ProductStore) PriceAt(ctx context.Context, productID int64, ref *time.Time) (decimal.Decimal, error) {
	if ref == nil {
		if cached, ok := s.cachedCurrentPrice(ctx, productID); ok {
			return cached, nil
		}
	}

	var entry models.PriceHistory
	query := s.db.WithContext(ctx).Where("product_id = ?", productID)
	if ref != nil {
		query = query.Where("effective_date <= ?", *ref)
	}
	if err := query.Order("effective_date DESC").First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNoPrice
		}
		return decimal.Zero, err
	}

	if ref == nil {
		s.cacheCurrentPrice(ctx, productID, entry.UnitPrice)
	}
	return entry.UnitPrice, nil
}

// OriginalPrice is the earliest entry, the price the product launched at.
func (s *ProductStore) OriginalPrice(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var entry models.PriceHistory
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("effective_date").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNoPrice
		}
		return decimal.Zero, err
	}
	return entry.UnitPrice, nil
}

func (s *ProductStore) cachedCurrentPrice(ctx context.Context, productID int64) (decimal.Decimal, bool) {
	if s.redis == nil {
		return decimal.Zero, false
	}
	raw, err := s.redis.HGet(ctx, PRODUCT_PRICE_CACHE_KEY, fmt.Sprintf("%d", productID)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	var price decimal.Decimal
	if err := json.Unmarshal([]byte(raw), &price); err != nil {
		return decimal.Zero, false
	}
	return price, true
}

func (s *ProductStore) cacheCurrentPrice(ctx context.Context, productID int64, price decimal.Decimal) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(price)
	if err != nil {
		return
	}
	_ = s.redis.HSet(ctx, PRODUCT_PRICE_CACHE_KEY, fmt.Sprintf("%d", productID), payload)
	_ = s.redis.Expire(ctx, PRODUCT_PRICE_CACHE_KEY, PRICE_CACHE_TTL)
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
