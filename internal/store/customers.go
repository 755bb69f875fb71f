package store

import (
	"context"

	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
)

type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) List(ctx context.Context, searchTerm *string, page, pageSize int) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Customer{})
	if searchTerm != nil && *searchTerm != "" {
		term := "%" + *searchTerm + "%"
		query = query.Where("customer_number LIKE ? OR name LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pageOffset(page, pageSize)
	if err := query.Order("customer_number").Offset(offset).Limit(pageSize).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (s *CustomerStore) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).First(&customer, id).Error
	return customer, err
}

func (s *CustomerStore) Create(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *CustomerStore) Update(ctx context.Context, id int64, name, address, paymentTerm *string) (models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return customer, err
	}

	if name != nil {
		customer.Name = *name
	}
	if address != nil {
		customer.Address = *address
	}
	if paymentTerm != nil {
		customer.PaymentTerm = *paymentTerm
	}

	err := s.db.WithContext(ctx).Save(&customer).Error
	return customer, err
}

func (s *CustomerStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
