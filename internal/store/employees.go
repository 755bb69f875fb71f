package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
)

type EmployeeStore struct {
	db *gorm.DB
}

func NewEmployeeStore(db *gorm.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func (s *EmployeeStore) List(ctx context.Context, searchTerm *string, isActive *bool, page, pageSize int) ([]models.Employee, int64, error) {
	var employees []models.Employee
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Employee{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if searchTerm != nil && *searchTerm != "" {
		term := "%" + *searchTerm + "%"
		query = query.Where("employee_number LIKE ? OR name LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pageOffset(page, pageSize)
	if err := query.Order("employee_number").Offset(offset).Limit(pageSize).Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (s *EmployeeStore) GetByID(ctx context.Context, id int64) (models.Employee, error) {
	var employee models.Employee
	err := s.db.WithContext(ctx).First(&employee, id).Error
	return employee, err
}

func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	return s.db.WithContext(ctx).Create(employee).Error
}

func (s *EmployeeStore) Update(ctx context.Context, id int64, name, position, department *string, hireDate *time.Time, isActive *bool) (models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return employee, err
	}

	if name != nil {
		employee.Name = *name
	}
	if position != nil {
		employee.Position = *position
	}
	if department != nil {
		employee.Department = *department
	}
	if hireDate != nil {
		employee.HireDate = hireDate
	}
	if isActive != nil {
		employee.IsActive = *isActive
	}

	err := s.db.WithContext(ctx).Save(&employee).Error
	return employee, err
}

func (s *EmployeeStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
