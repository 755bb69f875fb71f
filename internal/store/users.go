package store

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
	"saleshub-system/internal/permissions"
)

var (
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserBlocked        = errors.New("account is blocked")
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Register(ctx context.Context, username, email, password, displayName string) (models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		return models.User{}, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:    username,
		Email:       email,
		Password:    string(pwHash),
		DisplayName: displayName,
		Permissions: permissions.Set{},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return models.User{}, ErrUserBlocked
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

// ListAccounts returns every account with its profile and permission data
// merged, the view the user-administration screen works from.
func (s *UserStore) ListAccounts(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, err
}

// UpdateAccess rewrites a target account's permission set, admin flag and
// blocked flag. Only fields the caller supplied are touched.
func (s *UserStore) UpdateAccess(ctx context.Context, id int64, perms *permissions.Set, isAdmin, isBlocked *bool) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return user, err
	}

	if perms != nil {
		user.Permissions = *perms
	}
	if isAdmin != nil {
		user.IsAdmin = *isAdmin
	}
	if isBlocked != nil {
		user.IsBlocked = *isBlocked
	}

	err := s.db.WithContext(ctx).Save(&user).Error
	return user, err
}
