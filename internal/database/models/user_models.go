package models

import (
	"time"

	"saleshub-system/internal/permissions"
)

type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email       string `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `gorm:"type:varchar(128)" json:"display_name"`
	IsAdmin     bool   `gorm:"not null;default:false" json:"is_admin"`
	IsBlocked   bool   `gorm:"not null;default:false" json:"is_blocked"`
	Permissions permissions.Set `gorm:"type:text" json:"permissions"`
	LastLogin   *time.Time      `json:"last_login"`
	CreatedAt   *time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   *time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
