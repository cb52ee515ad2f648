package model

import (
	"time"
)

type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleStaff      AdminRole = "staff"
)

// AdminUser holds back-office credentials.
type AdminUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName  string    `gorm:"type:varchar(100)" json:"display_name"`
	Disabled     bool      `gorm:"not null" json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// AdminProfile is provisioned on a user's first successful sign-in.
type AdminProfile struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Email       string     `gorm:"type:varchar(255);not null" json:"email"`
	DisplayName string     `gorm:"type:varchar(100)" json:"display_name"`
	Role        AdminRole  `gorm:"type:varchar(20);not null" json:"role"`
	Permissions StringList `json:"permissions"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}
