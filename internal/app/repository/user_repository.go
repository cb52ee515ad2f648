package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

type AdminUserRepository interface {
	Create(user *model.AdminUser) error
	FindByID(id uint) (*model.AdminUser, error)
	FindByEmail(email string) (*model.AdminUser, error)
	Update(user *model.AdminUser) error
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *adminUserRepository) Create(user *model.AdminUser) error {
	user.Email = normalizeEmail(user.Email)

	logger.Debug("Creating admin user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create admin user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("Admin user created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *adminUserRepository) FindByID(id uint) (*model.AdminUser, error) {
	logger.Debug("Finding admin user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.AdminUser
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find admin user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) FindByEmail(email string) (*model.AdminUser, error) {
	email = normalizeEmail(email)

	logger.Debug("Finding admin user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.AdminUser
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find admin user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}

	logger.Debug("Admin user found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *adminUserRepository) Update(user *model.AdminUser) error {
	logger.Debug("Updating admin user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update admin user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

type AdminProfileRepository interface {
	Create(profile *model.AdminProfile) error
	FindByUserID(userID uint) (*model.AdminProfile, error)
	Update(profile *model.AdminProfile) error
	TouchLastLogin(userID uint, at time.Time) error
}

type adminProfileRepository struct {
	db *gorm.DB
}

func NewAdminProfileRepository(db *gorm.DB) AdminProfileRepository {
	return &adminProfileRepository{db: db}
}

func (r *adminProfileRepository) Create(profile *model.AdminProfile) error {
	logger.Debug("Creating admin profile in database", map[string]interface{}{
		"user_id": profile.UserID,
		"role":    profile.Role,
	})

	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create admin profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}

	logger.Info("Admin profile provisioned", map[string]interface{}{
		"user_id": profile.UserID,
		"email":   profile.Email,
		"role":    profile.Role,
	})
	return nil
}

func (r *adminProfileRepository) FindByUserID(userID uint) (*model.AdminProfile, error) {
	var profile model.AdminProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *adminProfileRepository) Update(profile *model.AdminProfile) error {
	logger.Debug("Updating admin profile in database", map[string]interface{}{
		"user_id":   profile.UserID,
		"role":      profile.Role,
		"is_active": profile.IsActive,
	})

	if err := r.db.Save(profile).Error; err != nil {
		logger.Error("Failed to update admin profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *adminProfileRepository) TouchLastLogin(userID uint, at time.Time) error {
	if err := r.db.Model(&model.AdminProfile{}).Where("user_id = ?", userID).
		Update("last_login", at).Error; err != nil {
		logger.Error("Failed to update admin last login", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
