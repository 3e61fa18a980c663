package database

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/membership"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/utils"
)

// SeedSuperAdmin ensures a bootstrap super admin account exists. A no-op
// when the seed password is unset or the account is already present.
func SeedSuperAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.SuperAdminEmail == "" || cfg.SuperAdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.SuperAdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	membershipID := membership.FormatMembershipID(1)
	now := time.Now()

	admin := models.User{
		Email:        cfg.SuperAdminEmail,
		Phone:        cfg.SuperAdminPhone,
		PasswordHash: hash,
		FullName:     "Admin User",
		Address:      "Kathmandu, Nepal",
		Institution:  "ANNFSU Central Office",
		Committee:    "central",
		Position:     "System Administrator",
		Role:         models.RoleSuperAdmin,
		Status:       models.StatusApproved,
		MembershipID: &membershipID,
		IssueDate:    &now,
	}

	return db.Create(&admin).Error
}
