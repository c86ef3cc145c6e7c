package seed

import (
	"context"
	"errors"
	"strings"

	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// EnsureDefaultAdmin seeds one active admin profile for startup bootstrap.
// Without at least one active admin the evaluator has nobody to notify.
func EnsureDefaultAdmin(db *gorm.DB, email, fullName string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("seed admin email is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&profiledomain.Profile{}).
			Where("role = ? AND active = ?", profiledomain.RoleAdmin, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		return tx.Create(&profiledomain.Profile{
			ID:       node.Generate(),
			FullName: fullName,
			Email:    email,
			Role:     profiledomain.RoleAdmin,
			Active:   true,
		}).Error
	})
}
