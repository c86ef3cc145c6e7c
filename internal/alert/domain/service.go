package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert persists an alert. A unique-index violation means another run
	// already inserted the same (client, service, level, day) and is
	// surfaced unchanged so the caller can treat it as a dedup skip.
	Insert(ctx context.Context, db *gorm.DB, alert *BudgetAlert) error

	// HasRecent reports whether an alert with the same client, service and
	// level exists with created_at after the given instant.
	HasRecent(ctx context.Context, db *gorm.DB, clientID, serviceID snowflake.ID, level Level, after time.Time) (bool, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BudgetAlert, error)
	List(ctx context.Context, db *gorm.DB, filter ListAlertFilter) ([]*BudgetAlert, error)
	Update(ctx context.Context, db *gorm.DB, alert *BudgetAlert) error
}

type ListAlertFilter struct {
	ClientID  string
	ServiceID string
	AlertType Level
	Active    *bool
}

type Service interface {
	List(context.Context, ListAlertFilter) ([]BudgetAlert, error)
	GetByID(context.Context, string) (BudgetAlert, error)
	Dismiss(context.Context, string) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
