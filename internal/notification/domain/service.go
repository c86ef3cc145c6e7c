package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertBatch writes all notifications in a single batch statement.
	InsertBatch(ctx context.Context, db *gorm.DB, notifications []*Notification) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, filter ListNotificationFilter) ([]*Notification, error)
	Update(ctx context.Context, db *gorm.DB, notification *Notification) error
}

type ListNotificationFilter struct {
	UserID string
	Unread *bool
	Type   Type
	Limit  int
}

type Service interface {
	List(context.Context, ListNotificationFilter) ([]Notification, error)
	MarkRead(context.Context, string) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
