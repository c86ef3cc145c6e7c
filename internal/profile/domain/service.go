package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Profile, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Profile, error)
	List(ctx context.Context, db *gorm.DB, filter ListProfileFilter) ([]*Profile, error)
	Update(ctx context.Context, db *gorm.DB, profile *Profile) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// FetchActiveAdmins returns active, non-deleted profiles with the admin
	// role. This is the notification fan-out recipient list.
	FetchActiveAdmins(ctx context.Context, db *gorm.DB) ([]Profile, error)
}

type ListProfileFilter struct {
	Role   Role
	Active *bool
}

type CreateProfileRequest struct {
	FullName string
	Email    string
	Role     string
}

type UpdateProfileRequest struct {
	ID       string
	FullName *string
	Role     *string
	Active   *bool
}

type Service interface {
	Create(context.Context, CreateProfileRequest) (Profile, error)
	List(context.Context, ListProfileFilter) ([]Profile, error)
	GetByID(context.Context, string) (Profile, error)
	Update(context.Context, UpdateProfileRequest) (Profile, error)
	Deactivate(context.Context, string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrEmailTaken   = errors.New("email_taken")
)
