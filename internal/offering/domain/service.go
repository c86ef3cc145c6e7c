package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, offering *Offering) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Offering, error)
	List(ctx context.Context, db *gorm.DB, filter ListOfferingFilter) ([]*Offering, error)
	Update(ctx context.Context, db *gorm.DB, offering *Offering) error
}

type ListOfferingFilter struct {
	Name   string
	Code   string
	Active *bool
}

type CreateOfferingRequest struct {
	Code        string
	Name        string
	Description string
}

type UpdateOfferingRequest struct {
	ID          string
	Name        *string
	Description *string
	Active      *bool
}

type Service interface {
	Create(context.Context, CreateOfferingRequest) (Offering, error)
	List(context.Context, ListOfferingFilter) ([]Offering, error)
	GetByID(context.Context, string) (Offering, error)
	Update(context.Context, UpdateOfferingRequest) (Offering, error)
}

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
	ErrCodeTaken   = errors.New("code_taken")
)
