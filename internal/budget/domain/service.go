package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, allocation *Allocation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Allocation, error)
	List(ctx context.Context, db *gorm.DB, filter ListAllocationFilter) ([]*Allocation, error)
	Update(ctx context.Context, db *gorm.DB, allocation *Allocation) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// FetchLiveForEvaluation returns every allocation with deleted_at null and
	// end_date >= the given day, joined with client and service names.
	FetchLiveForEvaluation(ctx context.Context, db *gorm.DB, today time.Time) ([]WorkAllocation, error)
}

type ListAllocationFilter struct {
	ClientID  string
	ServiceID string
	LiveAt    *time.Time
}

type CreateAllocationRequest struct {
	ClientID       string
	ServiceID      string
	MonthlyBudget  float64
	ActualSpending float64
	StartDate      time.Time
	EndDate        time.Time
	Notes          string
}

type UpdateAllocationRequest struct {
	ID             string
	MonthlyBudget  *float64
	ActualSpending *float64
	EndDate        *time.Time
	Notes          *string
}

type Service interface {
	Create(context.Context, CreateAllocationRequest) (Allocation, error)
	List(context.Context, ListAllocationFilter) ([]Allocation, error)
	GetByID(context.Context, string) (Allocation, error)
	Update(context.Context, UpdateAllocationRequest) (Allocation, error)
	Archive(context.Context, string) error
}

var (
	ErrInvalidClient   = errors.New("invalid_client")
	ErrInvalidService  = errors.New("invalid_service")
	ErrInvalidBudget   = errors.New("invalid_budget")
	ErrInvalidSpending = errors.New("invalid_spending")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
