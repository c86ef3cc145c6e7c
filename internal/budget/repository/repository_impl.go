package repository

import (
	"context"
	"time"

	"github.com/agencyhq/opscore/internal/budget/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, allocation *domain.Allocation) error {
	return db.WithContext(ctx).Create(allocation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Allocation, error) {
	var allocation domain.Allocation
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&allocation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &allocation, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListAllocationFilter) ([]*domain.Allocation, error) {
	var allocations []*domain.Allocation
	stmt := db.WithContext(ctx).Model(&domain.Allocation{})
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.ServiceID != "" {
		stmt = stmt.Where("service_id = ?", filter.ServiceID)
	}
	if filter.LiveAt != nil {
		stmt = stmt.Where("end_date >= ?", *filter.LiveAt)
	}
	err := stmt.Order("created_at desc, id desc").Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, allocation *domain.Allocation) error {
	return db.WithContext(ctx).Save(allocation).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Allocation{}, "id = ?", id).Error
}

func (r *repo) FetchLiveForEvaluation(ctx context.Context, db *gorm.DB, today time.Time) ([]domain.WorkAllocation, error) {
	var allocations []domain.WorkAllocation
	err := db.WithContext(ctx).Raw(
		`SELECT b.id, b.client_id, b.service_id,
		        c.name AS client_name, s.name AS service_name,
		        b.monthly_budget, b.actual_spending
		 FROM budget_allocations b
		 JOIN clients c ON c.id = b.client_id
		 JOIN services s ON s.id = b.service_id
		 WHERE b.deleted_at IS NULL
		   AND b.end_date >= ?
		 ORDER BY b.id`,
		today,
	).Scan(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}
