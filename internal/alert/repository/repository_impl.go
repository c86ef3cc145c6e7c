package repository

import (
	"context"
	"time"

	"github.com/agencyhq/opscore/internal/alert/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *domain.BudgetAlert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *repo) HasRecent(ctx context.Context, db *gorm.DB, clientID, serviceID snowflake.ID, level domain.Level, after time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.BudgetAlert{}).
		Where("client_id = ? AND service_id = ? AND alert_type = ? AND created_at > ?",
			clientID, serviceID, level, after).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BudgetAlert, error) {
	var alert domain.BudgetAlert
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListAlertFilter) ([]*domain.BudgetAlert, error) {
	var alerts []*domain.BudgetAlert
	stmt := db.WithContext(ctx).Model(&domain.BudgetAlert{})
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.ServiceID != "" {
		stmt = stmt.Where("service_id = ?", filter.ServiceID)
	}
	if filter.AlertType != domain.LevelNone {
		stmt = stmt.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Active != nil {
		stmt = stmt.Where("is_active = ?", *filter.Active)
	}
	err := stmt.Order("created_at desc, id desc").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, alert *domain.BudgetAlert) error {
	return db.WithContext(ctx).Save(alert).Error
}
