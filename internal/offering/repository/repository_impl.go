package repository

import (
	"context"

	"github.com/agencyhq/opscore/internal/offering/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, offering *domain.Offering) error {
	return db.WithContext(ctx).Create(offering).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Offering, error) {
	var offering domain.Offering
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&offering).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListOfferingFilter) ([]*domain.Offering, error) {
	var offerings []*domain.Offering
	stmt := db.WithContext(ctx).Model(&domain.Offering{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	err := stmt.Order("name asc").Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, offering *domain.Offering) error {
	return db.WithContext(ctx).Save(offering).Error
}
