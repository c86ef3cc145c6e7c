package repository

import (
	"context"

	"github.com/agencyhq/opscore/internal/dispatch/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEmailLog(ctx context.Context, db *gorm.DB, log *domain.EmailLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) ListEmailLogs(ctx context.Context, db *gorm.DB, limit int) ([]*domain.EmailLog, error) {
	var logs []*domain.EmailLog
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
