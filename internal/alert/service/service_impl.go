package service

import (
	"context"
	"strings"

	"github.com/agencyhq/opscore/internal/alert/domain"
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("alert.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListAlertFilter) ([]domain.BudgetAlert, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.BudgetAlert, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		alerts = append(alerts, *item)
	}
	return alerts, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.BudgetAlert, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.BudgetAlert{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.BudgetAlert{}, err
	}
	if item == nil {
		return domain.BudgetAlert{}, domain.ErrNotFound
	}

	return *item, nil
}

// Dismiss flips is_active off. The evaluator never mutates alerts, so the
// only contended field is this one.
func (s *Service) Dismiss(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if !item.IsActive {
		return nil
	}

	item.IsActive = false
	item.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, item)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
