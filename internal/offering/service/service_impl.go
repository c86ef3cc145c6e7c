package service

import (
	"context"
	"strings"

	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/offering/domain"
	"github.com/agencyhq/opscore/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("offering.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOfferingRequest) (domain.Offering, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Offering{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Offering{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	offering := domain.Offering{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &offering); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Offering{}, domain.ErrCodeTaken
		}
		return domain.Offering{}, err
	}

	return offering, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListOfferingFilter) ([]domain.Offering, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	offerings := make([]domain.Offering, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		offerings = append(offerings, *item)
	}
	return offerings, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Offering, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Offering{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Offering{}, err
	}
	if item == nil {
		return domain.Offering{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOfferingRequest) (domain.Offering, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Offering{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Offering{}, err
	}
	if item == nil {
		return domain.Offering{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Offering{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Offering{}, err
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
