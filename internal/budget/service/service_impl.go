package service

import (
	"context"
	"strings"

	"github.com/agencyhq/opscore/internal/budget/domain"
	clientdomain "github.com/agencyhq/opscore/internal/client/domain"
	"github.com/agencyhq/opscore/internal/clock"
	offeringdomain "github.com/agencyhq/opscore/internal/offering/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ClientRepo   clientdomain.Repository
	OfferingRepo offeringdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	clientRepo   clientdomain.Repository
	offeringRepo offeringdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("budget.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		clientRepo:   p.ClientRepo,
		offeringRepo: p.OfferingRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAllocationRequest) (domain.Allocation, error) {
	clientID, err := parseID(req.ClientID)
	if err != nil {
		return domain.Allocation{}, domain.ErrInvalidClient
	}
	serviceID, err := parseID(req.ServiceID)
	if err != nil {
		return domain.Allocation{}, domain.ErrInvalidService
	}
	if req.MonthlyBudget < 0 {
		return domain.Allocation{}, domain.ErrInvalidBudget
	}
	if req.ActualSpending < 0 {
		return domain.Allocation{}, domain.ErrInvalidSpending
	}
	if req.EndDate.Before(req.StartDate) {
		return domain.Allocation{}, domain.ErrInvalidPeriod
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if client == nil {
		return domain.Allocation{}, domain.ErrInvalidClient
	}
	offering, err := s.offeringRepo.FindByID(ctx, s.db, serviceID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if offering == nil {
		return domain.Allocation{}, domain.ErrInvalidService
	}

	now := s.clock.Now()
	allocation := domain.Allocation{
		ID:             s.genID.Generate(),
		ClientID:       clientID,
		ServiceID:      serviceID,
		MonthlyBudget:  req.MonthlyBudget,
		ActualSpending: req.ActualSpending,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &allocation); err != nil {
		return domain.Allocation{}, err
	}

	return allocation, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListAllocationFilter) ([]domain.Allocation, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	allocations := make([]domain.Allocation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		allocations = append(allocations, *item)
	}
	return allocations, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Allocation, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Allocation{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Allocation{}, err
	}
	if item == nil {
		return domain.Allocation{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAllocationRequest) (domain.Allocation, error) {
	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Allocation{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Allocation{}, err
	}
	if item == nil {
		return domain.Allocation{}, domain.ErrNotFound
	}

	if req.MonthlyBudget != nil {
		if *req.MonthlyBudget < 0 {
			return domain.Allocation{}, domain.ErrInvalidBudget
		}
		item.MonthlyBudget = *req.MonthlyBudget
	}
	if req.ActualSpending != nil {
		if *req.ActualSpending < 0 {
			return domain.Allocation{}, domain.ErrInvalidSpending
		}
		item.ActualSpending = *req.ActualSpending
	}
	if req.EndDate != nil {
		if req.EndDate.Before(item.StartDate) {
			return domain.Allocation{}, domain.ErrInvalidPeriod
		}
		item.EndDate = *req.EndDate
	}
	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Allocation{}, err
	}

	return *item, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.SoftDelete(ctx, s.db, parsed)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
