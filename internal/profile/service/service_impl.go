package service

import (
	"context"
	"strings"

	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/profile/domain"
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
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func parseRole(value string) (domain.Role, error) {
	switch domain.Role(strings.TrimSpace(value)) {
	case domain.RoleAdmin:
		return domain.RoleAdmin, nil
	case domain.RoleManager:
		return domain.RoleManager, nil
	case domain.RoleStaff, "":
		return domain.RoleStaff, nil
	default:
		return "", domain.ErrInvalidRole
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (domain.Profile, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.Profile{}, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Profile{}, domain.ErrInvalidEmail
	}

	role, err := parseRole(req.Role)
	if err != nil {
		return domain.Profile{}, err
	}

	now := s.clock.Now()
	profile := domain.Profile{
		ID:        s.genID.Generate(),
		FullName:  name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Profile{}, domain.ErrEmailTaken
		}
		return domain.Profile{}, err
	}

	return profile, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListProfileFilter) ([]domain.Profile, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		profiles = append(profiles, *item)
	}
	return profiles, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Profile{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Profile{}, err
	}
	if item == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProfileRequest) (domain.Profile, error) {
	parsed, err := s.parseID(req.ID)
	if err != nil {
		return domain.Profile{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Profile{}, err
	}
	if item == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return domain.Profile{}, domain.ErrInvalidName
		}
		item.FullName = name
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return domain.Profile{}, err
		}
		item.Role = role
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Profile{}, err
	}

	return *item, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
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

	item.Active = false
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
