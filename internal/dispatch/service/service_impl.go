package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/dispatch/domain"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	"github.com/agencyhq/opscore/internal/providers/email"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Email            email.Provider
	Repo             domain.Repository
	ProfileRepo      profiledomain.Repository
	NotificationRepo notificationdomain.Repository
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	email            email.Provider
	repo             domain.Repository
	profileRepo      profiledomain.Repository
	notificationRepo notificationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("dispatch.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		email:            p.Email,
		repo:             p.Repo,
		profileRepo:      p.ProfileRepo,
		notificationRepo: p.NotificationRepo,
	}
}

func (s *Service) Send(ctx context.Context, req domain.SendRequest) (domain.SendResult, error) {
	req.To = strings.TrimSpace(req.To)
	req.Subject = strings.TrimSpace(req.Subject)

	if req.To == "" {
		return domain.SendResult{}, domain.ErrInvalidRecipient
	}
	if req.Subject == "" {
		return domain.SendResult{}, domain.ErrInvalidSubject
	}
	if strings.TrimSpace(req.Message) == "" && strings.TrimSpace(req.HTML) == "" {
		return domain.SendResult{}, domain.ErrInvalidMessage
	}

	switch req.Type {
	case domain.ChannelEmail:
		return s.sendEmail(ctx, req)
	case domain.ChannelInApp, "":
		return s.sendInApp(ctx, req)
	default:
		return domain.SendResult{}, domain.ErrInvalidChannel
	}
}

func (s *Service) sendEmail(ctx context.Context, req domain.SendRequest) (domain.SendResult, error) {
	if !strings.Contains(req.To, "@") {
		return domain.SendResult{}, domain.ErrInvalidRecipient
	}

	body := req.HTML
	if body == "" {
		body = fmt.Sprintf("<p>%s</p>", html.EscapeString(req.Message))
	}

	entry := &domain.EmailLog{
		ID:        s.genID.Generate(),
		Recipient: req.To,
		Subject:   req.Subject,
		Status:    domain.EmailStatusSent,
		CreatedAt: s.clock.Now(),
	}

	sendErr := s.email.Send(ctx, []string{req.To}, req.Subject, body)
	if sendErr != nil {
		entry.Status = domain.EmailStatusFailed
		entry.Error = sendErr.Error()
	}

	if err := s.repo.InsertEmailLog(ctx, s.db, entry); err != nil {
		s.log.Error("email log insert failed",
			zap.String("recipient", req.To),
			zap.Error(err),
		)
	}

	if sendErr != nil {
		s.log.Error("email send failed",
			zap.String("recipient", req.To),
			zap.Error(sendErr),
		)
		return domain.SendResult{}, domain.ErrSendFailed
	}

	return domain.SendResult{
		Channel: domain.ChannelEmail,
		ID:      entry.ID.String(),
	}, nil
}

func (s *Service) sendInApp(ctx context.Context, req domain.SendRequest) (domain.SendResult, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, s.db, req.To)
	if err != nil {
		return domain.SendResult{}, err
	}
	if profile == nil {
		return domain.SendResult{}, domain.ErrUnknownRecipient
	}

	notification := &notificationdomain.Notification{
		ID:        s.genID.Generate(),
		UserID:    profile.ID,
		Title:     req.Subject,
		Message:   req.Message,
		Type:      notificationdomain.TypeSystem,
		Priority:  notificationdomain.PriorityMedium,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: s.clock.Now(),
	}
	if err := s.notificationRepo.InsertBatch(ctx, s.db, []*notificationdomain.Notification{notification}); err != nil {
		return domain.SendResult{}, err
	}

	return domain.SendResult{
		Channel: domain.ChannelInApp,
		ID:      notification.ID.String(),
	}, nil
}
