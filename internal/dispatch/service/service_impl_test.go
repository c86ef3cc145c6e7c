package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/dispatch/domain"
	dispatchrepository "github.com/agencyhq/opscore/internal/dispatch/repository"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	notificationrepository "github.com/agencyhq/opscore/internal/notification/repository"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	profilerepository "github.com/agencyhq/opscore/internal/profile/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type providerStub struct {
	sent []string
	err  error
}

func (p *providerStub) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, to[0])
	return nil
}

func setupDispatch(t *testing.T, provider *providerStub) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.EmailLog{},
		&profiledomain.Profile{},
		&notificationdomain.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            clock.NewFakeClock(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)),
		Email:            provider,
		Repo:             dispatchrepository.Provide(),
		ProfileRepo:      profilerepository.Provide(),
		NotificationRepo: notificationrepository.Provide(),
	})
	return svc, db, node
}

func TestSendEmailLogsAttempt(t *testing.T) {
	provider := &providerStub{}
	svc, db, _ := setupDispatch(t, provider)

	result, err := svc.Send(context.Background(), domain.SendRequest{
		To:      "ops@agency.example",
		Subject: "Weekly budget digest",
		Message: "All budgets healthy.",
		Type:    domain.ChannelEmail,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Channel != domain.ChannelEmail {
		t.Fatalf("expected email channel, got %s", result.Channel)
	}
	if len(provider.sent) != 1 || provider.sent[0] != "ops@agency.example" {
		t.Fatalf("expected one delivery, got %v", provider.sent)
	}

	var logs []domain.EmailLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 email log, got %d", len(logs))
	}
	if logs[0].Status != domain.EmailStatusSent {
		t.Fatalf("expected sent status, got %s", logs[0].Status)
	}
}

func TestSendEmailFailureStillLogged(t *testing.T) {
	provider := &providerStub{err: errors.New("smtp unreachable")}
	svc, db, _ := setupDispatch(t, provider)

	_, err := svc.Send(context.Background(), domain.SendRequest{
		To:      "ops@agency.example",
		Subject: "Weekly budget digest",
		Message: "All budgets healthy.",
		Type:    domain.ChannelEmail,
	})
	if !errors.Is(err, domain.ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}

	var logs []domain.EmailLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("failed attempt must still be logged, got %d rows", len(logs))
	}
	if logs[0].Status != domain.EmailStatusFailed {
		t.Fatalf("expected failed status, got %s", logs[0].Status)
	}
	if logs[0].Error == "" {
		t.Fatalf("expected provider error recorded on the log row")
	}
}

func TestSendInAppResolvesProfile(t *testing.T) {
	svc, db, node := setupDispatch(t, &providerStub{})

	profile := &profiledomain.Profile{
		ID:       node.Generate(),
		FullName: "Ada",
		Email:    "ada@agency.example",
		Role:     profiledomain.RoleAdmin,
		Active:   true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	result, err := svc.Send(context.Background(), domain.SendRequest{
		To:      "ada@agency.example",
		Subject: "Heads up",
		Message: "Check the Acme budget.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Channel != domain.ChannelInApp {
		t.Fatalf("expected in_app channel, got %s", result.Channel)
	}

	var notifications []notificationdomain.Notification
	if err := db.Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].UserID != profile.ID {
		t.Fatalf("notification addressed to %s, want %s", notifications[0].UserID, profile.ID)
	}
	if notifications[0].Type != notificationdomain.TypeSystem {
		t.Fatalf("expected system type, got %s", notifications[0].Type)
	}
}

func TestSendInAppUnknownRecipient(t *testing.T) {
	svc, _, _ := setupDispatch(t, &providerStub{})

	_, err := svc.Send(context.Background(), domain.SendRequest{
		To:      "nobody@agency.example",
		Subject: "Heads up",
		Message: "hello",
	})
	if !errors.Is(err, domain.ErrUnknownRecipient) {
		t.Fatalf("expected ErrUnknownRecipient, got %v", err)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, _ := setupDispatch(t, &providerStub{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.SendRequest
		want error
	}{
		{"missing recipient", domain.SendRequest{Subject: "s", Message: "m"}, domain.ErrInvalidRecipient},
		{"missing subject", domain.SendRequest{To: "a@b.c", Message: "m"}, domain.ErrInvalidSubject},
		{"missing body", domain.SendRequest{To: "a@b.c", Subject: "s"}, domain.ErrInvalidMessage},
		{"bad channel", domain.SendRequest{To: "a@b.c", Subject: "s", Message: "m", Type: "pigeon"}, domain.ErrInvalidChannel},
		{"bad email address", domain.SendRequest{To: "not-an-email", Subject: "s", Message: "m", Type: domain.ChannelEmail}, domain.ErrInvalidRecipient},
	}

	for _, tc := range cases {
		if _, err := svc.Send(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
