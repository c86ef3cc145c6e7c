package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agencyhq/opscore/internal/alert/domain"
	alertrepository "github.com/agencyhq/opscore/internal/alert/repository"
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAlertService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.BudgetAlert{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  alertrepository.Provide(),
	})
	return svc, db, node, fake
}

func seedAlert(t *testing.T, db *gorm.DB, node *snowflake.Node, level domain.Level, active bool) domain.BudgetAlert {
	t.Helper()
	alert := domain.BudgetAlert{
		ID:                  node.Generate(),
		ClientID:            node.Generate(),
		ServiceID:           node.Generate(),
		AlertType:           level,
		DayBucket:           "2025-03-15",
		ThresholdPercentage: 95,
		Message:             "test alert",
		IsActive:            active,
	}
	require.NoError(t, db.Create(&alert).Error)
	return alert
}

func TestListFiltersByLevelAndActive(t *testing.T) {
	svc, db, node, _ := setupAlertService(t)
	seedAlert(t, db, node, domain.LevelWarning, true)
	critical := seedAlert(t, db, node, domain.LevelCritical, true)
	seedAlert(t, db, node, domain.LevelCritical, false)

	active := true
	alerts, err := svc.List(context.Background(), domain.ListAlertFilter{
		AlertType: domain.LevelCritical,
		Active:    &active,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, critical.ID, alerts[0].ID)
}

func TestDismissDeactivates(t *testing.T) {
	svc, db, node, fake := setupAlertService(t)
	alert := seedAlert(t, db, node, domain.LevelExceeded, true)

	fake.Advance(time.Minute)
	require.NoError(t, svc.Dismiss(context.Background(), alert.ID.String()))

	var stored domain.BudgetAlert
	require.NoError(t, db.First(&stored, "id = ?", alert.ID).Error)
	require.False(t, stored.IsActive)

	// Dismissing twice is a no-op.
	require.NoError(t, svc.Dismiss(context.Background(), alert.ID.String()))
}

func TestDismissUnknownAlert(t *testing.T) {
	svc, _, node, _ := setupAlertService(t)

	err := svc.Dismiss(context.Background(), node.Generate().String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDismissInvalidID(t *testing.T) {
	svc, _, _, _ := setupAlertService(t)

	require.ErrorIs(t, svc.Dismiss(context.Background(), "not-a-snowflake"), domain.ErrInvalidID)
	_, err := svc.GetByID(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}
