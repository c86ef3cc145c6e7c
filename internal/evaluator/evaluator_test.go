package evaluator

import (
	"context"
	"fmt"
	"testing"
	"time"

	alertdomain "github.com/agencyhq/opscore/internal/alert/domain"
	alertrepository "github.com/agencyhq/opscore/internal/alert/repository"
	budgetdomain "github.com/agencyhq/opscore/internal/budget/domain"
	budgetrepository "github.com/agencyhq/opscore/internal/budget/repository"
	clientdomain "github.com/agencyhq/opscore/internal/client/domain"
	"github.com/agencyhq/opscore/internal/clock"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	notificationrepository "github.com/agencyhq/opscore/internal/notification/repository"
	offeringdomain "github.com/agencyhq/opscore/internal/offering/domain"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	profilerepository "github.com/agencyhq/opscore/internal/profile/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	eval  *Evaluator
}

func setupEvaluator(t *testing.T, now time.Time) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&clientdomain.Client{},
		&offeringdomain.Offering{},
		&budgetdomain.Allocation{},
		&alertdomain.BudgetAlert{},
		&profiledomain.Profile{},
		&notificationdomain.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(now)
	eval, err := New(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            fake,
		BudgetRepo:       budgetrepository.Provide(),
		AlertRepo:        alertrepository.Provide(),
		ProfileRepo:      profilerepository.Provide(),
		NotificationRepo: notificationrepository.Provide(),
		Config: Config{
			RunInterval:  time.Hour,
			RunTimeout:   time.Minute,
			DedupWindow:  24 * time.Hour,
			LeaseEnabled: false,
		},
	})
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	return &fixture{db: db, node: node, clock: fake, eval: eval}
}

func (f *fixture) seedClient(t *testing.T, name string) snowflake.ID {
	t.Helper()
	client := &clientdomain.Client{
		ID:     f.node.Generate(),
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", name),
		Status: clientdomain.ClientStatusActive,
	}
	if err := f.db.Create(client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client.ID
}

func (f *fixture) seedOffering(t *testing.T, code, name string) snowflake.ID {
	t.Helper()
	offering := &offeringdomain.Offering{
		ID:     f.node.Generate(),
		Code:   code,
		Name:   name,
		Active: true,
	}
	if err := f.db.Create(offering).Error; err != nil {
		t.Fatalf("seed offering: %v", err)
	}
	return offering.ID
}

func (f *fixture) seedAllocation(t *testing.T, clientID, serviceID snowflake.ID, budget, spending float64) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	allocation := &budgetdomain.Allocation{
		ID:             f.node.Generate(),
		ClientID:       clientID,
		ServiceID:      serviceID,
		MonthlyBudget:  budget,
		ActualSpending: spending,
		StartDate:      now.AddDate(0, -1, 0),
		EndDate:        now.AddDate(0, 1, 0),
	}
	if err := f.db.Create(allocation).Error; err != nil {
		t.Fatalf("seed allocation: %v", err)
	}
	return allocation.ID
}

func (f *fixture) seedProfile(t *testing.T, name string, role profiledomain.Role, active bool) snowflake.ID {
	t.Helper()
	profile := &profiledomain.Profile{
		ID:       f.node.Generate(),
		FullName: name,
		Email:    fmt.Sprintf("%s@agency.example", name),
		Role:     role,
		Active:   active,
	}
	if err := f.db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return profile.ID
}

func (f *fixture) alerts(t *testing.T) []alertdomain.BudgetAlert {
	t.Helper()
	var alerts []alertdomain.BudgetAlert
	if err := f.db.Order("id").Find(&alerts).Error; err != nil {
		t.Fatalf("load alerts: %v", err)
	}
	return alerts
}

func (f *fixture) notifications(t *testing.T) []notificationdomain.Notification {
	t.Helper()
	var notifications []notificationdomain.Notification
	if err := f.db.Order("id").Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return notifications
}

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func TestRunClassifiesThresholds(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)

	cases := []struct {
		code     string
		budget   float64
		spending float64
		level    alertdomain.Level
	}{
		{"under", 1000, 799.99, alertdomain.LevelNone},
		{"warning", 1000, 800, alertdomain.LevelWarning},
		{"critical", 1000, 900, alertdomain.LevelCritical},
		{"exceeded", 1000, 1000, alertdomain.LevelExceeded},
		{"overspent", 1000, 1500, alertdomain.LevelExceeded},
	}
	byService := make(map[snowflake.ID]alertdomain.Level)
	for _, tc := range cases {
		serviceID := f.seedOffering(t, tc.code, tc.code)
		f.seedAllocation(t, clientID, serviceID, tc.budget, tc.spending)
		if tc.level != alertdomain.LevelNone {
			byService[serviceID] = tc.level
		}
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Checked != len(cases) {
		t.Fatalf("expected %d checked, got %d", len(cases), summary.Checked)
	}
	if summary.Alerts != 4 {
		t.Fatalf("expected 4 alerts, got %d", summary.Alerts)
	}
	if len(summary.Failed) != 0 {
		t.Fatalf("expected no failures, got %v", summary.Failed)
	}

	alerts := f.alerts(t)
	if len(alerts) != 4 {
		t.Fatalf("expected 4 alert rows, got %d", len(alerts))
	}
	for _, alert := range alerts {
		want, ok := byService[alert.ServiceID]
		if !ok {
			t.Fatalf("unexpected alert for service %s", alert.ServiceID)
		}
		if alert.AlertType != want {
			t.Fatalf("service %s: expected level %s, got %s", alert.ServiceID, want, alert.AlertType)
		}
		if !alert.IsActive {
			t.Fatalf("expected new alert to be active")
		}
		if alert.DayBucket != "2025-03-15" {
			t.Fatalf("expected day bucket 2025-03-15, got %s", alert.DayBucket)
		}
	}
}

func TestRunFirstMatchWins(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 1500)

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// 150% crosses every threshold but only the highest level is recorded.
	if summary.Alerts != 1 {
		t.Fatalf("expected 1 alert, got %d", summary.Alerts)
	}
	alerts := f.alerts(t)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert row, got %d", len(alerts))
	}
	if alerts[0].AlertType != alertdomain.LevelExceeded {
		t.Fatalf("expected exceeded, got %s", alerts[0].AlertType)
	}
}

func TestRunZeroBudgetNeverAlerts(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "ppc", "PPC")
	f.seedAllocation(t, clientID, serviceID, 0, 500)

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Checked != 1 {
		t.Fatalf("expected 1 checked, got %d", summary.Checked)
	}
	if summary.Alerts != 0 {
		t.Fatalf("expected no alerts, got %d", summary.Alerts)
	}
	if alerts := f.alerts(t); len(alerts) != 0 {
		t.Fatalf("expected no alert rows, got %d", len(alerts))
	}
}

func TestRunDedupWindowSuppressesRecent(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 950)
	f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)

	createdAt := testNow.Add(-2 * time.Hour)
	if err := f.db.Create(&alertdomain.BudgetAlert{
		ID:                  f.node.Generate(),
		ClientID:            clientID,
		ServiceID:           serviceID,
		AlertType:           alertdomain.LevelCritical,
		DayBucket:           alertdomain.DayBucketFor(createdAt),
		ThresholdPercentage: 95,
		Message:             "earlier run",
		IsActive:            true,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}).Error; err != nil {
		t.Fatalf("seed alert: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The crossing is still reported in the summary; no new row or fan-out.
	if summary.Alerts != 1 {
		t.Fatalf("expected 1 alert in summary, got %d", summary.Alerts)
	}
	if alerts := f.alerts(t); len(alerts) != 1 {
		t.Fatalf("expected only the pre-existing alert row, got %d", len(alerts))
	}
	if notifications := f.notifications(t); len(notifications) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifications))
	}
}

func TestRunDedupWindowAllowsStale(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 950)

	createdAt := testNow.Add(-25 * time.Hour)
	if err := f.db.Create(&alertdomain.BudgetAlert{
		ID:                  f.node.Generate(),
		ClientID:            clientID,
		ServiceID:           serviceID,
		AlertType:           alertdomain.LevelCritical,
		DayBucket:           alertdomain.DayBucketFor(createdAt),
		ThresholdPercentage: 95,
		Message:             "yesterday's run",
		IsActive:            true,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}).Error; err != nil {
		t.Fatalf("seed alert: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Alerts != 1 {
		t.Fatalf("expected 1 alert, got %d", summary.Alerts)
	}
	if alerts := f.alerts(t); len(alerts) != 2 {
		t.Fatalf("expected a fresh alert row beside the stale one, got %d", len(alerts))
	}
}

func TestRunDuplicateInsertTreatedAsSkip(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 950)

	// A row outside the sliding window but inside today's bucket trips the
	// unique index, standing in for a concurrent run that won the insert.
	createdAt := testNow.Add(-25 * time.Hour)
	if err := f.db.Create(&alertdomain.BudgetAlert{
		ID:                  f.node.Generate(),
		ClientID:            clientID,
		ServiceID:           serviceID,
		AlertType:           alertdomain.LevelCritical,
		DayBucket:           alertdomain.DayBucketFor(testNow),
		ThresholdPercentage: 95,
		Message:             "concurrent run",
		IsActive:            true,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}).Error; err != nil {
		t.Fatalf("seed alert: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(summary.Failed) != 0 {
		t.Fatalf("duplicate insert must not count as failure, got %v", summary.Failed)
	}
	if alerts := f.alerts(t); len(alerts) != 1 {
		t.Fatalf("expected 1 alert row, got %d", len(alerts))
	}
	if notifications := f.notifications(t); len(notifications) != 0 {
		t.Fatalf("expected no notifications for a skipped duplicate, got %d", len(notifications))
	}
}

func TestRunFansOutToActiveAdminsOnly(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "ppc", "PPC")
	f.seedAllocation(t, clientID, serviceID, 1000, 1200)

	admin1 := f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)
	admin2 := f.seedProfile(t, "grace", profiledomain.RoleAdmin, true)
	f.seedProfile(t, "inactive", profiledomain.RoleAdmin, false)
	f.seedProfile(t, "manager", profiledomain.RoleManager, true)
	deleted := f.seedProfile(t, "gone", profiledomain.RoleAdmin, true)
	if err := f.db.Delete(&profiledomain.Profile{}, "id = ?", deleted).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.NotificationsCreated != 2 {
		t.Fatalf("expected 2 notifications, got %d", summary.NotificationsCreated)
	}

	notifications := f.notifications(t)
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notification rows, got %d", len(notifications))
	}
	recipients := map[snowflake.ID]bool{}
	for _, n := range notifications {
		recipients[n.UserID] = true
		if n.Type != notificationdomain.TypeBudgetAlert {
			t.Fatalf("expected budget_alert type, got %s", n.Type)
		}
		if n.Priority != notificationdomain.PriorityHigh {
			t.Fatalf("exceeded alert must fan out with high priority, got %s", n.Priority)
		}
		if n.IsRead {
			t.Fatalf("new notification must be unread")
		}
	}
	if !recipients[admin1] || !recipients[admin2] {
		t.Fatalf("expected both active admins, got %v", recipients)
	}
}

func TestRunMediumPriorityBelowExceeded(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 850)
	f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)

	if _, err := f.eval.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	notifications := f.notifications(t)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Priority != notificationdomain.PriorityMedium {
		t.Fatalf("warning alert must fan out with medium priority, got %s", notifications[0].Priority)
	}
}

func TestRunEmptyDatabase(t *testing.T) {
	f := setupEvaluator(t, testNow)

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Checked != 0 || summary.Alerts != 0 || summary.NotificationsCreated != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if summary.Details == nil {
		t.Fatalf("details must be non-nil for JSON rendering")
	}
}

func TestRunExpiredAllocationNotScanned(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")

	allocation := &budgetdomain.Allocation{
		ID:             f.node.Generate(),
		ClientID:       clientID,
		ServiceID:      serviceID,
		MonthlyBudget:  1000,
		ActualSpending: 1500,
		StartDate:      testNow.AddDate(0, -2, 0),
		EndDate:        testNow.AddDate(0, 0, -1),
	}
	if err := f.db.Create(allocation).Error; err != nil {
		t.Fatalf("seed allocation: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Checked != 0 {
		t.Fatalf("expired allocation must not be scanned, got %d checked", summary.Checked)
	}
}

func TestRunScanFailureAborts(t *testing.T) {
	f := setupEvaluator(t, testNow)
	if err := f.db.Exec("DROP TABLE budget_allocations").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := f.eval.Run(context.Background())
	if err == nil {
		t.Fatalf("expected scan failure to abort the run")
	}
}

func TestRunAdminFetchFailureKeepsAlert(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 1200)

	if err := f.db.Exec("DROP TABLE profiles").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.NotificationsCreated != 0 {
		t.Fatalf("expected no notifications, got %d", summary.NotificationsCreated)
	}
	if alerts := f.alerts(t); len(alerts) != 1 {
		t.Fatalf("alert must persist even when fan-out fails, got %d rows", len(alerts))
	}
}

func TestRunEndToEndScenario(t *testing.T) {
	f := setupEvaluator(t, testNow)
	acme := f.seedClient(t, "Acme")
	seo := f.seedOffering(t, "seo", "SEO")
	ppc := f.seedOffering(t, "ppc", "PPC")
	f.seedAllocation(t, acme, seo, 2000, 1700)
	f.seedAllocation(t, acme, ppc, 1000, 1200)
	f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)
	f.seedProfile(t, "grace", profiledomain.RoleAdmin, true)

	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Checked != 2 {
		t.Fatalf("expected 2 checked, got %d", summary.Checked)
	}
	if summary.Alerts != 2 {
		t.Fatalf("expected 2 alerts, got %d", summary.Alerts)
	}
	if summary.NotificationsCreated != 4 {
		t.Fatalf("expected 2 alerts x 2 admins = 4 notifications, got %d", summary.NotificationsCreated)
	}

	var exceeded alertdomain.BudgetAlert
	if err := f.db.Where("service_id = ?", ppc).First(&exceeded).Error; err != nil {
		t.Fatalf("load exceeded alert: %v", err)
	}
	wantMsg := "Budget exceeded for Acme / PPC: 120.0% of monthly budget used"
	if exceeded.Message != wantMsg {
		t.Fatalf("expected message %q, got %q", wantMsg, exceeded.Message)
	}

	var warning alertdomain.BudgetAlert
	if err := f.db.Where("service_id = ?", seo).First(&warning).Error; err != nil {
		t.Fatalf("load warning alert: %v", err)
	}
	if warning.AlertType != alertdomain.LevelWarning {
		t.Fatalf("expected warning for SEO at 85%%, got %s", warning.AlertType)
	}
}

func TestRunSecondPassIsQuiet(t *testing.T) {
	f := setupEvaluator(t, testNow)
	clientID := f.seedClient(t, "acme")
	serviceID := f.seedOffering(t, "seo", "SEO")
	f.seedAllocation(t, clientID, serviceID, 1000, 1200)
	f.seedProfile(t, "ada", profiledomain.RoleAdmin, true)

	if _, err := f.eval.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	f.clock.Advance(time.Hour)
	summary, err := f.eval.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if summary.NotificationsCreated != 0 {
		t.Fatalf("second run within the window must not notify, got %d", summary.NotificationsCreated)
	}
	if alerts := f.alerts(t); len(alerts) != 1 {
		t.Fatalf("expected 1 alert row after both runs, got %d", len(alerts))
	}
}
