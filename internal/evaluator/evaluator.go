package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertdomain "github.com/agencyhq/opscore/internal/alert/domain"
	budgetdomain "github.com/agencyhq/opscore/internal/budget/domain"
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/lease"
	"github.com/agencyhq/opscore/internal/metrics"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	"github.com/agencyhq/opscore/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const leaseKey = "opscore:evaluator:run"

var ErrInvalidConfig = errors.New("invalid_evaluator_config")

// AlertComputation is the per-allocation detail returned in a run summary.
type AlertComputation struct {
	ClientID       snowflake.ID `json:"client_id"`
	ServiceID      snowflake.ID `json:"service_id"`
	MonthlyBudget  float64      `json:"monthly_budget"`
	ActualSpending float64      `json:"actual_spending"`
	Utilization    float64      `json:"utilization"`
	AlertLevel     string       `json:"alert_level"`
}

// Summary is the outcome of one evaluator run. Alerts counts threshold
// crossings whether or not a row was inserted; dedup-skipped crossings
// still appear in Details.
type Summary struct {
	Skipped              bool               `json:"skipped,omitempty"`
	Checked              int                `json:"checked"`
	Alerts               int                `json:"alerts"`
	NotificationsCreated int                `json:"notifications_created"`
	Details              []AlertComputation `json:"details"`
	Failed               []snowflake.ID     `json:"failed,omitempty"`
}

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	BudgetRepo       budgetdomain.Repository
	AlertRepo        alertdomain.Repository
	ProfileRepo      profiledomain.Repository
	NotificationRepo notificationdomain.Repository
	Locker           *lease.Locker `optional:"true"`
	Config           Config        `optional:"true"`
}

// Evaluator scans live budget allocations, classifies utilization against
// the warning/critical/exceeded thresholds, persists deduplicated alerts
// and fans notifications out to active admins.
type Evaluator struct {
	db               *gorm.DB
	log              *zap.Logger
	cfg              Config
	genID            *snowflake.Node
	clock            clock.Clock
	budgetRepo       budgetdomain.Repository
	alertRepo        alertdomain.Repository
	profileRepo      profiledomain.Repository
	notificationRepo notificationdomain.Repository
	locker           *lease.Locker
}

func New(p Params) (*Evaluator, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil ||
		p.BudgetRepo == nil || p.AlertRepo == nil || p.ProfileRepo == nil || p.NotificationRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Evaluator{
		db:               p.DB,
		log:              p.Log.Named("evaluator").With(zap.String("component", "budget_evaluator")),
		cfg:              p.Config.withDefaults(),
		genID:            p.GenID,
		clock:            p.Clock,
		budgetRepo:       p.BudgetRepo,
		alertRepo:        p.AlertRepo,
		profileRepo:      p.ProfileRepo,
		notificationRepo: p.NotificationRepo,
		locker:           p.Locker,
	}, nil
}

// Run executes one evaluation pass. The scan failing aborts the whole run;
// per-allocation failures are isolated and reported in Summary.Failed.
func (e *Evaluator) Run(parent context.Context) (Summary, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, e.cfg.RunTimeout)
	defer cancel()

	m := metrics.Evaluator()

	if e.locker != nil && e.cfg.LeaseEnabled {
		token, ok, err := e.locker.TryAcquire(ctx, leaseKey, e.cfg.LeaseTTL)
		switch {
		case err != nil:
			// Lease errors are soft: a broken redis must not stop alerting.
			e.log.Warn("lease acquire failed, running without lease", zap.Error(err))
			m.IncRunError(metrics.EvaluatorErrorTypeLease)
		case !ok:
			e.log.Info("run skipped, lease held by another evaluator")
			m.IncLeaseSkip()
			return Summary{Skipped: true, Details: []AlertComputation{}}, nil
		default:
			defer func() {
				if releaseErr := e.locker.Release(context.WithoutCancel(ctx), leaseKey, token); releaseErr != nil {
					e.log.Warn("lease release failed", zap.Error(releaseErr))
				}
			}()
		}
	}

	now := e.clock.Now()
	summary := Summary{Details: []AlertComputation{}}

	allocations, err := e.budgetRepo.FetchLiveForEvaluation(ctx, e.db, startOfDay(now))
	if err != nil {
		m.IncRunError(metrics.EvaluatorErrorTypeScan)
		m.IncRun("error")
		m.ObserveRunDuration("error", time.Since(start))
		return Summary{}, fmt.Errorf("scan allocations: %w", err)
	}
	summary.Checked = len(allocations)
	m.AddAllocationsChecked(len(allocations))

	var (
		admins       []profiledomain.Profile
		adminsLoaded bool
		pending      []*notificationdomain.Notification
		timedOut     bool
	)

	for _, alloc := range allocations {
		if ctx.Err() != nil {
			timedOut = true
			break
		}

		utilization := alloc.Utilization()
		level := alertdomain.LevelForUtilization(utilization)
		if level == alertdomain.LevelNone {
			if alloc.MonthlyBudget <= 0 && alloc.ActualSpending > 0 {
				e.log.Warn("zero_budget_overspend",
					zap.String("allocation_id", alloc.ID.String()),
					zap.Float64("actual_spending", alloc.ActualSpending),
				)
			}
			continue
		}

		summary.Alerts++
		summary.Details = append(summary.Details, AlertComputation{
			ClientID:       alloc.ClientID,
			ServiceID:      alloc.ServiceID,
			MonthlyBudget:  alloc.MonthlyBudget,
			ActualSpending: alloc.ActualSpending,
			Utilization:    utilization,
			AlertLevel:     string(level),
		})

		recent, err := e.alertRepo.HasRecent(ctx, e.db, alloc.ClientID, alloc.ServiceID, level, now.Add(-e.cfg.DedupWindow))
		if err != nil {
			e.recordAllocationFailure(&summary, alloc, "dedup check failed", err)
			continue
		}
		if recent {
			m.IncDuplicateSkipped(string(level))
			continue
		}

		budgetAlert := &alertdomain.BudgetAlert{
			ID:                  e.genID.Generate(),
			ClientID:            alloc.ClientID,
			ServiceID:           alloc.ServiceID,
			AlertType:           level,
			DayBucket:           alertdomain.DayBucketFor(now),
			ThresholdPercentage: utilization,
			Message:             alertMessage(alloc, level, utilization),
			IsActive:            true,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := e.alertRepo.Insert(ctx, e.db, budgetAlert); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Another run won the insert inside the same day bucket.
				m.IncDuplicateSkipped(string(level))
				continue
			}
			e.recordAllocationFailure(&summary, alloc, "alert insert failed", err)
			continue
		}
		m.IncAlertCreated(string(level))
		e.log.Info("budget alert created",
			zap.String("alert_id", budgetAlert.ID.String()),
			zap.String("client", alloc.ClientName),
			zap.String("service", alloc.ServiceName),
			zap.String("level", string(level)),
			zap.Float64("utilization", utilization),
		)

		if !adminsLoaded {
			admins, err = e.profileRepo.FetchActiveAdmins(ctx, e.db)
			adminsLoaded = true
			if err != nil {
				e.log.Error("admin directory fetch failed, alert persisted without fan-out", zap.Error(err))
				m.IncRunError(metrics.EvaluatorErrorTypeFanout)
				admins = nil
			}
		}

		priority := notificationdomain.PriorityMedium
		if level == alertdomain.LevelExceeded {
			priority = notificationdomain.PriorityHigh
		}
		for _, admin := range admins {
			pending = append(pending, &notificationdomain.Notification{
				ID:       e.genID.Generate(),
				UserID:   admin.ID,
				Title:    fmt.Sprintf("Budget alert: %s / %s", alloc.ClientName, alloc.ServiceName),
				Message:  budgetAlert.Message,
				Type:     notificationdomain.TypeBudgetAlert,
				Priority: priority,
				Metadata: datatypes.JSONMap{
					"alert_id":  budgetAlert.ID.String(),
					"client_id": alloc.ClientID.String(),
				},
				CreatedAt: now,
			})
		}
	}

	if len(pending) > 0 && !timedOut {
		if err := e.notificationRepo.InsertBatch(ctx, e.db, pending); err != nil {
			e.log.Error("notification batch insert failed", zap.Error(err))
			m.IncRunError(metrics.EvaluatorErrorTypeFanout)
		} else {
			summary.NotificationsCreated = len(pending)
			m.AddNotificationsCreated(len(pending))
		}
	}

	outcome := "ok"
	if timedOut {
		outcome = "timeout"
		e.log.Warn("run deadline exceeded, partial summary returned",
			zap.Duration("timeout", e.cfg.RunTimeout),
			zap.Int("checked", summary.Checked),
		)
	}
	m.IncRun(outcome)
	m.ObserveRunDuration(outcome, time.Since(start))

	return summary, nil
}

// RunForever triggers Run on the configured interval until ctx is done.
func (e *Evaluator) RunForever(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.RunInterval)
	defer ticker.Stop()

	for {
		summary, err := e.Run(ctx)
		if err != nil {
			e.log.Warn("evaluator run failed", zap.Error(err))
		} else if !summary.Skipped {
			e.log.Info("evaluator run finished",
				zap.Int("checked", summary.Checked),
				zap.Int("alerts", summary.Alerts),
				zap.Int("notifications_created", summary.NotificationsCreated),
				zap.Int("failed", len(summary.Failed)),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Evaluator) recordAllocationFailure(summary *Summary, alloc budgetdomain.WorkAllocation, msg string, err error) {
	summary.Failed = append(summary.Failed, alloc.ID)
	metrics.Evaluator().IncAllocationFailure()
	e.log.Error(msg,
		zap.String("allocation_id", alloc.ID.String()),
		zap.String("client", alloc.ClientName),
		zap.String("service", alloc.ServiceName),
		zap.Error(err),
	)
}

func alertMessage(alloc budgetdomain.WorkAllocation, level alertdomain.Level, utilization float64) string {
	return fmt.Sprintf("Budget %s for %s / %s: %.1f%% of monthly budget used",
		level, alloc.ClientName, alloc.ServiceName, utilization)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
