package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Level is the alert severity derived from budget utilization.
type Level string

const (
	LevelNone     Level = ""
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
	LevelExceeded Level = "exceeded"
)

// Utilization thresholds, percent of monthly budget spent.
const (
	WarningThreshold  = 80.0
	CriticalThreshold = 90.0
	ExceededThreshold = 100.0
)

// LevelForUtilization classifies utilization with first-match-wins ordering:
// exceeded before critical before warning. At most one level per evaluation.
func LevelForUtilization(utilization float64) Level {
	switch {
	case utilization >= ExceededThreshold:
		return LevelExceeded
	case utilization >= CriticalThreshold:
		return LevelCritical
	case utilization >= WarningThreshold:
		return LevelWarning
	default:
		return LevelNone
	}
}

// BudgetAlert is a persisted threshold crossing for a client+service budget.
// DayBucket is the UTC date of created_at and participates in the unique
// index (client_id, service_id, alert_type, day_bucket) so concurrent
// evaluator runs cannot double-insert; the sliding dedup window is still
// checked first and carries the 24h semantics.
type BudgetAlert struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID            snowflake.ID `gorm:"not null;index:idx_budget_alerts_dedup,unique" json:"client_id"`
	ServiceID           snowflake.ID `gorm:"not null;index:idx_budget_alerts_dedup,unique" json:"service_id"`
	AlertType           Level        `gorm:"not null;index:idx_budget_alerts_dedup,unique" json:"alert_type"`
	DayBucket           string       `gorm:"not null;index:idx_budget_alerts_dedup,unique" json:"-"`
	ThresholdPercentage float64      `gorm:"not null" json:"threshold_percentage"`
	Message             string       `gorm:"not null" json:"message"`
	IsActive            bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DayBucketFor formats the unique-index time bucket for an alert created at t.
func DayBucketFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
