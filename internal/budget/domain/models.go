package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Allocation is a client+service monthly budget with tracked actual spending.
// The evaluator only reads allocations; spending is updated by time-entry
// rollups and the CRUD surface.
type Allocation struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	ClientID       snowflake.ID   `gorm:"not null;index" json:"client_id"`
	ServiceID      snowflake.ID   `gorm:"not null;index" json:"service_id"`
	MonthlyBudget  float64        `gorm:"not null;default:0" json:"monthly_budget"`
	ActualSpending float64        `gorm:"not null;default:0" json:"actual_spending"`
	StartDate      time.Time      `gorm:"not null" json:"start_date"`
	EndDate        time.Time      `gorm:"not null;index" json:"end_date"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Allocation) TableName() string {
	return "budget_allocations"
}

// WorkAllocation is the denormalized row the evaluator scans: a live
// allocation joined with its client and service display names.
type WorkAllocation struct {
	ID             snowflake.ID
	ClientID       snowflake.ID
	ServiceID      snowflake.ID
	ClientName     string
	ServiceName    string
	MonthlyBudget  float64
	ActualSpending float64
}

// Utilization is spending as a percentage of the monthly budget. A zero
// budget yields 0 regardless of spending: unbudgeted allocations are not
// tracked, so overspend against them never alerts.
func (w WorkAllocation) Utilization() float64 {
	if w.MonthlyBudget <= 0 {
		return 0
	}
	return w.ActualSpending / w.MonthlyBudget * 100
}
