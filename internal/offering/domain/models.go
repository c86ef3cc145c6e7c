package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Offering is a service the agency sells to clients (SEO, PPC, content, ...).
// Budget allocations reference offerings through service_id.
type Offering struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"not null;uniqueIndex" json:"code"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description,omitempty"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Offering) TableName() string {
	return "services"
}
