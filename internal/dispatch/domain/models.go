package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailLog records every outbound email attempt, successful or not.
type EmailLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Recipient string       `gorm:"not null;index" json:"recipient"`
	Subject   string       `gorm:"not null" json:"subject"`
	Status    EmailStatus  `gorm:"not null" json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
