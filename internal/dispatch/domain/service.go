package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
)

type Repository interface {
	InsertEmailLog(ctx context.Context, db *gorm.DB, log *EmailLog) error
	ListEmailLogs(ctx context.Context, db *gorm.DB, limit int) ([]*EmailLog, error)
}

type SendRequest struct {
	To      string
	Subject string
	Message string
	HTML    string
	Type    Channel
}

type SendResult struct {
	Channel Channel `json:"channel"`
	ID      string  `json:"id"`
}

// Service forwards a message either to the SMTP provider (email channel,
// with an email_logs row per attempt) or into the in-app notification
// store addressed by the recipient's profile email.
type Service interface {
	Send(context.Context, SendRequest) (SendResult, error)
}

var (
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrInvalidSubject   = errors.New("invalid_subject")
	ErrInvalidMessage   = errors.New("invalid_message")
	ErrInvalidChannel   = errors.New("invalid_channel")
	ErrUnknownRecipient = errors.New("unknown_recipient")
	ErrSendFailed       = errors.New("send_failed")
)
