package domain

import (
	"context"
	"errors"

	"github.com/agencyhq/opscore/pkg/db/pagination"
)

type ListClientRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Status    string
}

type ListClientFilter struct {
	Name   string
	Status ClientStatus
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type CreateClientRequest struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
}

type UpdateClientRequest struct {
	ID          string
	Name        *string
	ContactName *string
	Email       *string
	Phone       *string
	Status      *string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, string) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	Archive(context.Context, string) error
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
)
