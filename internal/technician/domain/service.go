package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidID          = errors.New("invalid_id")
	ErrTechnicianNotFound = errors.New("technician_not_found")
)

// CreateTechnicianRequest carries the fields accepted at creation.
type CreateTechnicianRequest struct {
	Name     string
	Phone    string
	Email    string
	PhotoURL string
}

// UpdateTechnicianRequest carries the mutable fields. Nil pointers leave the
// field unchanged.
type UpdateTechnicianRequest struct {
	ID       string
	Name     *string
	Phone    *string
	Email    *string
	PhotoURL *string
}

// Service exposes technician management.
type Service interface {
	Create(ctx context.Context, req CreateTechnicianRequest) (*Technician, error)
	Update(ctx context.Context, req UpdateTechnicianRequest) (*Technician, error)
	GetByID(ctx context.Context, id string) (*Technician, error)
	List(ctx context.Context) ([]Technician, error)
	Delete(ctx context.Context, id string) error
}
