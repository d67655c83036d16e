package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidKind          = errors.New("invalid_kind")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInterventionNotFound = errors.New("intervention_not_found")
	ErrClientNotFound       = errors.New("client_not_found")
	ErrTechnicianNotFound   = errors.New("technician_not_found")
	ErrVersionConflict      = errors.New("version_conflict")
	ErrForbidden            = errors.New("forbidden")
)

// CreateInterventionRequest carries the fields accepted at creation.
// Kind is immutable afterwards. A zero Price requests automatic derivation
// from the client's capacity rating.
type CreateInterventionRequest struct {
	Kind          Kind
	Status        Status
	ScheduledAt   time.Time
	ClientID      string
	TechnicianID  string
	FaultObserved string
	PartsReplaced string
	Notes         string
	Price         int64
}

// UpdateInterventionRequest carries the mutable fields. Nil pointers leave a
// field unchanged. Version must match the persisted record.
type UpdateInterventionRequest struct {
	ID      string
	Version int64

	Status        *Status
	ScheduledAt   *time.Time
	FaultObserved *string
	PartsReplaced *string
	Notes         *string

	// Admin-only fields. Technicians may not reassign or reprice.
	Price        *int64
	ClientID     *string
	TechnicianID *string
}

// ListInterventionsRequest filters and paginates the intervention list.
// From/To bound scheduled_at, feeding calendar-style range queries.
type ListInterventionsRequest struct {
	Search   string
	Kind     Kind
	Status   Status
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ListInterventionsResponse is a page of interventions.
type ListInterventionsResponse struct {
	Interventions []Intervention `json:"interventions"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

// InterventionDetail is an intervention plus its read-time duration
// projection.
type InterventionDetail struct {
	Intervention         `json:"intervention"`
	TotalDuration        time.Duration `json:"total_duration"`
	TotalDurationDisplay string        `json:"total_duration_display"`
}

// Service owns the intervention lifecycle: status transitions, duration
// accounting, price derivation and supplier mirroring all run on its save
// path. Caller identity comes from the context.
type Service interface {
	Create(ctx context.Context, req CreateInterventionRequest) (*Intervention, error)
	Update(ctx context.Context, req UpdateInterventionRequest) (*Intervention, error)
	GetByID(ctx context.Context, id string) (*InterventionDetail, error)
	List(ctx context.Context, req ListInterventionsRequest) (*ListInterventionsResponse, error)
	Delete(ctx context.Context, id string) error
}
