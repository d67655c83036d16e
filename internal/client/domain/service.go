package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidDescriptor = errors.New("invalid_equipment_descriptor")
	ErrInvalidID         = errors.New("invalid_id")
	ErrDuplicateContact  = errors.New("duplicate_phone_or_email")
	ErrClientNotFound    = errors.New("client_not_found")
	ErrSupplierNotFound  = errors.New("supplier_not_found")
)

// CreateClientRequest carries the fields accepted at creation.
type CreateClientRequest struct {
	Name                string
	Address             string
	Phone               string
	Email               string
	InstalledAt         time.Time
	EquipmentDescriptor string
	Notes               string
	SuppliedMaterials   string
	SupplierID          string
}

// UpdateClientRequest carries the mutable fields. Nil pointers leave the
// field unchanged.
type UpdateClientRequest struct {
	ID                  string
	Name                *string
	Address             *string
	Phone               *string
	Email               *string
	InstalledAt         *time.Time
	EquipmentDescriptor *string
	Notes               *string
	SuppliedMaterials   *string
	SupplierID          *string
}

// PricePreview is the projected intervention price for a client, used to
// preview tariffs before an intervention exists.
type PricePreview struct {
	ClientID string `json:"client_id"`
	Capacity int    `json:"capacity"`
	Kind     string `json:"kind"`
	Price    int64  `json:"price"`
}

// Service exposes client management. Descriptor validation (rating present,
// 1..100 KVA) happens here, not in the lifecycle engine.
type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	Update(ctx context.Context, req UpdateClientRequest) (*Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context, search string) ([]Client, error)
	Delete(ctx context.Context, id string) error
	PreviewPrice(ctx context.Context, id string, kind string) (*PricePreview, error)
}
