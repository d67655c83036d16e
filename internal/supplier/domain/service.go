package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidID        = errors.New("invalid_id")
	ErrSupplierNotFound = errors.New("supplier_not_found")
)

// CreateSupplierRequest carries the fields accepted at creation.
type CreateSupplierRequest struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// UpdateSupplierRequest carries the mutable fields. Nil pointers leave the
// field unchanged.
type UpdateSupplierRequest struct {
	ID      string
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

// Service exposes supplier management.
type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*Supplier, error)
	Update(ctx context.Context, req UpdateSupplierRequest) (*Supplier, error)
	GetByID(ctx context.Context, id string) (*Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	Delete(ctx context.Context, id string) error
}
