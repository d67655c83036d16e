package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/sahelsolar/fieldops/internal/capacity"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
)

// Client owns a solar installation described by a free-text equipment
// descriptor. The descriptor must encode a KVA rating; that rating drives
// intervention pricing.
type Client struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	Name    string       `gorm:"type:text;not null" json:"name"`
	Address string       `gorm:"type:text;not null" json:"address"`
	Phone   string       `gorm:"type:text;not null;uniqueIndex" json:"phone"`
	Email   string       `gorm:"type:text;not null;uniqueIndex" json:"email"`

	InstalledAt time.Time `gorm:"not null" json:"installed_at"`

	// EquipmentDescriptor is free text that must contain a KVA rating,
	// e.g. "5KVA 10KWH 10x550W" or "8KVA hybrid system".
	EquipmentDescriptor string `gorm:"type:text;not null" json:"equipment_descriptor"`

	Notes             string `gorm:"type:text" json:"notes,omitempty"`
	SuppliedMaterials string `gorm:"type:text" json:"supplied_materials,omitempty"`

	SupplierID *snowflake.ID            `gorm:"index" json:"supplier_id,omitempty"`
	Supplier   *supplierdomain.Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// Capacity extracts the KVA rating from the equipment descriptor.
func (c *Client) Capacity() (int, bool) {
	return capacity.Extract(c.EquipmentDescriptor)
}
