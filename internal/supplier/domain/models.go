package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Supplier is an equipment supplier referenced by clients and mirrored onto
// their interventions.
type Supplier struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	Phone     string       `gorm:"type:text" json:"phone,omitempty"`
	Email     string       `gorm:"type:text" json:"email,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }
