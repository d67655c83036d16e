package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Technician performs interventions for clients.
type Technician struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Phone     string       `gorm:"type:text;not null" json:"phone"`
	Email     string       `gorm:"type:text;not null" json:"email"`
	PhotoURL  string       `gorm:"type:text" json:"photo_url,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Technician) TableName() string { return "technicians" }
