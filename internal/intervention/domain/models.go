// Package domain contains the intervention entity, its lifecycle vocabulary
// and the strongly-typed status history.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

// Kind classifies an intervention. Immutable once the record is created.
type Kind string

const (
	KindInstallation Kind = "installation"
	KindRepair       Kind = "repair"
	KindMaintenance  Kind = "maintenance"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindInstallation, KindRepair, KindMaintenance:
		return true
	}
	return false
}

// Status is the operational state of an intervention. No status is terminal:
// mis-recorded interventions can be resumed from any state.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// HistoryAction tags an entry in the status history.
type HistoryAction string

const (
	// HistoryActionStart marks the first entry into in_progress.
	HistoryActionStart HistoryAction = "start"
	// HistoryActionEnd closes an in_progress span and carries its elapsed time.
	HistoryActionEnd HistoryAction = "end"
	// HistoryActionResume marks a re-entry into in_progress; the note names
	// the status it resumed from.
	HistoryActionResume HistoryAction = "resume"
)

// HistoryEntry is one append-only audit record of a status transition.
type HistoryEntry struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Action    HistoryAction `json:"action"`
	Note      string        `json:"note,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
}

// Intervention is a single scheduled or performed service visit.
type Intervention struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	Kind   Kind   `gorm:"type:text;not null" json:"kind"`
	Status Status `gorm:"type:text;not null;default:in_progress" json:"status"`

	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`

	FaultObserved string `gorm:"type:text" json:"fault_observed,omitempty"`
	PartsReplaced string `gorm:"type:text" json:"parts_replaced,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	// Price in FCFA. Derived from capacity and kind at save time when zero;
	// a non-zero price is an operator-entered fact and is never overwritten.
	Price int64 `gorm:"not null;default:0" json:"price"`

	// AccumulatedDuration is the total time spent in in_progress across all
	// spans. It only grows, and only at span boundaries.
	AccumulatedDuration time.Duration `gorm:"not null;default:0" json:"accumulated_duration"`
	// ActiveSince marks the start of the current in_progress span. Non-nil
	// iff Status == in_progress.
	ActiveSince *time.Time `gorm:"" json:"active_since,omitempty"`

	StatusHistory datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"status_history"`

	ReminderSent bool `gorm:"not null;default:false" json:"reminder_sent"`

	ClientID     snowflake.ID  `gorm:"not null;index" json:"client_id"`
	TechnicianID *snowflake.ID `gorm:"index" json:"technician_id,omitempty"`
	// SupplierID mirrors the client's supplier on every save.
	SupplierID *snowflake.ID `gorm:"index" json:"supplier_id,omitempty"`

	Client     *clientdomain.Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Technician *techniciandomain.Technician `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Supplier   *supplierdomain.Supplier     `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	// Version guards against concurrent writers; every update must carry the
	// version it read.
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Intervention) TableName() string { return "interventions" }

// History decodes the status history blob.
func (i *Intervention) History() ([]HistoryEntry, error) {
	if len(i.StatusHistory) == 0 {
		return nil, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(i.StatusHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendHistory appends entries to the status history blob. Existing entries
// are never mutated or pruned.
func (i *Intervention) AppendHistory(entries ...HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	existing, err := i.History()
	if err != nil {
		return err
	}
	existing = append(existing, entries...)
	raw, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	i.StatusHistory = raw
	return nil
}
