// Package notification dispatches email-like notices about interventions.
// Dispatch is fire-and-forget: a failed dispatch is logged and never blocks
// the state transition that triggered it.
package notification

import (
	"context"
	"fmt"
	"time"
)

// Notice types routed to downstream mailers.
const (
	TypeCreated       = "intervention.created"
	TypeStatusChanged = "intervention.status_changed"
	TypeCompleted     = "intervention.completed"
	TypeReminder      = "intervention.reminder"
)

// Notice is one outbound notification.
type Notice struct {
	Type           string    `json:"type"`
	InterventionID string    `json:"intervention_id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	PrevStatus     string    `json:"prev_status,omitempty"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Subject        string    `json:"subject"`

	ClientEmail     string `json:"client_email,omitempty"`
	TechnicianEmail string `json:"technician_email,omitempty"`
}

// Notifier delivers notices to the configured transport.
type Notifier interface {
	Dispatch(ctx context.Context, notice Notice) error
}

// Created builds the notice sent when an intervention is created.
func Created(interventionID, kind, status string, scheduledAt time.Time, clientEmail, technicianEmail string) Notice {
	return Notice{
		Type:            TypeCreated,
		InterventionID:  interventionID,
		Kind:            kind,
		Status:          status,
		ScheduledAt:     scheduledAt,
		Subject:         fmt.Sprintf("Intervention #%s scheduled", interventionID),
		ClientEmail:     clientEmail,
		TechnicianEmail: technicianEmail,
	}
}

// StatusChanged builds the notice sent when an intervention changes status.
// Completed interventions additionally notify the technician.
func StatusChanged(interventionID, kind, status, prevStatus string, scheduledAt time.Time, clientEmail, technicianEmail string) Notice {
	notice := Notice{
		Type:           TypeStatusChanged,
		InterventionID: interventionID,
		Kind:           kind,
		Status:         status,
		PrevStatus:     prevStatus,
		ScheduledAt:    scheduledAt,
		Subject:        fmt.Sprintf("Intervention #%s update - %s", interventionID, status),
		ClientEmail:    clientEmail,
	}
	if status == "completed" {
		notice.Type = TypeCompleted
		notice.TechnicianEmail = technicianEmail
	}
	return notice
}

// Reminder builds the 24h pre-service reminder notice.
func Reminder(interventionID, kind string, scheduledAt time.Time, clientEmail, technicianEmail string) Notice {
	return Notice{
		Type:            TypeReminder,
		InterventionID:  interventionID,
		Kind:            kind,
		Status:          "planned",
		ScheduledAt:     scheduledAt,
		Subject:         fmt.Sprintf("Reminder - intervention #%s tomorrow", interventionID),
		ClientEmail:     clientEmail,
		TechnicianEmail: technicianEmail,
	}
}
