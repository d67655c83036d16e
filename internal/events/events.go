package events

// Operational event types stored in the outbox.
const (
	EventInterventionCreated       = "intervention.created"
	EventInterventionStatusChanged = "intervention.status_changed"
	EventInterventionReminderSent  = "intervention.reminder_sent"
	EventInterventionDeleted       = "intervention.deleted"
)

// InterventionPayload captures the minimal data needed to follow up on an
// intervention event.
type InterventionPayload struct {
	InterventionID string `json:"intervention_id"`
	ClientID       string `json:"client_id"`
	TechnicianID   string `json:"technician_id,omitempty"`
	Kind           string `json:"kind"`
	Status         string `json:"status"`
	PrevStatus     string `json:"prev_status,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p InterventionPayload) ToMap() map[string]any {
	payload := map[string]any{
		"intervention_id": p.InterventionID,
		"client_id":       p.ClientID,
		"kind":            p.Kind,
		"status":          p.Status,
	}
	if p.TechnicianID != "" {
		payload["technician_id"] = p.TechnicianID
	}
	if p.PrevStatus != "" {
		payload["prev_status"] = p.PrevStatus
	}
	return payload
}
