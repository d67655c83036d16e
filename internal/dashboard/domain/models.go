package domain

import (
	"context"
	"time"

	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
)

// StatusCounts breaks interventions down by lifecycle status.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Planned    int64 `json:"planned"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

// AdminOverview aggregates activity across the whole company.
type AdminOverview struct {
	TotalClients     int64 `json:"total_clients"`
	TotalTechnicians int64 `json:"total_technicians"`
	TotalSuppliers   int64 `json:"total_suppliers"`

	Interventions StatusCounts `json:"interventions"`

	// CompletedRevenue sums the price of completed interventions only;
	// BookedRevenue sums every intervention regardless of status.
	CompletedRevenue int64 `json:"completed_revenue"`
	BookedRevenue    int64 `json:"booked_revenue"`

	Upcoming []interventiondomain.Intervention `json:"upcoming"`
	Recent   []interventiondomain.Intervention `json:"recent"`

	AsOf time.Time `json:"as_of"`
}

// TechnicianOverview aggregates one technician's assigned interventions.
type TechnicianOverview struct {
	TechnicianID string `json:"technician_id"`

	Interventions StatusCounts `json:"interventions"`

	Upcoming []interventiondomain.Intervention `json:"upcoming"`
	Overdue  []interventiondomain.Intervention `json:"overdue"`

	AsOf time.Time `json:"as_of"`
}

// Service serves the role-specific dashboard aggregates.
type Service interface {
	AdminOverview(ctx context.Context) (*AdminOverview, error)
	TechnicianOverview(ctx context.Context, technicianID string) (*TechnicianOverview, error)
}
