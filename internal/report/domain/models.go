package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrInvalidID          = errors.New("invalid_id")
	ErrReportNotFound     = errors.New("report_not_found")
	ErrNoInterventions    = errors.New("no_interventions_in_period")
	ErrForbidden          = errors.New("forbidden")
	ErrAnalystUnavailable = errors.New("analyst_unavailable")
)

// Report is a persisted monthly activity report. The narrative sections come
// from the AI analyst when it is reachable, otherwise from rule-based
// fallbacks; the numeric fields are always computed from the database.
type Report struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	Title string       `gorm:"type:text;not null" json:"title"`
	// Month is the first day of the reported month, UTC.
	Month time.Time `gorm:"not null;index" json:"month"`

	TotalInterventions int64   `gorm:"not null;default:0" json:"total_interventions"`
	TotalRevenue       int64   `gorm:"not null;default:0" json:"total_revenue"`
	SuccessRate        float64 `gorm:"not null;default:0" json:"success_rate"`
	// PerformanceScore is an internal efficiency index out of 10, derived
	// from the success rate. It is not a customer satisfaction score.
	PerformanceScore float64  `gorm:"not null;default:0" json:"performance_score"`
	AvgDurationHours *float64 `json:"avg_duration_hours,omitempty"`

	Summary               string `gorm:"type:text" json:"summary"`
	Recommendations       string `gorm:"type:text" json:"recommendations"`
	TechnicalAnalysis     string `gorm:"type:text" json:"technical_analysis"`
	PredictiveMaintenance string `gorm:"type:text" json:"predictive_maintenance"`

	// AIGenerated is false when the narrative fell back to the rule-based
	// recommendations.
	AIGenerated bool `gorm:"not null;default:false" json:"ai_generated"`

	StatisticsData datatypes.JSONMap `gorm:"type:jsonb" json:"statistics_data,omitempty"`
	AIRawResponse  string            `gorm:"type:text" json:"-"`

	GeneratedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"generated_at"`
}

// TableName sets the database table name.
func (Report) TableName() string { return "reports" }

// KindCount is the per-kind intervention breakdown for one month.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// TechnicianCount ranks technicians by handled interventions.
type TechnicianCount struct {
	TechnicianID   snowflake.ID `json:"technician_id"`
	TechnicianName string       `json:"technician_name"`
	Count          int64        `json:"count"`
}

// MonthlyStats carries everything the analyst prompt and the persisted
// report need about one month of activity.
type MonthlyStats struct {
	Month int `json:"month"`
	Year  int `json:"year"`

	TotalInterventions     int64   `json:"total_interventions"`
	CompletedInterventions int64   `json:"completed_interventions"`
	OngoingInterventions   int64   `json:"ongoing_interventions"`
	SuccessRate            float64 `json:"success_rate"`
	PerformanceScore       float64 `json:"performance_score"`

	AvgDurationHours   *float64 `json:"avg_duration_hours,omitempty"`
	AvgDurationDisplay string   `json:"avg_duration_display"`

	TotalRevenue int64 `json:"total_revenue"`

	ByKind         []KindCount       `json:"by_kind"`
	TopTechnicians []TechnicianCount `json:"top_technicians"`
}

// GenerateRequest selects the month to report on.
type GenerateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ListRequest pages through generated reports, newest first.
type ListRequest struct {
	Page     int
	PageSize int
}

type ListResponse struct {
	Reports  []Report `json:"reports"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Service generates and serves monthly reports.
// AnalystStatus reports whether the text-generation backend is reachable.
type AnalystStatus struct {
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Report, error)
	GetByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Delete(ctx context.Context, id string) error
	AnalystStatus(ctx context.Context) AnalystStatus
}
