package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/identity"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	"github.com/sahelsolar/fieldops/internal/intervention/lifecycle"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
	"github.com/sahelsolar/fieldops/internal/report/analyst"
	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	analyst analyst.Analyst
	metrics *metrics.OpsMetrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Analyst analyst.Analyst
	Metrics *metrics.OpsMetrics `optional:"true"`
}

func NewService(p ServiceParam) reportdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("report.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		analyst: p.Analyst,
		metrics: p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, req reportdomain.GenerateRequest) (*reportdomain.Report, error) {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return nil, reportdomain.ErrForbidden
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return nil, reportdomain.ErrInvalidPeriod
	}

	started := time.Now()

	stats, err := s.computeStats(ctx, req.Month, req.Year)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	monthName := time.Month(req.Month).String()

	report := &reportdomain.Report{
		ID:                 s.genID.Generate(),
		Month:              monthStart,
		TotalInterventions: stats.TotalInterventions,
		TotalRevenue:       stats.TotalRevenue,
		SuccessRate:        stats.SuccessRate,
		PerformanceScore:   stats.PerformanceScore,
		AvgDurationHours:   stats.AvgDurationHours,
		StatisticsData:     statsToMap(stats),
		GeneratedAt:        s.clock.Now(),
	}

	if s.analyst != nil && s.analyst.Available(ctx) {
		raw, err := s.analyst.Analyze(ctx, stats)
		if err == nil {
			sections := analyst.ParseSections(raw)
			report.Title = fmt.Sprintf("Report %s %d", monthName, req.Year)
			report.Summary = orDefault(sections.Summary, "AI analysis not available.")
			report.Recommendations = sections.Recommendations
			report.TechnicalAnalysis = sections.TechnicalAnalysis
			report.PredictiveMaintenance = sections.PredictiveMaintenance
			report.AIRawResponse = raw
			report.AIGenerated = true
		} else {
			s.log.Warn("analyst failed, falling back to rule-based report", zap.Error(err))
			s.fillFallback(report, stats, monthName, req.Year, err)
		}
	} else {
		s.fillFallback(report, stats, monthName, req.Year, reportdomain.ErrAnalystUnavailable)
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}

	s.metrics.ObserveReportGeneration(time.Since(started))
	s.log.Info("report generated",
		zap.String("report_id", report.ID.String()),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Bool("ai_generated", report.AIGenerated),
	)
	return report, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*reportdomain.Report, error) {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return nil, reportdomain.ErrForbidden
	}

	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, reportdomain.ErrInvalidID
	}

	var report reportdomain.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reportdomain.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (s *Service) List(ctx context.Context, req reportdomain.ListRequest) (*reportdomain.ListResponse, error) {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return nil, reportdomain.ErrForbidden
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&reportdomain.Report{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reports []reportdomain.Report
	err := query.
		Order("generated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return &reportdomain.ListResponse{
		Reports:  reports,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return reportdomain.ErrForbidden
	}

	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return reportdomain.ErrInvalidID
	}

	result := s.db.WithContext(ctx).Delete(&reportdomain.Report{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reportdomain.ErrReportNotFound
	}
	return nil
}

func (s *Service) AnalystStatus(ctx context.Context) reportdomain.AnalystStatus {
	return reportdomain.AnalystStatus{
		Available: s.analyst.Available(ctx),
		CheckedAt: s.clock.Now().UTC(),
	}
}

func (s *Service) computeStats(ctx context.Context, month, year int) (reportdomain.MonthlyStats, error) {
	stats := reportdomain.MonthlyStats{Month: month, Year: year}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	base := s.db.WithContext(ctx).Model(&interventiondomain.Intervention{}).
		Where("scheduled_at >= ? AND scheduled_at < ?", start, end)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalInterventions).Error; err != nil {
		return stats, err
	}
	if stats.TotalInterventions == 0 {
		return stats, reportdomain.ErrNoInterventions
	}

	if err := base.Session(&gorm.Session{}).
		Where("status = ?", interventiondomain.StatusCompleted).
		Count(&stats.CompletedInterventions).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", interventiondomain.StatusInProgress).
		Count(&stats.OngoingInterventions).Error; err != nil {
		return stats, err
	}

	stats.SuccessRate = float64(stats.CompletedInterventions) / float64(stats.TotalInterventions) * 100
	stats.PerformanceScore = roundTenth(stats.SuccessRate / 10)

	// Average duration over completed interventions that tracked time.
	var durationRow struct {
		Total int64
		N     int64
	}
	err := base.Session(&gorm.Session{}).
		Where("status = ? AND accumulated_duration > 0", interventiondomain.StatusCompleted).
		Select("COALESCE(SUM(accumulated_duration), 0) AS total, COUNT(1) AS n").
		Scan(&durationRow).Error
	if err != nil {
		return stats, err
	}
	stats.AvgDurationDisplay = "N/A"
	if durationRow.N > 0 {
		avg := time.Duration(durationRow.Total / durationRow.N)
		hours := avg.Hours()
		stats.AvgDurationHours = &hours
		stats.AvgDurationDisplay = lifecycle.FormatDuration(avg)
	}

	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return stats, err
	}

	err = base.Session(&gorm.Session{}).
		Select("kind, COUNT(1) AS count").
		Group("kind").
		Order("count DESC").
		Scan(&stats.ByKind).Error
	if err != nil {
		return stats, err
	}

	err = s.db.WithContext(ctx).Raw(
		`SELECT i.technician_id, t.name AS technician_name, COUNT(1) AS count
		 FROM interventions i
		 JOIN technicians t ON t.id = i.technician_id
		 WHERE i.scheduled_at >= ? AND i.scheduled_at < ? AND i.technician_id IS NOT NULL
		 GROUP BY i.technician_id, t.name
		 ORDER BY count DESC
		 LIMIT 5`,
		start,
		end,
	).Scan(&stats.TopTechnicians).Error
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (s *Service) fillFallback(report *reportdomain.Report, stats reportdomain.MonthlyStats, monthName string, year int, cause error) {
	report.Title = fmt.Sprintf("Report %s %d (no AI)", monthName, year)
	report.Summary = fmt.Sprintf("Statistical report for %s %d. AI analysis unavailable: %v", monthName, year, cause)
	report.Recommendations = analyst.ManualRecommendations(stats)
	report.TechnicalAnalysis = "Technical analysis not available."
	report.PredictiveMaintenance = "Predictions not available."
	report.AIGenerated = false
}

func statsToMap(stats reportdomain.MonthlyStats) datatypes.JSONMap {
	raw, err := json.Marshal(stats)
	if err != nil {
		return datatypes.JSONMap{}
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return datatypes.JSONMap{}
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
