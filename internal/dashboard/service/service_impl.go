package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/cache"
	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/clock"
	dashboarddomain "github.com/sahelsolar/fieldops/internal/dashboard/domain"
	"github.com/sahelsolar/fieldops/internal/identity"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrForbidden = errors.New("forbidden")
)

const (
	// upcomingHorizon matches the 30-day window shown on the overview.
	upcomingHorizon = 30 * 24 * time.Hour
	listLimit       = 10
	overviewTTL     = 30 * time.Second
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	adminCache      cache.Cache[string, *dashboarddomain.AdminOverview]
	technicianCache cache.Cache[snowflake.ID, *dashboarddomain.TechnicianOverview]
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) dashboarddomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("dashboard.service"),
		clock:           p.Clock,
		adminCache:      cache.NewTTLCache[string, *dashboarddomain.AdminOverview](),
		technicianCache: cache.NewTTLCache[snowflake.ID, *dashboarddomain.TechnicianOverview](),
	}
}

func (s *Service) AdminOverview(ctx context.Context) (*dashboarddomain.AdminOverview, error) {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return nil, ErrForbidden
	}

	if cached, ok := s.adminCache.Get("admin"); ok {
		return cached, nil
	}

	now := s.clock.Now()
	overview := &dashboarddomain.AdminOverview{AsOf: now}

	base := s.db.WithContext(ctx)
	if err := base.Model(&clientdomain.Client{}).Count(&overview.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := base.Model(&techniciandomain.Technician{}).Count(&overview.TotalTechnicians).Error; err != nil {
		return nil, err
	}
	if err := base.Model(&supplierdomain.Supplier{}).Count(&overview.TotalSuppliers).Error; err != nil {
		return nil, err
	}

	counts, err := s.statusCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	overview.Interventions = counts

	if err := base.Model(&interventiondomain.Intervention{}).
		Where("status = ?", interventiondomain.StatusCompleted).
		Select("COALESCE(SUM(price), 0)").
		Scan(&overview.CompletedRevenue).Error; err != nil {
		return nil, err
	}
	if err := base.Model(&interventiondomain.Intervention{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&overview.BookedRevenue).Error; err != nil {
		return nil, err
	}

	overview.Upcoming, err = s.upcoming(ctx, nil, now)
	if err != nil {
		return nil, err
	}

	err = base.Model(&interventiondomain.Intervention{}).
		Preload("Client").
		Preload("Technician").
		Order("scheduled_at DESC").
		Limit(listLimit).
		Find(&overview.Recent).Error
	if err != nil {
		return nil, err
	}

	s.adminCache.Set("admin", overview, overviewTTL)
	return overview, nil
}

func (s *Service) TechnicianOverview(ctx context.Context, rawID string) (*dashboarddomain.TechnicianOverview, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, ErrInvalidID
	}

	caller := identity.CallerFromContext(ctx)
	if caller.IsTechnician() && caller.TechnicianID != id {
		return nil, ErrForbidden
	}

	if cached, ok := s.technicianCache.Get(id); ok {
		return cached, nil
	}

	now := s.clock.Now()
	overview := &dashboarddomain.TechnicianOverview{
		TechnicianID: id.String(),
		AsOf:         now,
	}

	counts, err := s.statusCounts(ctx, &id)
	if err != nil {
		return nil, err
	}
	overview.Interventions = counts

	overview.Upcoming, err = s.upcoming(ctx, &id, now)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&interventiondomain.Intervention{}).
		Preload("Client").
		Where("technician_id = ?", id).
		Where("scheduled_at < ?", now).
		Where("status IN ?", activeStatuses()).
		Order("scheduled_at ASC").
		Find(&overview.Overdue).Error
	if err != nil {
		return nil, err
	}

	s.technicianCache.Set(id, overview, overviewTTL)
	return overview, nil
}

func (s *Service) statusCounts(ctx context.Context, technicianID *snowflake.ID) (dashboarddomain.StatusCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	query := s.db.WithContext(ctx).Model(&interventiondomain.Intervention{}).
		Select("status, COUNT(1) AS n").
		Group("status")
	if technicianID != nil {
		query = query.Where("technician_id = ?", *technicianID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return dashboarddomain.StatusCounts{}, err
	}

	var counts dashboarddomain.StatusCounts
	for _, row := range rows {
		counts.Total += row.N
		switch interventiondomain.Status(row.Status) {
		case interventiondomain.StatusPlanned:
			counts.Planned = row.N
		case interventiondomain.StatusInProgress:
			counts.InProgress = row.N
		case interventiondomain.StatusCompleted:
			counts.Completed = row.N
		case interventiondomain.StatusCancelled:
			counts.Cancelled = row.N
		}
	}
	return counts, nil
}

func (s *Service) upcoming(ctx context.Context, technicianID *snowflake.ID, now time.Time) ([]interventiondomain.Intervention, error) {
	query := s.db.WithContext(ctx).Model(&interventiondomain.Intervention{}).
		Preload("Client").
		Preload("Technician").
		Where("status IN ?", activeStatuses()).
		Where("scheduled_at <= ?", now.Add(upcomingHorizon)).
		Order("scheduled_at DESC").
		Limit(listLimit)
	if technicianID != nil {
		query = query.Where("technician_id = ?", *technicianID)
	}

	var interventions []interventiondomain.Intervention
	if err := query.Find(&interventions).Error; err != nil {
		return nil, err
	}
	return interventions, nil
}

func activeStatuses() []interventiondomain.Status {
	return []interventiondomain.Status{
		interventiondomain.StatusPlanned,
		interventiondomain.StatusInProgress,
	}
}
