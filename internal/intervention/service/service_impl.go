package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/events"
	"github.com/sahelsolar/fieldops/internal/identity"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	"github.com/sahelsolar/fieldops/internal/intervention/lifecycle"
	"github.com/sahelsolar/fieldops/internal/notification"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
	"github.com/sahelsolar/fieldops/internal/pricing"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	outbox   *events.Outbox
	notifier notification.Notifier
	metrics  *metrics.OpsMetrics
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Outbox   *events.Outbox
	Notifier notification.Notifier
	Metrics  *metrics.OpsMetrics `optional:"true"`
}

func NewService(p ServiceParam) interventiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("intervention.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		outbox:   p.Outbox,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req interventiondomain.CreateInterventionRequest) (*interventiondomain.Intervention, error) {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return nil, interventiondomain.ErrForbidden
	}

	if !req.Kind.Valid() {
		return nil, interventiondomain.ErrInvalidKind
	}
	status := req.Status
	if status == "" {
		status = interventiondomain.StatusInProgress
	}
	if !status.Valid() {
		return nil, interventiondomain.ErrInvalidStatus
	}

	client, err := s.loadClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	iv := interventiondomain.Intervention{
		ID:            s.genID.Generate(),
		Kind:          req.Kind,
		Status:        status,
		ScheduledAt:   req.ScheduledAt,
		FaultObserved: strings.TrimSpace(req.FaultObserved),
		PartsReplaced: strings.TrimSpace(req.PartsReplaced),
		Notes:         strings.TrimSpace(req.Notes),
		Price:         req.Price,
		ClientID:      client.ID,
		Version:       1,
	}

	var technician *techniciandomain.Technician
	if rawID := strings.TrimSpace(req.TechnicianID); rawID != "" {
		technician, err = s.loadTechnician(ctx, rawID)
		if err != nil {
			return nil, err
		}
		iv.TechnicianID = &technician.ID
	}

	now := s.clock.Now()
	if _, err := lifecycle.Apply(&iv, lifecycle.StatusNone, now); err != nil {
		return nil, err
	}
	s.applySaveRules(&iv, client)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&iv).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventInterventionCreated,
			Payload:   s.eventPayload(&iv, "").ToMap(),
			DedupeKey: "created:" + iv.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(lifecycle.StatusNone), string(iv.Status))

	s.dispatch(ctx, notification.Created(
		iv.ID.String(), string(iv.Kind), string(iv.Status), iv.ScheduledAt,
		client.Email, technicianEmail(technician),
	))

	return &iv, nil
}

func (s *Service) Update(ctx context.Context, req interventiondomain.UpdateInterventionRequest) (*interventiondomain.Intervention, error) {
	caller := identity.CallerFromContext(ctx)

	id, err := parseID(req.ID)
	if err != nil {
		return nil, interventiondomain.ErrInvalidID
	}

	var iv interventiondomain.Intervention
	err = s.db.WithContext(ctx).
		Preload("Client").
		Preload("Technician").
		First(&iv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interventiondomain.ErrInterventionNotFound
		}
		return nil, err
	}

	if caller.IsTechnician() {
		if iv.TechnicianID == nil || *iv.TechnicianID != caller.TechnicianID {
			return nil, interventiondomain.ErrForbidden
		}
		if req.Price != nil || req.ClientID != nil || req.TechnicianID != nil {
			return nil, interventiondomain.ErrForbidden
		}
	}

	if req.Version != iv.Version {
		return nil, interventiondomain.ErrVersionConflict
	}
	prevVersion := iv.Version
	prevStatus := iv.Status

	if req.ScheduledAt != nil {
		iv.ScheduledAt = *req.ScheduledAt
	}
	if req.FaultObserved != nil {
		iv.FaultObserved = strings.TrimSpace(*req.FaultObserved)
	}
	if req.PartsReplaced != nil {
		iv.PartsReplaced = strings.TrimSpace(*req.PartsReplaced)
	}
	if req.Notes != nil {
		iv.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Price != nil {
		iv.Price = *req.Price
	}

	client := iv.Client
	if req.ClientID != nil {
		client, err = s.loadClient(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		iv.ClientID = client.ID
	}
	if client == nil {
		client, err = s.loadClient(ctx, iv.ClientID.String())
		if err != nil {
			return nil, err
		}
	}

	technician := iv.Technician
	if req.TechnicianID != nil {
		if rawID := strings.TrimSpace(*req.TechnicianID); rawID == "" {
			iv.TechnicianID = nil
			technician = nil
		} else {
			technician, err = s.loadTechnician(ctx, rawID)
			if err != nil {
				return nil, err
			}
			iv.TechnicianID = &technician.ID
		}
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, interventiondomain.ErrInvalidStatus
		}
		iv.Status = *req.Status
	}

	now := s.clock.Now()
	if _, err := lifecycle.Apply(&iv, prevStatus, now); err != nil {
		return nil, err
	}
	s.applySaveRules(&iv, client)
	iv.Version = prevVersion + 1
	iv.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&interventiondomain.Intervention{}).
			Where("id = ? AND version = ?", iv.ID, prevVersion).
			Updates(map[string]any{
				"status":               iv.Status,
				"scheduled_at":         iv.ScheduledAt,
				"fault_observed":       iv.FaultObserved,
				"parts_replaced":       iv.PartsReplaced,
				"notes":                iv.Notes,
				"price":                iv.Price,
				"accumulated_duration": iv.AccumulatedDuration,
				"active_since":         iv.ActiveSince,
				"status_history":       iv.StatusHistory,
				"client_id":            iv.ClientID,
				"technician_id":        iv.TechnicianID,
				"supplier_id":          iv.SupplierID,
				"version":              iv.Version,
				"updated_at":           iv.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return interventiondomain.ErrVersionConflict
		}

		if iv.Status != prevStatus {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type:      events.EventInterventionStatusChanged,
				Payload:   s.eventPayload(&iv, prevStatus).ToMap(),
				DedupeKey: fmt.Sprintf("status:%s:%d", iv.ID, iv.Version),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if iv.Status != prevStatus {
		s.metrics.ObserveTransition(string(prevStatus), string(iv.Status))
		s.dispatch(ctx, notification.StatusChanged(
			iv.ID.String(), string(iv.Kind), string(iv.Status), string(prevStatus),
			iv.ScheduledAt, client.Email, technicianEmail(technician),
		))
	}

	iv.Client = client
	iv.Technician = technician
	return &iv, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*interventiondomain.InterventionDetail, error) {
	caller := identity.CallerFromContext(ctx)

	id, err := parseID(rawID)
	if err != nil {
		return nil, interventiondomain.ErrInvalidID
	}

	var iv interventiondomain.Intervention
	err = s.db.WithContext(ctx).
		Preload("Client").
		Preload("Technician").
		Preload("Supplier").
		First(&iv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interventiondomain.ErrInterventionNotFound
		}
		return nil, err
	}

	if caller.IsTechnician() {
		if iv.TechnicianID == nil || *iv.TechnicianID != caller.TechnicianID {
			return nil, interventiondomain.ErrForbidden
		}
	}

	total := lifecycle.TotalDuration(&iv, s.clock.Now())
	return &interventiondomain.InterventionDetail{
		Intervention:         iv,
		TotalDuration:        total,
		TotalDurationDisplay: lifecycle.FormatDuration(total),
	}, nil
}

func (s *Service) List(ctx context.Context, req interventiondomain.ListInterventionsRequest) (*interventiondomain.ListInterventionsResponse, error) {
	caller := identity.CallerFromContext(ctx)

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&interventiondomain.Intervention{})
	if caller.IsTechnician() {
		query = query.Where("technician_id = ?", caller.TechnicianID)
	}
	if req.Kind != "" {
		query = query.Where("kind = ?", req.Kind)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.From != nil {
		query = query.Where("scheduled_at >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where("scheduled_at <= ?", *req.To)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			`client_id IN (SELECT id FROM clients WHERE LOWER(name) LIKE ?)
			 OR technician_id IN (SELECT id FROM technicians WHERE LOWER(name) LIKE ?)
			 OR supplier_id IN (SELECT id FROM suppliers WHERE LOWER(name) LIKE ?)`,
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var interventions []interventiondomain.Intervention
	err := query.
		Preload("Client").
		Preload("Technician").
		Preload("Supplier").
		Order("scheduled_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&interventions).Error
	if err != nil {
		return nil, err
	}

	return &interventiondomain.ListInterventionsResponse{
		Interventions: interventions,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	caller := identity.CallerFromContext(ctx)
	if !caller.IsAdministrator() {
		return interventiondomain.ErrForbidden
	}

	id, err := parseID(rawID)
	if err != nil {
		return interventiondomain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&interventiondomain.Intervention{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return interventiondomain.ErrInterventionNotFound
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventInterventionDeleted,
			Payload:   map[string]any{"intervention_id": id.String()},
			DedupeKey: "deleted:" + id.String(),
		})
	})
}

// applySaveRules runs on every persistence: the supplier always mirrors the
// client's supplier, and a zero price is derived from the client's capacity
// rating. A manually entered non-zero price is never recomputed, and an
// unresolvable rating silently prices at 0.
func (s *Service) applySaveRules(iv *interventiondomain.Intervention, client *clientdomain.Client) {
	iv.SupplierID = client.SupplierID

	if iv.Price == 0 {
		if rating, ok := client.Capacity(); ok {
			iv.Price = pricing.ForKind(rating, iv.Kind)
		} else {
			iv.Price = 0
		}
	}
}

func (s *Service) eventPayload(iv *interventiondomain.Intervention, prev interventiondomain.Status) events.InterventionPayload {
	payload := events.InterventionPayload{
		InterventionID: iv.ID.String(),
		ClientID:       iv.ClientID.String(),
		Kind:           string(iv.Kind),
		Status:         string(iv.Status),
		PrevStatus:     string(prev),
	}
	if iv.TechnicianID != nil {
		payload.TechnicianID = iv.TechnicianID.String()
	}
	return payload
}

// dispatch delivers a notice without letting a transport failure surface to
// the caller: the state transition has already committed.
func (s *Service) dispatch(ctx context.Context, notice notification.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, notice); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("type", notice.Type),
			zap.String("intervention_id", notice.InterventionID),
			zap.Error(err),
		)
	}
}

func (s *Service) loadClient(ctx context.Context, rawID string) (*clientdomain.Client, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, interventiondomain.ErrClientNotFound
	}
	var client clientdomain.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interventiondomain.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) loadTechnician(ctx context.Context, rawID string) (*techniciandomain.Technician, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, interventiondomain.ErrTechnicianNotFound
	}
	var technician techniciandomain.Technician
	if err := s.db.WithContext(ctx).First(&technician, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interventiondomain.ErrTechnicianNotFound
		}
		return nil, err
	}
	return &technician, nil
}

func technicianEmail(technician *techniciandomain.Technician) string {
	if technician == nil {
		return ""
	}
	return technician.Email
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
