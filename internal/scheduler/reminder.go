// Package scheduler runs the appointment reminder worker. It scans planned
// interventions approaching their scheduled time and sends a single reminder
// roughly 24 hours ahead. The reminder_sent flag is claimed with an atomic
// set-if-false update, so concurrent workers never double-send.
package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/events"
	"github.com/sahelsolar/fieldops/internal/notification"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
)

const (
	// scanWindow bounds the candidate query. It is wider than the dispatch
	// window so a slow poll cycle cannot skip over an appointment.
	scanWindow = 25 * time.Hour

	// Reminders go out when the appointment is dispatchLead away, give or
	// take dispatchSlack on either side.
	dispatchLead  = 24 * time.Hour
	dispatchSlack = 30 * time.Minute
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	outbox   *events.Outbox
	notifier notification.Notifier
	metrics  *metrics.OpsMetrics
}

func New(db *gorm.DB, log *zap.Logger, cfg Config, clk clock.Clock, outbox *events.Outbox, notifier notification.Notifier, m *metrics.OpsMetrics) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Scheduler{
		db:       db,
		log:      log.Named("scheduler.reminder"),
		cfg:      cfg,
		clock:    clk,
		outbox:   outbox,
		notifier: notifier,
		metrics:  m,
	}
}

// WorkReminder is one reminder candidate joined with the contact addresses
// the notice needs.
type WorkReminder struct {
	ID              snowflake.ID
	Kind            string
	ScheduledAt     time.Time
	ClientEmail     string
	TechnicianEmail string
}

// RunForever polls until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if sent, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("reminder pass failed", zap.Error(err))
		} else if sent > 0 {
			s.log.Info("reminders dispatched", zap.Int("count", sent))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single reminder pass and returns how many reminders
// were dispatched.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()

	candidates, err := s.fetchCandidates(ctx, now)
	if err != nil {
		return 0, err
	}
	s.metrics.SetReminderBacklog(len(candidates))

	sent := 0
	for _, candidate := range candidates {
		lead := candidate.ScheduledAt.Sub(now)
		if lead < dispatchLead-dispatchSlack || lead > dispatchLead+dispatchSlack {
			continue
		}

		claimed, err := s.claim(ctx, candidate.ID)
		if err != nil {
			s.log.Warn("reminder claim failed",
				zap.String("intervention_id", candidate.ID.String()), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		s.dispatch(ctx, candidate)
		sent++
	}
	return sent, nil
}

func (s *Scheduler) fetchCandidates(ctx context.Context, now time.Time) ([]WorkReminder, error) {
	var candidates []WorkReminder
	err := s.db.WithContext(ctx).Raw(
		`SELECT i.id, i.kind, i.scheduled_at,
		        c.email AS client_email,
		        COALESCE(t.email, '') AS technician_email
		 FROM interventions i
		 JOIN clients c ON c.id = i.client_id
		 LEFT JOIN technicians t ON t.id = i.technician_id
		 WHERE i.status = 'planned'
		   AND i.reminder_sent = FALSE
		   AND i.scheduled_at > ?
		   AND i.scheduled_at <= ?
		 ORDER BY i.scheduled_at ASC, i.id ASC
		 LIMIT ?`,
		now,
		now.Add(scanWindow),
		s.cfg.BatchSize,
	).Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// claim flips reminder_sent exactly once. A false return means another
// worker got there first or the intervention moved out of planned.
func (s *Scheduler) claim(ctx context.Context, id snowflake.ID) (bool, error) {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE interventions
		 SET reminder_sent = TRUE, updated_at = ?
		 WHERE id = ? AND reminder_sent = FALSE AND status = 'planned'`,
		s.clock.Now(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Scheduler) dispatch(ctx context.Context, candidate WorkReminder) {
	notice := notification.Reminder(
		candidate.ID.String(), candidate.Kind, candidate.ScheduledAt,
		candidate.ClientEmail, candidate.TechnicianEmail,
	)
	if err := s.notifier.Dispatch(ctx, notice); err != nil {
		s.log.Warn("reminder dispatch failed",
			zap.String("intervention_id", candidate.ID.String()), zap.Error(err))
	}

	err := s.outbox.Publish(ctx, events.Event{
		Type: events.EventInterventionReminderSent,
		Payload: map[string]any{
			"intervention_id": candidate.ID.String(),
			"scheduled_at":    candidate.ScheduledAt,
		},
		DedupeKey: "reminder:" + candidate.ID.String(),
	})
	if err != nil {
		s.log.Warn("reminder event publish failed",
			zap.String("intervention_id", candidate.ID.String()), zap.Error(err))
	}

	s.metrics.ObserveReminderSent()
}
