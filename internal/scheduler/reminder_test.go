package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/clock"
	"github.com/sahelsolar/fieldops/internal/events"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	"github.com/sahelsolar/fieldops/internal/notification"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

var schedulerNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	notices []notification.Notice
}

func (r *recordingNotifier) Dispatch(_ context.Context, notice notification.Notice) error {
	r.notices = append(r.notices, notice)
	return nil
}

type reminderFixture struct {
	scheduler *Scheduler
	db        *gorm.DB
	node      *snowflake.Node
	notifier  *recordingNotifier
	client    *clientdomain.Client
}

func setupReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&clientdomain.Client{},
		&techniciandomain.Technician{},
		&interventiondomain.Intervention{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = db.Exec(`CREATE TABLE ops_events (
		id BIGINT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT,
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create ops_events: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	client := &clientdomain.Client{
		ID:                  node.Generate(),
		Name:                "Awa Diop",
		Phone:               "771112233",
		Email:               "awa@example.sn",
		EquipmentDescriptor: "5KVA hybrid",
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	notifier := &recordingNotifier{}
	s := New(db, zap.NewNop(), Config{BatchSize: 10}, clock.Fixed{At: schedulerNow}, events.NewOutbox(db, node), notifier, nil)

	return &reminderFixture{scheduler: s, db: db, node: node, notifier: notifier, client: client}
}

func (f *reminderFixture) seedIntervention(t *testing.T, status interventiondomain.Status, scheduledAt time.Time) snowflake.ID {
	t.Helper()
	iv := &interventiondomain.Intervention{
		ID:          f.node.Generate(),
		Kind:        interventiondomain.KindMaintenance,
		Status:      status,
		ScheduledAt: scheduledAt,
		ClientID:    f.client.ID,
		Version:     1,
	}
	if err := f.db.Create(iv).Error; err != nil {
		t.Fatalf("seed intervention: %v", err)
	}
	return iv.ID
}

func TestRunOnceSendsReminderInsideWindow(t *testing.T) {
	f := setupReminderFixture(t)
	id := f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(24*time.Hour))

	sent, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	if len(f.notifier.notices) != 1 {
		t.Fatalf("notices = %+v", f.notifier.notices)
	}
	notice := f.notifier.notices[0]
	if notice.Type != notification.TypeReminder || notice.InterventionID != id.String() {
		t.Fatalf("notice = %+v", notice)
	}
	if notice.ClientEmail != f.client.Email {
		t.Fatalf("client email = %q", notice.ClientEmail)
	}

	var flagged bool
	f.db.Raw(`SELECT reminder_sent FROM interventions WHERE id = ?`, id).Scan(&flagged)
	if !flagged {
		t.Fatal("reminder_sent not set")
	}

	var eventCount int64
	f.db.Table("ops_events").Where("event_type = ?", events.EventInterventionReminderSent).Count(&eventCount)
	if eventCount != 1 {
		t.Fatalf("events = %d, want 1", eventCount)
	}
}

func TestRunOnceWindowEdges(t *testing.T) {
	f := setupReminderFixture(t)

	// 23h40m out: inside the half-hour slack around the 24h lead.
	early := f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(23*time.Hour+40*time.Minute))
	// 24h50m out: scanned but not yet due.
	late := f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(24*time.Hour+50*time.Minute))
	// 2h out: the dispatch window has already passed.
	f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(2*time.Hour))

	sent, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if f.notifier.notices[0].InterventionID != early.String() {
		t.Fatalf("dispatched %s, want %s", f.notifier.notices[0].InterventionID, early)
	}

	var flagged bool
	f.db.Raw(`SELECT reminder_sent FROM interventions WHERE id = ?`, late).Scan(&flagged)
	if flagged {
		t.Fatal("out-of-window intervention must keep reminder_sent false")
	}
}

func TestRunOnceSkipsNonPlannedAndAlreadySent(t *testing.T) {
	f := setupReminderFixture(t)

	f.seedIntervention(t, interventiondomain.StatusInProgress, schedulerNow.Add(24*time.Hour))
	sentID := f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(24*time.Hour))
	f.db.Exec(`UPDATE interventions SET reminder_sent = TRUE WHERE id = ?`, sentID)

	sent, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if len(f.notifier.notices) != 0 {
		t.Fatalf("unexpected notices: %+v", f.notifier.notices)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	f := setupReminderFixture(t)
	f.seedIntervention(t, interventiondomain.StatusPlanned, schedulerNow.Add(24*time.Hour))

	if _, err := f.scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	sent, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if sent != 0 {
		t.Fatalf("second pass sent = %d, want 0", sent)
	}
	if len(f.notifier.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(f.notifier.notices))
	}
}
