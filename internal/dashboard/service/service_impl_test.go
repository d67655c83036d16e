package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/clock"
	dashboarddomain "github.com/sahelsolar/fieldops/internal/dashboard/domain"
	"github.com/sahelsolar/fieldops/internal/identity"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

var dashNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type dashFixture struct {
	svc        dashboarddomain.Service
	db         *gorm.DB
	node       *snowflake.Node
	client     *clientdomain.Client
	technician *techniciandomain.Technician
}

func setupDashFixture(t *testing.T) *dashFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&supplierdomain.Supplier{},
		&clientdomain.Client{},
		&techniciandomain.Technician{},
		&interventiondomain.Intervention{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
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
	technician := &techniciandomain.Technician{
		ID:    node.Generate(),
		Name:  "Moussa Ba",
		Phone: "778889900",
		Email: "moussa@example.sn",
	}
	if err := db.Create(technician).Error; err != nil {
		t.Fatalf("seed technician: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.Fixed{At: dashNow},
	})

	return &dashFixture{svc: svc, db: db, node: node, client: client, technician: technician}
}

func (f *dashFixture) seed(t *testing.T, status interventiondomain.Status, scheduledAt time.Time, price int64, technicianID *snowflake.ID) {
	t.Helper()
	iv := &interventiondomain.Intervention{
		ID:           f.node.Generate(),
		Kind:         interventiondomain.KindMaintenance,
		Status:       status,
		ScheduledAt:  scheduledAt,
		Price:        price,
		ClientID:     f.client.ID,
		TechnicianID: technicianID,
		Version:      1,
	}
	if err := f.db.Create(iv).Error; err != nil {
		t.Fatalf("seed intervention: %v", err)
	}
}

func TestAdminOverviewAggregates(t *testing.T) {
	f := setupDashFixture(t)

	f.seed(t, interventiondomain.StatusCompleted, dashNow.Add(-48*time.Hour), 30000, &f.technician.ID)
	f.seed(t, interventiondomain.StatusCompleted, dashNow.Add(-24*time.Hour), 45000, nil)
	f.seed(t, interventiondomain.StatusInProgress, dashNow.Add(-2*time.Hour), 20000, &f.technician.ID)
	f.seed(t, interventiondomain.StatusPlanned, dashNow.Add(48*time.Hour), 15000, nil)
	f.seed(t, interventiondomain.StatusCancelled, dashNow.Add(-72*time.Hour), 0, nil)

	ctx := identity.WithCaller(context.Background(), identity.Administrator())
	overview, err := f.svc.AdminOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if overview.TotalClients != 1 || overview.TotalTechnicians != 1 {
		t.Fatalf("totals = %d clients, %d technicians", overview.TotalClients, overview.TotalTechnicians)
	}
	counts := overview.Interventions
	if counts.Total != 5 || counts.Completed != 2 || counts.InProgress != 1 || counts.Planned != 1 || counts.Cancelled != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if overview.CompletedRevenue != 75000 {
		t.Fatalf("completed revenue = %d, want 75000", overview.CompletedRevenue)
	}
	if overview.BookedRevenue != 110000 {
		t.Fatalf("booked revenue = %d, want 110000", overview.BookedRevenue)
	}
	if len(overview.Upcoming) != 2 {
		t.Fatalf("upcoming = %d, want 2", len(overview.Upcoming))
	}
	if len(overview.Recent) != 5 {
		t.Fatalf("recent = %d, want 5", len(overview.Recent))
	}
}

func TestAdminOverviewRequiresAdmin(t *testing.T) {
	f := setupDashFixture(t)

	ctx := identity.WithCaller(context.Background(), identity.Technician(f.technician.ID))
	if _, err := f.svc.AdminOverview(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTechnicianOverviewScopesAndFlagsOverdue(t *testing.T) {
	f := setupDashFixture(t)

	f.seed(t, interventiondomain.StatusPlanned, dashNow.Add(-24*time.Hour), 15000, &f.technician.ID)
	f.seed(t, interventiondomain.StatusCompleted, dashNow.Add(-48*time.Hour), 30000, &f.technician.ID)
	f.seed(t, interventiondomain.StatusPlanned, dashNow.Add(24*time.Hour), 15000, nil)

	ctx := identity.WithCaller(context.Background(), identity.Technician(f.technician.ID))
	overview, err := f.svc.TechnicianOverview(ctx, f.technician.ID.String())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if overview.Interventions.Total != 2 {
		t.Fatalf("total = %d, want 2", overview.Interventions.Total)
	}
	if len(overview.Overdue) != 1 {
		t.Fatalf("overdue = %d, want 1", len(overview.Overdue))
	}

	otherID := f.node.Generate()
	if _, err := f.svc.TechnicianOverview(ctx, otherID.String()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden on foreign overview, got %v", err)
	}
}
