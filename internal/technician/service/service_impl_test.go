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
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

type technicianFixture struct {
	svc  techniciandomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setupTechnicianFixture(t *testing.T) *technicianFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&supplierdomain.Supplier{},
		&techniciandomain.Technician{},
		&clientdomain.Client{},
		&interventiondomain.Intervention{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop(), GenID: node})
	return &technicianFixture{svc: svc, db: db, node: node}
}

func TestTechnicianCRUD(t *testing.T) {
	f := setupTechnicianFixture(t)

	if _, err := f.svc.Create(context.Background(), techniciandomain.CreateTechnicianRequest{
		Name: "Moussa Ba",
	}); !errors.Is(err, techniciandomain.ErrInvalidEmail) {
		t.Fatalf("err = %v, want invalid_email", err)
	}

	tech, err := f.svc.Create(context.Background(), techniciandomain.CreateTechnicianRequest{
		Name:  "Moussa Ba",
		Phone: "778889900",
		Email: "Moussa@Example.sn",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tech.Email != "moussa@example.sn" {
		t.Fatalf("email not lowercased: %q", tech.Email)
	}

	phone := "770001122"
	updated, err := f.svc.Update(context.Background(), techniciandomain.UpdateTechnicianRequest{
		ID:    tech.ID.String(),
		Phone: &phone,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != phone {
		t.Fatalf("phone = %q", updated.Phone)
	}

	if err := f.svc.Delete(context.Background(), tech.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), tech.ID.String()); !errors.Is(err, techniciandomain.ErrTechnicianNotFound) {
		t.Fatalf("second delete err = %v, want technician_not_found", err)
	}
}

func TestDeleteTechnicianUnassignsInterventions(t *testing.T) {
	f := setupTechnicianFixture(t)

	tech, err := f.svc.Create(context.Background(), techniciandomain.CreateTechnicianRequest{
		Name:  "Moussa Ba",
		Email: "moussa@example.sn",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client := &clientdomain.Client{
		ID:                  f.node.Generate(),
		Name:                "Awa Diop",
		Address:             "Thies",
		Phone:               "772224455",
		Email:               "awa@example.sn",
		InstalledAt:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EquipmentDescriptor: "8KVA 10KWH",
	}
	if err := f.db.Create(client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	iv := &interventiondomain.Intervention{
		ID:           f.node.Generate(),
		Kind:         interventiondomain.KindMaintenance,
		Status:       interventiondomain.StatusPlanned,
		ScheduledAt:  time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
		ClientID:     client.ID,
		TechnicianID: &tech.ID,
		Version:      1,
	}
	if err := f.db.Create(iv).Error; err != nil {
		t.Fatalf("seed intervention: %v", err)
	}

	if err := f.svc.Delete(context.Background(), tech.ID.String()); err != nil {
		t.Fatalf("delete with assigned intervention: %v", err)
	}

	var got interventiondomain.Intervention
	if err := f.db.First(&got, "id = ?", iv.ID).Error; err != nil {
		t.Fatalf("reload intervention: %v", err)
	}
	if got.TechnicianID != nil {
		t.Fatalf("technician reference not cleared: %v", got.TechnicianID)
	}
}
