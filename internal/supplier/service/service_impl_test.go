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

type supplierFixture struct {
	svc  supplierdomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setupSupplierFixture(t *testing.T) *supplierFixture {
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
	return &supplierFixture{svc: svc, db: db, node: node}
}

func TestSupplierCRUD(t *testing.T) {
	f := setupSupplierFixture(t)

	supplier, err := f.svc.Create(context.Background(), supplierdomain.CreateSupplierRequest{
		Name:    "Sahel Solar Distribution",
		Address: "Dakar, Zone industrielle",
		Phone:   "338210000",
		Email:   "contact@saheldist.sn",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Sahel Solar Distribution SARL"
	updated, err := f.svc.Update(context.Background(), supplierdomain.UpdateSupplierRequest{
		ID:   supplier.ID.String(),
		Name: &name,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name = %q", updated.Name)
	}

	list, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}

	if err := f.svc.Delete(context.Background(), supplier.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), supplier.ID.String()); !errors.Is(err, supplierdomain.ErrSupplierNotFound) {
		t.Fatalf("second delete err = %v, want supplier_not_found", err)
	}
}

func TestDeleteSupplierDetachesReferences(t *testing.T) {
	f := setupSupplierFixture(t)

	supplier, err := f.svc.Create(context.Background(), supplierdomain.CreateSupplierRequest{
		Name: "Sahel Solar Distribution",
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
		SupplierID:          &supplier.ID,
	}
	if err := f.db.Create(client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	iv := &interventiondomain.Intervention{
		ID:          f.node.Generate(),
		Kind:        interventiondomain.KindMaintenance,
		Status:      interventiondomain.StatusPlanned,
		ScheduledAt: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
		ClientID:    client.ID,
		SupplierID:  &supplier.ID,
		Version:     1,
	}
	if err := f.db.Create(iv).Error; err != nil {
		t.Fatalf("seed intervention: %v", err)
	}

	if err := f.svc.Delete(context.Background(), supplier.ID.String()); err != nil {
		t.Fatalf("delete with linked rows: %v", err)
	}

	var gotClient clientdomain.Client
	if err := f.db.First(&gotClient, "id = ?", client.ID).Error; err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if gotClient.SupplierID != nil {
		t.Fatalf("client supplier reference not cleared: %v", gotClient.SupplierID)
	}

	var gotIv interventiondomain.Intervention
	if err := f.db.First(&gotIv, "id = ?", iv.ID).Error; err != nil {
		t.Fatalf("reload intervention: %v", err)
	}
	if gotIv.SupplierID != nil {
		t.Fatalf("intervention supplier reference not cleared: %v", gotIv.SupplierID)
	}
}
