package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahelsolar/fieldops/internal/capacity"
	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	"github.com/sahelsolar/fieldops/internal/pricing"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) clientdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req clientdomain.CreateClientRequest) (*clientdomain.Client, error) {
	client := clientdomain.Client{
		ID:                  s.genID.Generate(),
		Name:                strings.TrimSpace(req.Name),
		Address:             strings.TrimSpace(req.Address),
		Phone:               strings.TrimSpace(req.Phone),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		InstalledAt:         req.InstalledAt,
		EquipmentDescriptor: strings.TrimSpace(req.EquipmentDescriptor),
		Notes:               strings.TrimSpace(req.Notes),
		SuppliedMaterials:   strings.TrimSpace(req.SuppliedMaterials),
	}

	if err := validateClient(&client); err != nil {
		return nil, err
	}

	if rawID := strings.TrimSpace(req.SupplierID); rawID != "" {
		supplierID, err := s.resolveSupplier(ctx, rawID)
		if err != nil {
			return nil, err
		}
		client.SupplierID = &supplierID
	}

	if err := s.ensureUniqueContact(ctx, client.Phone, client.Email, 0); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) Update(ctx context.Context, req clientdomain.UpdateClientRequest) (*clientdomain.Client, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, clientdomain.ErrInvalidID
	}

	var client clientdomain.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clientdomain.ErrClientNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.InstalledAt != nil {
		client.InstalledAt = *req.InstalledAt
	}
	if req.EquipmentDescriptor != nil {
		client.EquipmentDescriptor = strings.TrimSpace(*req.EquipmentDescriptor)
	}
	if req.Notes != nil {
		client.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.SuppliedMaterials != nil {
		client.SuppliedMaterials = strings.TrimSpace(*req.SuppliedMaterials)
	}
	if req.SupplierID != nil {
		if rawID := strings.TrimSpace(*req.SupplierID); rawID == "" {
			client.SupplierID = nil
		} else {
			supplierID, err := s.resolveSupplier(ctx, rawID)
			if err != nil {
				return nil, err
			}
			client.SupplierID = &supplierID
		}
	}

	if err := validateClient(&client); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueContact(ctx, client.Phone, client.Email, client.ID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*clientdomain.Client, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, clientdomain.ErrInvalidID
	}

	var client clientdomain.Client
	err = s.db.WithContext(ctx).
		Preload("Supplier").
		First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clientdomain.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) List(ctx context.Context, search string) ([]clientdomain.Client, error) {
	query := s.db.WithContext(ctx).Preload("Supplier").Order("name ASC")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, "%"+search+"%",
		)
	}

	var clients []clientdomain.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return clientdomain.ErrInvalidID
	}

	// Interventions follow their client, mirroring the schema's
	// ON DELETE CASCADE.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("client_id = ?", id).
			Delete(&interventiondomain.Intervention{}).Error
		if err != nil {
			return err
		}

		result := tx.Delete(&clientdomain.Client{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return clientdomain.ErrClientNotFound
		}
		return nil
	})
}

func (s *Service) PreviewPrice(ctx context.Context, rawID string, kind string) (*clientdomain.PricePreview, error) {
	client, err := s.GetByID(ctx, rawID)
	if err != nil {
		return nil, err
	}

	rating, ok := client.Capacity()
	if !ok {
		return nil, clientdomain.ErrInvalidDescriptor
	}

	interventionKind := interventiondomain.Kind(strings.TrimSpace(kind))
	if !interventionKind.Valid() {
		interventionKind = interventiondomain.KindMaintenance
	}

	return &clientdomain.PricePreview{
		ClientID: client.ID.String(),
		Capacity: rating,
		Kind:     string(interventionKind),
		Price:    pricing.ForKind(rating, interventionKind),
	}, nil
}

func (s *Service) resolveSupplier(ctx context.Context, rawID string) (snowflake.ID, error) {
	id, err := parseID(rawID)
	if err != nil {
		return 0, clientdomain.ErrSupplierNotFound
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&supplierdomain.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, clientdomain.ErrSupplierNotFound
	}
	return id, nil
}

func (s *Service) ensureUniqueContact(ctx context.Context, phone, email string, selfID snowflake.ID) error {
	query := s.db.WithContext(ctx).Model(&clientdomain.Client{}).
		Where("phone = ? OR email = ?", phone, email)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return clientdomain.ErrDuplicateContact
	}
	return nil
}

func validateClient(client *clientdomain.Client) error {
	if client.Name == "" {
		return clientdomain.ErrInvalidName
	}
	if client.Address == "" {
		return clientdomain.ErrInvalidAddress
	}
	if client.Phone == "" {
		return clientdomain.ErrInvalidPhone
	}
	if client.Email == "" || !strings.Contains(client.Email, "@") {
		return clientdomain.ErrInvalidEmail
	}
	if err := capacity.Validate(client.EquipmentDescriptor); err != nil {
		return clientdomain.ErrInvalidDescriptor
	}
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
