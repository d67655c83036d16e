package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
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

func NewService(p ServiceParam) supplierdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("supplier.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req supplierdomain.CreateSupplierRequest) (*supplierdomain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, supplierdomain.ErrInvalidName
	}

	supplier := supplierdomain.Supplier{
		ID:      s.genID.Generate(),
		Name:    name,
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) Update(ctx context.Context, req supplierdomain.UpdateSupplierRequest) (*supplierdomain.Supplier, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, supplierdomain.ErrInvalidID
	}

	var supplier supplierdomain.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, supplierdomain.ErrSupplierNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, supplierdomain.ErrInvalidName
		}
		supplier.Name = name
	}
	if req.Address != nil {
		supplier.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		supplier.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		supplier.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.db.WithContext(ctx).Save(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*supplierdomain.Supplier, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, supplierdomain.ErrInvalidID
	}

	var supplier supplierdomain.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, supplierdomain.ErrSupplierNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) List(ctx context.Context) ([]supplierdomain.Supplier, error) {
	var suppliers []supplierdomain.Supplier
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return supplierdomain.ErrInvalidID
	}

	// Interventions and clients keep their rows but lose the supplier
	// reference, mirroring the schema's ON DELETE SET NULL.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&interventiondomain.Intervention{}).
			Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error
		if err != nil {
			return err
		}
		err = tx.Model(&clientdomain.Client{}).
			Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Delete(&supplierdomain.Supplier{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return supplierdomain.ErrSupplierNotFound
		}
		return nil
	})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
