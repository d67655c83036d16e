package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
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

func NewService(p ServiceParam) techniciandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("technician.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req techniciandomain.CreateTechnicianRequest) (*techniciandomain.Technician, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, techniciandomain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, techniciandomain.ErrInvalidEmail
	}

	technician := techniciandomain.Technician{
		ID:       s.genID.Generate(),
		Name:     name,
		Phone:    strings.TrimSpace(req.Phone),
		Email:    email,
		PhotoURL: strings.TrimSpace(req.PhotoURL),
	}
	if err := s.db.WithContext(ctx).Create(&technician).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

func (s *Service) Update(ctx context.Context, req techniciandomain.UpdateTechnicianRequest) (*techniciandomain.Technician, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, techniciandomain.ErrInvalidID
	}

	var technician techniciandomain.Technician
	if err := s.db.WithContext(ctx).First(&technician, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, techniciandomain.ErrTechnicianNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, techniciandomain.ErrInvalidName
		}
		technician.Name = name
	}
	if req.Phone != nil {
		technician.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, techniciandomain.ErrInvalidEmail
		}
		technician.Email = email
	}
	if req.PhotoURL != nil {
		technician.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}

	if err := s.db.WithContext(ctx).Save(&technician).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*techniciandomain.Technician, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, techniciandomain.ErrInvalidID
	}

	var technician techniciandomain.Technician
	if err := s.db.WithContext(ctx).First(&technician, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, techniciandomain.ErrTechnicianNotFound
		}
		return nil, err
	}
	return &technician, nil
}

func (s *Service) List(ctx context.Context) ([]techniciandomain.Technician, error) {
	var technicians []techniciandomain.Technician
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&technicians).Error; err != nil {
		return nil, err
	}
	return technicians, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return techniciandomain.ErrInvalidID
	}

	// Interventions survive their technician unassigned, mirroring the
	// schema's ON DELETE SET NULL.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&interventiondomain.Intervention{}).
			Where("technician_id = ?", id).
			Update("technician_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Delete(&techniciandomain.Technician{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return techniciandomain.ErrTechnicianNotFound
		}
		return nil
	})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
