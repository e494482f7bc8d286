package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	"github.com/smallbiznis/servisdesk/internal/device/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	AuditSvc     auditdomain.Service
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	auditSvc     auditdomain.Service
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("device.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		auditSvc:     p.AuditSvc,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.DeviceInput, actorID string) (*domain.Device, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var device *domain.Device
	err := s.db.Transaction(func(tx *gorm.DB) error {
		owner, err := s.customerRepo.Get(ctx, tx, input.CustomerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return fmt.Errorf("%w: customer %s", apperr.ErrNotFound, input.CustomerID)
		}

		device = &domain.Device{
			ID:         s.genID.Generate(),
			CustomerID: input.CustomerID,
			Brand:      strings.TrimSpace(input.Brand),
			Model:      strings.TrimSpace(input.Model),
			SerialNo:   input.SerialNo,
			Condition:  input.Condition,
			Accessory:  input.Accessory,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.repo.Insert(ctx, tx, device); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionDeviceCreated,
			EntityType:  auditdomain.EntityTypeDevice,
			EntityID:    device.ID.String(),
			Summary:     fmt.Sprintf("New device: %s %s", device.Brand, device.Model),
			Metadata:    map[string]any{"customer_id": input.CustomerID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, input domain.DeviceInput, actorID string) (*domain.Device, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var device *domain.Device
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		device, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		device.CustomerID = input.CustomerID
		device.Brand = strings.TrimSpace(input.Brand)
		device.Model = strings.TrimSpace(input.Model)
		device.SerialNo = input.SerialNo
		device.Condition = input.Condition
		device.Accessory = input.Accessory
		device.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, device); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionDeviceUpdated,
			EntityType:  auditdomain.EntityTypeDevice,
			EntityID:    device.ID.String(),
			Summary:     fmt.Sprintf("Device %s %s updated", device.Brand, device.Model),
		})
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID, actorID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		device, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionDeviceDeleted,
			EntityType:  auditdomain.EntityTypeDevice,
			EntityID:    id.String(),
			Summary:     fmt.Sprintf("Device %s %s deleted", device.Brand, device.Model),
		})
	})
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Device, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Device, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Device, error) {
	device, err := s.repo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, fmt.Errorf("%w: device %s", apperr.ErrNotFound, id)
	}
	return device, nil
}

func validateInput(input domain.DeviceInput) error {
	if input.CustomerID == 0 {
		return fmt.Errorf("%w: customer_id is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(input.Brand) == "" {
		return fmt.Errorf("%w: brand is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(input.Model) == "" {
		return fmt.Errorf("%w: model is required", apperr.ErrValidation)
	}
	return nil
}
