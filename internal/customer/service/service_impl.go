package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	AuditSvc auditdomain.Service
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	auditSvc auditdomain.Service
	repo     domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		auditSvc: p.AuditSvc,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.CustomerInput, actorID string) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}

	now := s.clock.Now()
	customer := &domain.Customer{
		ID:        s.genID.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		Note:      input.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, customer); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionCustomerCreated,
			EntityType:  auditdomain.EntityTypeCustomer,
			EntityID:    customer.ID.String(),
			Summary:     fmt.Sprintf("New customer: %s", customer.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, input domain.CustomerInput, actorID string) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}

	var customer *domain.Customer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		customer, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		customer.Name = strings.TrimSpace(input.Name)
		customer.Phone = input.Phone
		customer.Email = input.Email
		customer.Address = input.Address
		customer.Note = input.Note
		customer.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, customer); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionCustomerUpdated,
			EntityType:  auditdomain.EntityTypeCustomer,
			EntityID:    customer.ID.String(),
			Summary:     fmt.Sprintf("Customer %s updated", customer.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID, actorID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionCustomerDeleted,
			EntityType:  auditdomain.EntityTypeCustomer,
			EntityID:    id.String(),
			Summary:     fmt.Sprintf("Customer %s deleted", customer.Name),
		})
	})
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Customer, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Customer, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	customer, err := s.repo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer %s", apperr.ErrNotFound, id)
	}
	return customer, nil
}
