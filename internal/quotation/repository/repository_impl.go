package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/quotation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quotation *domain.Quotation) error {
	return db.WithContext(ctx).Create(quotation).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, quotation *domain.Quotation) error {
	return db.WithContext(ctx).Save(quotation).Error
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := db.WithContext(ctx).First(&quotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repo) GetByNumber(ctx context.Context, db *gorm.DB, quotationNo string) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := db.WithContext(ctx).First(&quotation, "quotation_no = ?", quotationNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Quotation, error) {
	stmt := db.WithContext(ctx).Model(&domain.Quotation{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.JobID != nil {
		stmt = stmt.Where("job_id = ?", *filter.JobID)
	}
	if q := strings.ToUpper(strings.TrimSpace(filter.NumberContains)); q != "" {
		stmt = stmt.Where("quotation_no LIKE ?", "%"+q+"%")
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var quotations []domain.Quotation
	if err := stmt.Find(&quotations).Error; err != nil {
		return nil, err
	}
	return quotations, nil
}

func (r *repo) ListExpirable(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := db.WithContext(ctx).
		Where("status = ?", domain.QuotationStatusSent).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Order("valid_until asc").
		Find(&quotations).Error
	if err != nil {
		return nil, err
	}
	return quotations, nil
}
