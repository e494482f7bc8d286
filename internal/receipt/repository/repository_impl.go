package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/receipt/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, receipt *domain.Receipt) error {
	return db.WithContext(ctx).Create(receipt).Error
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := db.WithContext(ctx).First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repo) GetByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := db.WithContext(ctx).First(&receipt, "invoice_id = ?", invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repo) GetByNumber(ctx context.Context, db *gorm.DB, receiptNo string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := db.WithContext(ctx).First(&receipt, "receipt_no = ?", receiptNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]domain.Receipt, error) {
	stmt := db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var receipts []domain.Receipt
	if err := stmt.Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}
