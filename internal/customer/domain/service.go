package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Note    string `json:"note,omitempty"`
}

type ListFilter struct {
	NameContains string
	Limit        int
}

type Service interface {
	Create(ctx context.Context, input CustomerInput, actorID string) (*Customer, error)
	Update(ctx context.Context, id snowflake.ID, input CustomerInput, actorID string) (*Customer, error)
	Delete(ctx context.Context, id snowflake.ID, actorID string) error
	Get(ctx context.Context, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Customer, error)
}
