package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type DeviceInput struct {
	CustomerID snowflake.ID `json:"customer_id" binding:"required"`
	Brand      string       `json:"brand" binding:"required"`
	Model      string       `json:"model" binding:"required"`
	SerialNo   string       `json:"serial_no,omitempty"`
	Condition  string       `json:"condition,omitempty"`
	Accessory  string       `json:"accessory,omitempty"`
}

type ListFilter struct {
	CustomerID *snowflake.ID
	Limit      int
}

type Service interface {
	Create(ctx context.Context, input DeviceInput, actorID string) (*Device, error)
	Update(ctx context.Context, id snowflake.ID, input DeviceInput, actorID string) (*Device, error)
	Delete(ctx context.Context, id snowflake.ID, actorID string) error
	Get(ctx context.Context, id snowflake.ID) (*Device, error)
	List(ctx context.Context, filter ListFilter) ([]Device, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, device *Device) error
	Update(ctx context.Context, db *gorm.DB, device *Device) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Device, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Device, error)
}
