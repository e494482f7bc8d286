package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Device struct {
	ID         snowflake.ID   `json:"id" gorm:"primaryKey"`
	CustomerID snowflake.ID   `json:"customer_id" gorm:"not null;index"`
	Brand      string         `json:"brand" gorm:"type:text;not null"`
	Model      string         `json:"model" gorm:"type:text;not null"`
	SerialNo   string         `json:"serial_no,omitempty" gorm:"type:text;index"`
	Condition  string         `json:"condition,omitempty" gorm:"type:text"`
	Accessory  string         `json:"accessory,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"not null"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Device) TableName() string { return "devices" }
