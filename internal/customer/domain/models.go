package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Customer struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:text;not null;index"`
	Phone     string         `json:"phone,omitempty" gorm:"type:text"`
	Email     string         `json:"email,omitempty" gorm:"type:text"`
	Address   string         `json:"address,omitempty" gorm:"type:text"`
	Note      string         `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Customer) TableName() string { return "customers" }
