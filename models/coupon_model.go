package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Coupon struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code               string    `gorm:"size:50;not null;unique" json:"code"`
	DiscountPercentage float64   `gorm:"type:numeric(5,2);not null" json:"discount_percentage"`
	ValidTill          time.Time `gorm:"not null" json:"valid_till"`
	IsActive           bool      `gorm:"default:true" json:"is_active"`
	MaxUses            int       `gorm:"default:0" json:"max_uses"` // 0 means unlimited
	UseCount           int       `gorm:"default:0" json:"use_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
