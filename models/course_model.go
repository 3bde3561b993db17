package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseStatusActive   = "Active"
	CourseStatusInactive = "Inactive"

	ListingTypeFree = "free"
	ListingTypePaid = "paid"
)

type Course struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InstitutionID uuid.UUID `gorm:"not null;index" json:"institution_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Category      string    `gorm:"size:50;not null" json:"category"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`
	Fees          *float64  `gorm:"type:numeric(10,2)" json:"fees,omitempty"`
	Status        string    `gorm:"size:20;not null;default:'Inactive'" json:"status"`
	ListingType   *string   `gorm:"size:10" json:"listing_type,omitempty"`

	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`

	Institution Institution `gorm:"foreignkey:InstitutionID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
