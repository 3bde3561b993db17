package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Institution struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"not null;unique" json:"user_id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Category string    `gorm:"size:50;not null" json:"category"`
	City     *string   `gorm:"size:100" json:"city,omitempty"`
	Phone    *string   `gorm:"size:20" json:"phone,omitempty"`
	About    *string   `gorm:"type:text" json:"about,omitempty"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
