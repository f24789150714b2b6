package model

import (
	"time"

	"github.com/google/uuid"
)

// services: услуга, принадлежащая одному провайдеру.
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProviderID uuid.UUID `gorm:"type:uuid;not null;index" json:"provider_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`

	Title           string  `gorm:"type:varchar(255);not null" json:"title"`
	Description     string  `gorm:"type:text" json:"description"`
	Price           float64 `gorm:"not null;index" json:"price"`
	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`
	IsAvailable     bool    `gorm:"not null;index" json:"is_available"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Provider *ProviderProfile `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Category *Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
