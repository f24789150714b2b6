package model

import (
	"time"

	"github.com/google/uuid"
)

// locations
type Location struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name       string   `gorm:"type:varchar(255);not null" json:"name"`
	Address    string   `gorm:"type:text" json:"address"`
	City       string   `gorm:"type:varchar(128);index" json:"city"`
	State      string   `gorm:"type:varchar(128)" json:"state"`
	Country    string   `gorm:"type:varchar(128)" json:"country"`
	PostalCode string   `gorm:"type:varchar(32)" json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	IsActive   bool     `gorm:"not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
