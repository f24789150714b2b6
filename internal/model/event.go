package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated       EventType = "booking_created"
	EventTypeBookingStatusChanged EventType = "booking_status_changed"
	EventTypeBookingUpdated       EventType = "booking_updated"
)

// events: журнал аудита бронирований. Пишется в той же транзакции,
// что и само изменение.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	ActorUserID *uuid.UUID `gorm:"type:uuid;index" json:"actor_user_id,omitempty"`
	BookingID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"booking_id"`

	FromStatus BookingStatus `gorm:"type:varchar(32)" json:"from_status,omitempty"`
	ToStatus   BookingStatus `gorm:"type:varchar(32)" json:"to_status,omitempty"`
	Details    string        `gorm:"type:text" json:"details,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
