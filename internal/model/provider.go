package model

import (
	"time"

	"github.com/google/uuid"
)

// ProviderProfile: профиль провайдера, расширение пользователя (1:1).
// Rating и TotalReviews считаются по отзывам и пересчитываются при каждом
// изменении отзыва.
type ProviderProfile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Внешний ключ на таблицу пользователей.
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	BusinessName string  `gorm:"type:varchar(255);not null" json:"business_name"`
	ServiceType  string  `gorm:"type:varchar(255)" json:"service_type"`
	HourlyRate   float64 `gorm:"not null" json:"hourly_rate"`
	Location     string  `gorm:"type:varchar(255)" json:"location"`
	WorkingHours string  `gorm:"type:varchar(255)" json:"working_hours"`
	Description  string  `gorm:"type:text" json:"description"`
	Bio          string  `gorm:"type:text" json:"bio"`
	IsVerified   bool    `gorm:"not null" json:"is_verified"`

	Rating       *float64 `json:"rating"`
	TotalReviews int      `gorm:"not null" json:"total_reviews"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// RatingValue возвращает рейтинг или 0, если отзывов ещё нет.
func (p *ProviderProfile) RatingValue() float64 {
	if p == nil || p.Rating == nil {
		return 0
	}
	return *p.Rating
}
