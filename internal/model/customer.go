package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PreferenceFavoriteProviders: ключ в preferences со списком id избранных
// провайдеров.
const PreferenceFavoriteProviders = "favorite_providers"

// clients
type CustomerProfile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Address     string            `gorm:"type:text" json:"address"`
	Phone       string            `gorm:"type:varchar(32)" json:"phone"`
	Preferences datatypes.JSONMap `json:"preferences"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// FavoriteProviderIDs читает избранное из Preferences. Некорректные id
// пропускаются.
func (c *CustomerProfile) FavoriteProviderIDs() []uuid.UUID {
	raw, ok := c.Preferences[PreferenceFavoriteProviders]
	if !ok {
		return nil
	}
	var ids []uuid.UUID
	switch list := raw.(type) {
	case []any:
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if id, err := uuid.Parse(s); err == nil {
				ids = append(ids, id)
			}
		}
	case []string:
		for _, s := range list {
			if id, err := uuid.Parse(s); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// SetFavoriteProviderIDs записывает ids под ключом избранного.
func (c *CustomerProfile) SetFavoriteProviderIDs(ids []uuid.UUID) {
	if c.Preferences == nil {
		c.Preferences = datatypes.JSONMap{}
	}
	list := make([]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, id.String())
	}
	c.Preferences[PreferenceFavoriteProviders] = list
}
