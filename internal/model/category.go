package model

import (
	"time"

	"github.com/google/uuid"
)

// categories: дерево через parent_id.
type Category struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Icon        string     `gorm:"type:varchar(255)" json:"icon,omitempty"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	IsActive    bool       `gorm:"not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Parent *Category `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// CategoryNode: категория вместе с поддеревом.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
