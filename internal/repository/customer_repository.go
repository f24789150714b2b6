package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.CustomerProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error)
	Update(ctx context.Context, c *model.CustomerProfile) error
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Create(ctx context.Context, c *model.CustomerProfile) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *GormCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerProfile, error) {
	var c model.CustomerProfile
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCustomerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerProfile, error) {
	var c model.CustomerProfile
	if err := r.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, c *model.CustomerProfile) error {
	updates := map[string]any{
		"address":     c.Address,
		"phone":       normalizePhone(c.Phone),
		"preferences": c.Preferences,
	}
	res := r.db.WithContext(ctx).Model(&model.CustomerProfile{}).Where("id = ?", c.ID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
