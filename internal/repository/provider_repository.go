package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

type ProviderRepository interface {
	Create(ctx context.Context, p *model.ProviderProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.ProviderProfile, error)
	Update(ctx context.Context, p *model.ProviderProfile) error
	List(ctx context.Context, page calendar.PageRequest) ([]model.ProviderProfile, int64, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.ProviderProfile, error)
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) Create(ctx context.Context, p *model.ProviderProfile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProviderProfile, error) {
	var p model.ProviderProfile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormProviderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.ProviderProfile, error) {
	var p model.ProviderProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update сохраняет поля, которые правит сам провайдер. rating и total_reviews
// ведёт хранилище отзывов, здесь они не пишутся.
func (r *GormProviderRepository) Update(ctx context.Context, p *model.ProviderProfile) error {
	updates := map[string]any{
		"business_name": p.BusinessName,
		"service_type":  p.ServiceType,
		"hourly_rate":   p.HourlyRate,
		"location":      p.Location,
		"working_hours": p.WorkingHours,
		"description":   p.Description,
		"bio":           p.Bio,
	}
	res := r.db.WithContext(ctx).Model(&model.ProviderProfile{}).Where("id = ?", p.ID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProviderRepository) List(ctx context.Context, page calendar.PageRequest) ([]model.ProviderProfile, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ProviderProfile{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var providers []model.ProviderProfile
	err := q.Order("business_name ASC").Order("id ASC").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&providers).Error
	if err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

func (r *GormProviderRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.ProviderProfile, error) {
	if len(ids) == 0 {
		return []model.ProviderProfile{}, nil
	}
	var providers []model.ProviderProfile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}
