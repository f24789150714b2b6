package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

// ServiceFilter: конъюнктивный фильтр поиска услуг.
type ServiceFilter struct {
	CategoryID  *uuid.UUID
	ProviderID  *uuid.UUID
	MinPrice    *float64
	MaxPrice    *float64
	IsAvailable *bool
	Query       string // подстрока названия или описания
}

type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Search возвращает все совпадения с загруженным провайдером. Сортировка
	// и пагинация на стороне вызывающего.
	Search(ctx context.Context, f ServiceFilter) ([]model.Service, error)
	List(ctx context.Context, f ServiceFilter, page calendar.PageRequest) ([]model.Service, int64, error)
	ListFeatured(ctx context.Context, minRating float64, limit int) ([]model.Service, error)

	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (total, available int64, err error)
	ProviderIDs(ctx context.Context, f ServiceFilter) ([]uuid.UUID, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) Create(ctx context.Context, s *model.Service) error {
	return translate(r.db.WithContext(ctx).Omit("Provider", "Category").Create(s).Error)
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).Preload("Provider").First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Update сохраняет редактируемые поля. provider_id не меняется.
func (r *GormServiceRepository) Update(ctx context.Context, s *model.Service) error {
	updates := map[string]any{
		"category_id":      s.CategoryID,
		"title":            s.Title,
		"description":      s.Description,
		"price":            s.Price,
		"duration_minutes": s.DurationMinutes,
		"is_available":     s.IsAvailable,
	}
	res := r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", s.ID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormServiceRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Service{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormServiceRepository) filtered(ctx context.Context, f ServiceFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Service{})
	if f.CategoryID != nil {
		q = q.Where("services.category_id = ?", *f.CategoryID)
	}
	if f.ProviderID != nil {
		q = q.Where("services.provider_id = ?", *f.ProviderID)
	}
	if f.MinPrice != nil {
		q = q.Where("services.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("services.price <= ?", *f.MaxPrice)
	}
	if f.IsAvailable != nil {
		q = q.Where("services.is_available = ?", *f.IsAvailable)
	}
	if strings.TrimSpace(f.Query) != "" {
		p := likePattern(f.Query)
		q = q.Where("LOWER(services.title) LIKE ? ESCAPE '\\' OR LOWER(services.description) LIKE ? ESCAPE '\\'", p, p)
	}
	return q
}

func (r *GormServiceRepository) Search(ctx context.Context, f ServiceFilter) ([]model.Service, error) {
	var services []model.Service
	if err := r.filtered(ctx, f).Preload("Provider").Order("services.id ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *GormServiceRepository) List(ctx context.Context, f ServiceFilter, page calendar.PageRequest) ([]model.Service, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []model.Service
	err := q.Preload("Provider").
		Order("services.title ASC").Order("services.id ASC").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&services).Error
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *GormServiceRepository) ListFeatured(ctx context.Context, minRating float64, limit int) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Model(&model.Service{}).
		Select("services.*").
		Joins("JOIN provider_profiles ON provider_profiles.id = services.provider_id").
		Where("services.is_available = ?", true).
		Where("provider_profiles.rating IS NOT NULL AND provider_profiles.rating >= ?", minRating).
		Order("provider_profiles.rating DESC").
		Order("services.id ASC").
		Limit(limit).
		Preload("Provider").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *GormServiceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Service{}).Count(&n).Error
	return n, err
}

func (r *GormServiceRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, int64, error) {
	var row struct {
		Total     int64
		Available int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Service{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_available THEN 1 ELSE 0 END), 0) AS available").
		Where("category_id = ?", categoryID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Available, nil
}

// ProviderIDs возвращает различных владельцев найденных услуг.
func (r *GormServiceRepository) ProviderIDs(ctx context.Context, f ServiceFilter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.filtered(ctx, f).Distinct().Pluck("services.provider_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
