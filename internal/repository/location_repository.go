package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

// LocationFilter: все поля опциональны, строки сравниваются без учёта регистра.
type LocationFilter struct {
	City     string
	State    string
	Country  string
	Query    string // подстрока имени или адреса
	IsActive *bool
}

type LocationRepository interface {
	Create(ctx context.Context, l *model.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Search(ctx context.Context, f LocationFilter, page calendar.PageRequest) ([]model.Location, int64, error)
	Update(ctx context.Context, l *model.Location) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) Create(ctx context.Context, l *model.Location) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *GormLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var l model.Location
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *GormLocationRepository) Search(ctx context.Context, f LocationFilter, page calendar.PageRequest) ([]model.Location, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Location{})
	if strings.TrimSpace(f.City) != "" {
		q = q.Where("LOWER(city) LIKE ? ESCAPE '\\'", likePattern(f.City))
	}
	if strings.TrimSpace(f.State) != "" {
		q = q.Where("LOWER(state) LIKE ? ESCAPE '\\'", likePattern(f.State))
	}
	if strings.TrimSpace(f.Country) != "" {
		q = q.Where("LOWER(country) LIKE ? ESCAPE '\\'", likePattern(f.Country))
	}
	if strings.TrimSpace(f.Query) != "" {
		p := likePattern(f.Query)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(address) LIKE ? ESCAPE '\\'", p, p)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var locations []model.Location
	err := q.Order("name ASC").Order("id ASC").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&locations).Error
	if err != nil {
		return nil, 0, err
	}
	return locations, total, nil
}

func (r *GormLocationRepository) Update(ctx context.Context, l *model.Location) error {
	updates := map[string]any{
		"name":        l.Name,
		"address":     l.Address,
		"city":        l.City,
		"state":       l.State,
		"country":     l.Country,
		"postal_code": l.PostalCode,
		"latitude":    l.Latitude,
		"longitude":   l.Longitude,
		"is_active":   l.IsActive,
	}
	res := r.db.WithContext(ctx).Model(&model.Location{}).Where("id = ?", l.ID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Location{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
