package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

type ReviewFilter struct {
	ServiceID  *uuid.UUID
	ProviderID *uuid.UUID
	CustomerID *uuid.UUID
	PublicOnly bool
}

// ReviewRepository держит provider_profiles.rating и total_reviews в согласии
// с таблицей reviews: каждая запись пересчитывает их в той же транзакции.
type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, f ReviewFilter, page calendar.PageRequest) ([]model.Review, int64, error)
	// AverageByCustomer возвращает среднюю оценку, которую ставит клиент,
	// и число его отзывов.
	AverageByCustomer(ctx context.Context, customerID uuid.UUID) (float64, int64, error)
}

type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Service", "Customer", "Provider").Create(rv).Error; err != nil {
			return err
		}
		return recomputeProviderRating(tx, rv.ProviderID)
	})
	return translate(err)
}

func (r *GormReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

// Update сохраняет оценку, комментарий и видимость.
func (r *GormReviewRepository) Update(ctx context.Context, rv *model.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Review{}).Where("id = ?", rv.ID).Updates(map[string]any{
			"rating":    rv.Rating,
			"comment":   rv.Comment,
			"is_public": rv.IsPublic,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return recomputeProviderRating(tx, rv.ProviderID)
	})
	return translate(err)
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rv model.Review
		if err := tx.First(&rv, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Review{}, "id = ?", id).Error; err != nil {
			return err
		}
		return recomputeProviderRating(tx, rv.ProviderID)
	})
	return translate(err)
}

func recomputeProviderRating(tx *gorm.DB, providerID uuid.UUID) error {
	var agg struct {
		TotalCount int64
		AvgRating  *float64
	}
	err := tx.Model(&model.Review{}).
		Select("COUNT(*) AS total_count, AVG(rating) AS avg_rating").
		Where("provider_id = ?", providerID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	var rating *float64
	if agg.TotalCount > 0 {
		rating = agg.AvgRating
	}
	return tx.Model(&model.ProviderProfile{}).
		Where("id = ?", providerID).
		Updates(map[string]any{
			"rating":        rating,
			"total_reviews": agg.TotalCount,
		}).Error
}

func (r *GormReviewRepository) Search(ctx context.Context, f ReviewFilter, page calendar.PageRequest) ([]model.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Review{})
	if f.ServiceID != nil {
		q = q.Where("service_id = ?", *f.ServiceID)
	}
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := q.Order("created_at DESC").Order("id ASC").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *GormReviewRepository) AverageByCustomer(ctx context.Context, customerID uuid.UUID) (float64, int64, error) {
	var agg struct {
		TotalCount int64
		AvgRating  *float64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COUNT(*) AS total_count, AVG(rating) AS avg_rating").
		Where("customer_id = ?", customerID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	if agg.AvgRating == nil {
		return 0, agg.TotalCount, nil
	}
	return *agg.AvgRating, agg.TotalCount, nil
}
