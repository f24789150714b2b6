package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

// BookingFilter: все условия объединяются через AND.
type BookingFilter struct {
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID
	ServiceID  *uuid.UUID
	CategoryID *uuid.UUID
	Statuses   []model.BookingStatus

	// booking_date в [DateFrom, DateTo)
	DateFrom *time.Time
	DateTo   *time.Time

	CreatedIn calendar.Window

	// По умолчанию сортировка по created_at DESC.
	OrderByBookingDate bool
}

type BookingRepository interface {
	// Создать бронирование и событие аудита в одной транзакции.
	Create(ctx context.Context, b *model.Booking, ev *model.Event) error
	// Получить бронирование по ID вместе с услугой и клиентом.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Перевести статус from -> to. Если статус уже изменился, вернёт ErrStale.
	Transition(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, notes *string, ev *model.Event) (*model.Booking, error)
	// Изменить дату/заметки, пока бронирование активно.
	UpdateDetails(ctx context.Context, id uuid.UUID, bookingDate *time.Time, notes *string, ev *model.Event) (*model.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Search(ctx context.Context, f BookingFilter, page calendar.PageRequest) ([]model.Booking, int64, error)
	// List возвращает все совпадения без пагинации, для агрегатов.
	List(ctx context.Context, f BookingFilter) ([]model.Booking, error)
	Count(ctx context.Context, f BookingFilter) (int64, error)
	HasCompleted(ctx context.Context, customerID, serviceID uuid.UUID) (bool, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, b *model.Booking, ev *model.Event) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Service", "Customer").Create(b).Error; err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		ev.BookingID = b.ID
		return tx.Omit("Booking").Create(ev).Error
	})
	return translate(err)
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Service.Provider").
		Preload("Customer").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from, to model.BookingStatus,
	notes *string,
	ev *model.Event,
) (*model.Booking, error) {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := map[string]any{
			"status":     to,
			"updated_at": now,
		}
		if to == model.BookingStatusCancelled {
			update["cancelled_at"] = now
		}
		if notes != nil {
			update["notes"] = *notes
		}

		// условный UPDATE: параллельный переход проиграет и получит ErrStale
		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", id, from).
			Updates(update)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if ev == nil {
			return nil
		}
		ev.BookingID = id
		return tx.Omit("Booking").Create(ev).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r *GormBookingRepository) UpdateDetails(
	ctx context.Context,
	id uuid.UUID,
	bookingDate *time.Time,
	notes *string,
	ev *model.Event,
) (*model.Booking, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := map[string]any{"updated_at": time.Now().UTC()}
		if bookingDate != nil {
			update["booking_date"] = bookingDate.UTC()
		}
		if notes != nil {
			update["notes"] = *notes
		}

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status IN ?", id, []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed}).
			Updates(update)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if ev == nil {
			return nil
		}
		ev.BookingID = id
		return tx.Omit("Booking").Create(ev).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&model.Event{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Booking{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate(err)
}

func (r *GormBookingRepository) filtered(ctx context.Context, f BookingFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if f.ProviderID != nil {
		owned := r.db.WithContext(ctx).Model(&model.Service{}).Select("id").Where("provider_id = ?", *f.ProviderID)
		q = q.Where("bookings.service_id IN (?)", owned)
	}
	if f.CategoryID != nil {
		inCategory := r.db.WithContext(ctx).Model(&model.Service{}).Select("id").Where("category_id = ?", *f.CategoryID)
		q = q.Where("bookings.service_id IN (?)", inCategory)
	}
	if f.CustomerID != nil {
		q = q.Where("bookings.customer_id = ?", *f.CustomerID)
	}
	if f.ServiceID != nil {
		q = q.Where("bookings.service_id = ?", *f.ServiceID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("bookings.status IN ?", f.Statuses)
	}
	if f.DateFrom != nil {
		q = q.Where("bookings.booking_date >= ?", f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		q = q.Where("bookings.booking_date < ?", f.DateTo.UTC())
	}
	if f.CreatedIn.Start != nil {
		q = q.Where("bookings.created_at >= ?", *f.CreatedIn.Start)
	}
	if f.CreatedIn.End != nil {
		q = q.Where("bookings.created_at < ?", *f.CreatedIn.End)
	}
	return q
}

func ordered(q *gorm.DB, f BookingFilter) *gorm.DB {
	if f.OrderByBookingDate {
		return q.Order("bookings.booking_date ASC").Order("bookings.id ASC")
	}
	return q.Order("bookings.created_at DESC").Order("bookings.id ASC")
}

func (r *GormBookingRepository) Search(ctx context.Context, f BookingFilter, page calendar.PageRequest) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.filtered(ctx, f)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := ordered(q, f).
		Preload("Service").
		Preload("Customer").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := ordered(r.filtered(ctx, f), f).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) Count(ctx context.Context, f BookingFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *GormBookingRepository) HasCompleted(ctx context.Context, customerID, serviceID uuid.UUID) (bool, error) {
	n, err := r.Count(ctx, BookingFilter{
		CustomerID: &customerID,
		ServiceID:  &serviceID,
		Statuses:   []model.BookingStatus{model.BookingStatusCompleted},
	})
	return n > 0, err
}
