package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

const (
	FeaturedMinRating    = 4.5
	FeaturedDefaultLimit = 5
	FeaturedMaxLimit     = 20

	SortByPrice  = "price"
	SortByRating = "rating"
)

type ServiceInput struct {
	CategoryID      uuid.UUID
	Title           string
	Description     string
	Price           float64
	DurationMinutes int
	IsAvailable     *bool
}

func (in ServiceInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalidArg("title is required")
	}
	if in.CategoryID == uuid.Nil {
		return invalidArg("category_id is required")
	}
	if in.Price < 0 {
		return invalidArg("price must not be negative")
	}
	if in.DurationMinutes <= 0 {
		return invalidArg("duration_minutes must be positive")
	}
	return nil
}

// ServiceSearch: параметры поиска. MinProviderRating применяется уже после
// выборки из базы.
type ServiceSearch struct {
	repository.ServiceFilter
	MinProviderRating *float64
	SortBy            string // price | rating | "" (by id)
	SortDesc          bool
}

type ServiceStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	AverageRating     float64 `json:"average_rating"`
	TotalRevenue      float64 `json:"total_revenue"`
}

// CatalogService управляет услугами провайдеров.
type CatalogService struct {
	services   repository.ServiceRepository
	categories repository.CategoryRepository
	providers  repository.ProviderRepository
	bookings   repository.BookingRepository
}

func NewCatalogService(
	services repository.ServiceRepository,
	categories repository.CategoryRepository,
	providers repository.ProviderRepository,
	bookings repository.BookingRepository,
) *CatalogService {
	return &CatalogService{services: services, categories: categories, providers: providers, bookings: bookings}
}

func (s *CatalogService) Create(ctx context.Context, actor Actor, in ServiceInput) (*model.Service, error) {
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, storeErr(err, "category")
	}

	svc := &model.Service{ProviderID: p.ID, IsAvailable: true}
	in.apply(svc)
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, storeErr(err, "service")
	}
	return s.Get(ctx, svc.ID)
}

func (in ServiceInput) apply(svc *model.Service) {
	svc.CategoryID = in.CategoryID
	svc.Title = strings.TrimSpace(in.Title)
	svc.Description = in.Description
	svc.Price = in.Price
	svc.DurationMinutes = in.DurationMinutes
	if in.IsAvailable != nil {
		svc.IsAvailable = *in.IsAvailable
	}
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "service")
	}
	return svc, nil
}

// owned loads a service and checks that actor is its provider. Admins pass
// when allowAdmin is set.
func (s *CatalogService) owned(ctx context.Context, actor Actor, id uuid.UUID, allowAdmin bool) (*model.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if allowAdmin && actor.IsAdmin() {
		return svc, nil
	}
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != p.ID {
		return nil, fmt.Errorf("%w: service belongs to another provider", ErrForbidden)
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ServiceInput) (*model.Service, error) {
	svc, err := s.owned(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.CategoryID != svc.CategoryID {
		if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
			return nil, storeErr(err, "category")
		}
	}
	in.apply(svc)
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, storeErr(err, "service")
	}
	return s.Get(ctx, id)
}

func (s *CatalogService) ToggleAvailability(ctx context.Context, actor Actor, id uuid.UUID) (*model.Service, error) {
	svc, err := s.owned(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.services.SetAvailability(ctx, id, !svc.IsAvailable); err != nil {
		return nil, storeErr(err, "service")
	}
	return s.Get(ctx, id)
}

// Delete is refused while any booking references the service; the provider
// should mark it unavailable instead.
func (s *CatalogService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id, true); err != nil {
		return err
	}
	n, err := s.bookings.Count(ctx, repository.BookingFilter{ServiceID: &id})
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: service has %d bookings, disable it instead", ErrDomainRule, n)
	}
	return storeErr(s.services.Delete(ctx, id), "service")
}

// Search applies the store filter, then the provider rating floor and the
// requested order, then pages the result.
func (s *CatalogService) Search(ctx context.Context, q ServiceSearch, page calendar.PageRequest) (calendar.Page[model.Service], error) {
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return calendar.Page[model.Service]{}, invalidArg("min_price must not exceed max_price")
	}
	switch q.SortBy {
	case "", SortByPrice, SortByRating:
	default:
		return calendar.Page[model.Service]{}, invalidArg("sort_by must be %q or %q", SortByPrice, SortByRating)
	}

	items, err := s.services.Search(ctx, q.ServiceFilter)
	if err != nil {
		return calendar.Page[model.Service]{}, fmt.Errorf("search services: %w", err)
	}

	if q.MinProviderRating != nil {
		kept := items[:0]
		for _, svc := range items {
			if svc.Provider != nil && svc.Provider.Rating != nil && *svc.Provider.Rating >= *q.MinProviderRating {
				kept = append(kept, svc)
			}
		}
		items = kept
	}

	SortServices(items, q.SortBy, q.SortDesc)
	return calendar.Paginate(items, page), nil
}

// SortServices orders by price or provider rating with id as the tie-break,
// so equal keys always come out in the same order.
func SortServices(items []model.Service, by string, desc bool) {
	key := func(svc model.Service) float64 {
		switch by {
		case SortByPrice:
			return svc.Price
		case SortByRating:
			return svc.Provider.RatingValue()
		}
		return 0
	}
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki != kj {
			if desc {
				return ki > kj
			}
			return ki < kj
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

func (s *CatalogService) Featured(ctx context.Context, limit int) ([]model.Service, error) {
	if limit == 0 {
		limit = FeaturedDefaultLimit
	}
	if limit < 1 || limit > FeaturedMaxLimit {
		return nil, invalidArg("limit must be within [1, %d]", FeaturedMaxLimit)
	}
	items, err := s.services.ListFeatured(ctx, FeaturedMinRating, limit)
	if err != nil {
		return nil, fmt.Errorf("featured services: %w", err)
	}
	return nonNil(items), nil
}

func (s *CatalogService) ByProvider(ctx context.Context, providerID uuid.UUID, page calendar.PageRequest) (calendar.Page[model.Service], error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return calendar.Page[model.Service]{}, storeErr(err, "provider")
	}
	items, total, err := s.services.List(ctx, repository.ServiceFilter{ProviderID: &providerID}, page)
	if err != nil {
		return calendar.Page[model.Service]{}, fmt.Errorf("list services: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

func (s *CatalogService) List(ctx context.Context, f repository.ServiceFilter, page calendar.PageRequest) (calendar.Page[model.Service], error) {
	items, total, err := s.services.List(ctx, f, page)
	if err != nil {
		return calendar.Page[model.Service]{}, fmt.Errorf("list services: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

// Stats is visible to the owning provider and admins.
func (s *CatalogService) Stats(ctx context.Context, actor Actor, id uuid.UUID) (*ServiceStats, error) {
	svc, err := s.owned(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{ServiceID: &id})
	if err != nil {
		return nil, fmt.Errorf("service bookings: %w", err)
	}
	sum := Summarize(bookings)
	return &ServiceStats{
		TotalBookings:     sum.Total,
		CompletedBookings: sum.Completed,
		AverageRating:     svc.Provider.RatingValue(),
		TotalRevenue:      sum.Revenue,
	}, nil
}
