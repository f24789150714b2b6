package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

const recentLimit = 5

type ProviderProfileInput struct {
	BusinessName string
	ServiceType  string
	HourlyRate   float64
	Location     string
	WorkingHours string
	Description  string
	Bio          string
}

type CustomerProfileInput struct {
	Address     string
	Phone       string
	Preferences map[string]any
}

type ProviderDashboard struct {
	TodayEarnings    float64         `json:"today_earnings"`
	UpcomingBookings int64           `json:"upcoming_bookings"`
	AverageRating    float64         `json:"average_rating"`
	TotalReviews     int             `json:"total_reviews"`
	RecentBookings   []model.Booking `json:"recent_bookings"`
	RecentReviews    []model.Review  `json:"recent_reviews"`
}

type ProviderStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	TotalEarnings     float64 `json:"total_earnings"`
	AverageRating     float64 `json:"average_rating"`
	TotalReviews      int     `json:"total_reviews"`
}

type CustomerDashboard struct {
	ActiveBookings    int64                   `json:"active_bookings"`
	PastBookings      int64                   `json:"past_bookings"`
	FavoriteProviders []model.ProviderProfile `json:"favorite_providers"`
	RecentBookings    []model.Booking         `json:"recent_bookings"`
	RecentReviews     []model.Review          `json:"recent_reviews"`
}

type CustomerStats struct {
	TotalBookings      int64   `json:"total_bookings"`
	CompletedBookings  int64   `json:"completed_bookings"`
	TotalSpent         float64 `json:"total_spent"`
	AverageRatingGiven float64 `json:"average_rating_given"`
	TotalReviewsGiven  int64   `json:"total_reviews_given"`
}

var (
	activeStatuses = []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed}
	pastStatuses   = []model.BookingStatus{model.BookingStatusCompleted, model.BookingStatusCancelled}
	completedOnly  = []model.BookingStatus{model.BookingStatusCompleted}
)

// ProfileService ведёт профили провайдеров и клиентов.
type ProfileService struct {
	providers repository.ProviderRepository
	customers repository.CustomerRepository
	bookings  repository.BookingRepository
	reviews   repository.ReviewRepository
	now       func() time.Time
}

func NewProfileService(
	providers repository.ProviderRepository,
	customers repository.CustomerRepository,
	bookings repository.BookingRepository,
	reviews repository.ReviewRepository,
) *ProfileService {
	return &ProfileService{
		providers: providers,
		customers: customers,
		bookings:  bookings,
		reviews:   reviews,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// providerOf returns the caller's provider profile.
func providerOf(ctx context.Context, providers repository.ProviderRepository, actor Actor) (*model.ProviderProfile, error) {
	if err := requireRole(actor, model.RoleProvider); err != nil {
		return nil, err
	}
	p, err := providers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "provider profile")
	}
	return p, nil
}

// customerOf returns the caller's customer profile.
func customerOf(ctx context.Context, customers repository.CustomerRepository, actor Actor) (*model.CustomerProfile, error) {
	if err := requireRole(actor, model.RoleCustomer); err != nil {
		return nil, err
	}
	c, err := customers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "customer profile")
	}
	return c, nil
}

func (in ProviderProfileInput) validate() error {
	if strings.TrimSpace(in.BusinessName) == "" {
		return invalidArg("business_name is required")
	}
	if in.HourlyRate < 0 {
		return invalidArg("hourly_rate must not be negative")
	}
	return nil
}

func (s *ProfileService) CreateProviderProfile(ctx context.Context, actor Actor, in ProviderProfileInput) (*model.ProviderProfile, error) {
	if err := requireRole(actor, model.RoleProvider); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &model.ProviderProfile{UserID: actor.UserID}
	in.apply(p)
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, storeErr(err, "provider profile")
	}
	return p, nil
}

func (in ProviderProfileInput) apply(p *model.ProviderProfile) {
	p.BusinessName = strings.TrimSpace(in.BusinessName)
	p.ServiceType = in.ServiceType
	p.HourlyRate = in.HourlyRate
	p.Location = in.Location
	p.WorkingHours = in.WorkingHours
	p.Description = in.Description
	p.Bio = in.Bio
}

func (s *ProfileService) GetOwnProviderProfile(ctx context.Context, actor Actor) (*model.ProviderProfile, error) {
	return providerOf(ctx, s.providers, actor)
}

func (s *ProfileService) UpdateProviderProfile(ctx context.Context, actor Actor, in ProviderProfileInput) (*model.ProviderProfile, error) {
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.providers.Update(ctx, p); err != nil {
		return nil, storeErr(err, "provider profile")
	}
	updated, err := s.providers.GetByID(ctx, p.ID)
	if err != nil {
		return nil, storeErr(err, "provider profile")
	}
	return updated, nil
}

// GetProvider is the public read of a provider profile.
func (s *ProfileService) GetProvider(ctx context.Context, id uuid.UUID) (*model.ProviderProfile, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "provider")
	}
	return p, nil
}

func (s *ProfileService) ListProviders(ctx context.Context, page calendar.PageRequest) (calendar.Page[model.ProviderProfile], error) {
	items, total, err := s.providers.List(ctx, page)
	if err != nil {
		return calendar.Page[model.ProviderProfile]{}, fmt.Errorf("list providers: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

func (s *ProfileService) ProviderDashboard(ctx context.Context, actor Actor) (*ProviderDashboard, error) {
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	now := s.now()

	today, err := s.bookings.List(ctx, repository.BookingFilter{
		ProviderID: &p.ID,
		Statuses:   completedOnly,
		CreatedIn:  calendar.Day(now),
	})
	if err != nil {
		return nil, fmt.Errorf("today bookings: %w", err)
	}

	upcomingFilter := repository.BookingFilter{
		ProviderID:         &p.ID,
		Statuses:           []model.BookingStatus{model.BookingStatusConfirmed},
		DateFrom:           &now,
		OrderByBookingDate: true,
	}
	upcoming, upcomingTotal, err := s.bookings.Search(ctx, upcomingFilter, calendar.NewPageRequest(1, recentLimit))
	if err != nil {
		return nil, fmt.Errorf("upcoming bookings: %w", err)
	}

	reviews, _, err := s.reviews.Search(ctx, repository.ReviewFilter{ProviderID: &p.ID}, calendar.NewPageRequest(1, recentLimit))
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}

	return &ProviderDashboard{
		TodayEarnings:    Revenue(today),
		UpcomingBookings: upcomingTotal,
		AverageRating:    p.RatingValue(),
		TotalReviews:     p.TotalReviews,
		RecentBookings:   nonNil(upcoming),
		RecentReviews:    nonNil(reviews),
	}, nil
}

func (s *ProfileService) ProviderStats(ctx context.Context, actor Actor) (*ProviderStats, error) {
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.List(ctx, repository.BookingFilter{ProviderID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("provider bookings: %w", err)
	}
	sum := Summarize(all)
	return &ProviderStats{
		TotalBookings:     sum.Total,
		CompletedBookings: sum.Completed,
		TotalEarnings:     sum.Revenue,
		AverageRating:     p.RatingValue(),
		TotalReviews:      p.TotalReviews,
	}, nil
}

func (s *ProfileService) CreateCustomerProfile(ctx context.Context, actor Actor, in CustomerProfileInput) (*model.CustomerProfile, error) {
	if err := requireRole(actor, model.RoleCustomer); err != nil {
		return nil, err
	}
	c := &model.CustomerProfile{
		UserID:      actor.UserID,
		Address:     in.Address,
		Phone:       in.Phone,
		Preferences: datatypes.JSONMap{},
	}
	// избранное меняется только через AddFavorite/RemoveFavorite
	for k, v := range in.Preferences {
		if k == model.PreferenceFavoriteProviders {
			continue
		}
		c.Preferences[k] = v
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, storeErr(err, "customer profile")
	}
	return c, nil
}

func (s *ProfileService) GetOwnCustomerProfile(ctx context.Context, actor Actor) (*model.CustomerProfile, error) {
	return customerOf(ctx, s.customers, actor)
}

// UpdateCustomerProfile replaces address and phone. Preferences are merged
// key by key; the favorites list is only changed through the favorites calls.
func (s *ProfileService) UpdateCustomerProfile(ctx context.Context, actor Actor, in CustomerProfileInput) (*model.CustomerProfile, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}
	c.Address = in.Address
	c.Phone = in.Phone
	if c.Preferences == nil {
		c.Preferences = datatypes.JSONMap{}
	}
	for k, v := range in.Preferences {
		if k == model.PreferenceFavoriteProviders {
			continue
		}
		c.Preferences[k] = v
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, storeErr(err, "customer profile")
	}
	updated, err := s.customers.GetByID(ctx, c.ID)
	if err != nil {
		return nil, storeErr(err, "customer profile")
	}
	return updated, nil
}

func (s *ProfileService) CustomerDashboard(ctx context.Context, actor Actor) (*CustomerDashboard, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}

	active, activeTotal, err := s.bookings.Search(ctx,
		repository.BookingFilter{CustomerID: &c.ID, Statuses: activeStatuses},
		calendar.NewPageRequest(1, recentLimit))
	if err != nil {
		return nil, fmt.Errorf("active bookings: %w", err)
	}
	past, err := s.bookings.Count(ctx, repository.BookingFilter{CustomerID: &c.ID, Statuses: pastStatuses})
	if err != nil {
		return nil, fmt.Errorf("past bookings: %w", err)
	}
	favorites, err := s.providers.ListByIDs(ctx, c.FavoriteProviderIDs())
	if err != nil {
		return nil, fmt.Errorf("favorite providers: %w", err)
	}
	reviews, _, err := s.reviews.Search(ctx, repository.ReviewFilter{CustomerID: &c.ID}, calendar.NewPageRequest(1, recentLimit))
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}

	return &CustomerDashboard{
		ActiveBookings:    activeTotal,
		PastBookings:      past,
		FavoriteProviders: nonNil(favorites),
		RecentBookings:    nonNil(active),
		RecentReviews:     nonNil(reviews),
	}, nil
}

func (s *ProfileService) CustomerStats(ctx context.Context, actor Actor) (*CustomerStats, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.List(ctx, repository.BookingFilter{CustomerID: &c.ID})
	if err != nil {
		return nil, fmt.Errorf("customer bookings: %w", err)
	}
	avg, n, err := s.reviews.AverageByCustomer(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("customer reviews: %w", err)
	}
	sum := Summarize(all)
	return &CustomerStats{
		TotalBookings:      sum.Total,
		CompletedBookings:  sum.Completed,
		TotalSpent:         sum.Revenue,
		AverageRatingGiven: avg,
		TotalReviewsGiven:  n,
	}, nil
}

// AddFavorite adds providerID to the caller's favorites. It reports false
// when the provider was already there.
func (s *ProfileService) AddFavorite(ctx context.Context, actor Actor, providerID uuid.UUID) (bool, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return false, err
	}
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return false, storeErr(err, "provider")
	}

	ids := c.FavoriteProviderIDs()
	for _, id := range ids {
		if id == providerID {
			return false, nil
		}
	}
	c.SetFavoriteProviderIDs(append(ids, providerID))
	if err := s.customers.Update(ctx, c); err != nil {
		return false, storeErr(err, "customer profile")
	}
	return true, nil
}

// RemoveFavorite reports false when providerID was not a favorite.
func (s *ProfileService) RemoveFavorite(ctx context.Context, actor Actor, providerID uuid.UUID) (bool, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return false, err
	}

	ids := c.FavoriteProviderIDs()
	kept := ids[:0]
	for _, id := range ids {
		if id != providerID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return false, nil
	}
	c.SetFavoriteProviderIDs(kept)
	if err := s.customers.Update(ctx, c); err != nil {
		return false, storeErr(err, "customer profile")
	}
	return true, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
