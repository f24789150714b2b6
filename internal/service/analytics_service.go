package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// Period echoes the requested window back to the caller.
type Period struct {
	Start *time.Time `json:"period_start,omitempty"`
	End   *time.Time `json:"period_end,omitempty"`
}

func periodOf(w calendar.Window) Period { return Period{Start: w.Start, End: w.End} }

type ProviderAnalytics struct {
	ProviderID uuid.UUID `json:"provider_id"`
	Period
	TotalServices int64 `json:"total_services"`
	BookingSummary
	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
	AverageRating    float64 `json:"average_rating"`
}

type ServiceAnalytics struct {
	ServiceID uuid.UUID `json:"service_id"`
	Period
	BookingSummary
	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
	AverageRating    float64 `json:"average_rating"`
}

type PlatformAnalytics struct {
	Period
	TotalUsers     int64                `json:"total_users"`
	UsersByRole    map[model.Role]int64 `json:"users_by_role"`
	TotalProviders int64                `json:"total_providers"`
	TotalCustomers int64                `json:"total_customers"`
	TotalServices  int64                `json:"total_services"`
	BookingSummary
	// Среднее по провайдерам, у которых есть услуги; каждый учитывается один раз.
	AverageRating float64 `json:"average_rating"`
}

// AnalyticsService считает всё на лету, ничего не хранит.
type AnalyticsService struct {
	bookings  repository.BookingRepository
	services  repository.ServiceRepository
	providers repository.ProviderRepository
	users     repository.UserRepository
}

func NewAnalyticsService(
	bookings repository.BookingRepository,
	services repository.ServiceRepository,
	providers repository.ProviderRepository,
	users repository.UserRepository,
) *AnalyticsService {
	return &AnalyticsService{bookings: bookings, services: services, providers: providers, users: users}
}

// ownsProvider lets admins through and providers only for their own profile.
func (s *AnalyticsService) ownsProvider(ctx context.Context, actor Actor, providerID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return err
	}
	if p.ID != providerID {
		return fmt.Errorf("%w: analytics of another provider", ErrForbidden)
	}
	return nil
}

func (s *AnalyticsService) Provider(ctx context.Context, actor Actor, providerID uuid.UUID, w calendar.Window) (*ProviderAnalytics, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, storeErr(err, "provider")
	}
	if err := s.ownsProvider(ctx, actor, p.ID); err != nil {
		return nil, err
	}

	_, services, err := s.services.List(ctx, repository.ServiceFilter{ProviderID: &p.ID}, calendar.NewPageRequest(1, 1))
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{ProviderID: &p.ID, CreatedIn: w})
	if err != nil {
		return nil, fmt.Errorf("provider bookings: %w", err)
	}

	sum := Summarize(bookings)
	completion, cancellation := sum.Rates()
	return &ProviderAnalytics{
		ProviderID:       p.ID,
		Period:           periodOf(w),
		TotalServices:    services,
		BookingSummary:   sum,
		CompletionRate:   completion,
		CancellationRate: cancellation,
		AverageRating:    p.RatingValue(),
	}, nil
}

func (s *AnalyticsService) Service(ctx context.Context, actor Actor, serviceID uuid.UUID, w calendar.Window) (*ServiceAnalytics, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, storeErr(err, "service")
	}
	if err := s.ownsProvider(ctx, actor, svc.ProviderID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.List(ctx, repository.BookingFilter{ServiceID: &svc.ID, CreatedIn: w})
	if err != nil {
		return nil, fmt.Errorf("service bookings: %w", err)
	}

	sum := Summarize(bookings)
	completion, cancellation := sum.Rates()
	return &ServiceAnalytics{
		ServiceID:        svc.ID,
		Period:           periodOf(w),
		BookingSummary:   sum,
		CompletionRate:   completion,
		CancellationRate: cancellation,
		AverageRating:    svc.Provider.RatingValue(),
	}, nil
}

func (s *AnalyticsService) Platform(ctx context.Context, actor Actor, w calendar.Window) (*PlatformAnalytics, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}

	services, err := s.services.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{CreatedIn: w})
	if err != nil {
		return nil, fmt.Errorf("platform bookings: %w", err)
	}

	ids, err := s.services.ProviderIDs(ctx, repository.ServiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("service providers: %w", err)
	}
	providers, err := s.providers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}

	return &PlatformAnalytics{
		Period:         periodOf(w),
		TotalUsers:     totalUsers,
		UsersByRole:    byRole,
		TotalProviders: byRole[model.RoleProvider],
		TotalCustomers: byRole[model.RoleCustomer],
		TotalServices:  services,
		BookingSummary: Summarize(bookings),
		AverageRating:  MeanRating(providers),
	}, nil
}
