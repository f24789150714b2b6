package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/logger"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// TransitionObserver получает каждый успешный переход статуса.
type TransitionObserver interface {
	ObserveBookingTransition(from, to model.BookingStatus)
}

type BookingInput struct {
	ServiceID   uuid.UUID
	BookingDate time.Time
	// Пустой статус означает pending.
	Status     model.BookingStatus
	Notes      string
	TotalPrice *float64
}

type BookingUpdate struct {
	BookingDate *time.Time
	Notes       *string
}

// BookingView: бронирование вместе с услугой и профилем клиента.
type BookingView struct {
	model.Booking
	Service  *model.Service         `json:"service,omitempty"`
	Customer *model.CustomerProfile `json:"customer,omitempty"`
}

func viewOf(b model.Booking) BookingView {
	return BookingView{Booking: b, Service: b.Service, Customer: b.Customer}
}

type BookingStats struct {
	BookingSummary
	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
}

type BookingService struct {
	bookings      repository.BookingRepository
	events        repository.EventRepository
	services      repository.ServiceRepository
	providers     repository.ProviderRepository
	customers     repository.CustomerRepository
	notifications repository.NotificationRepository
	observer      TransitionObserver
}

func NewBookingService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	services repository.ServiceRepository,
	providers repository.ProviderRepository,
	customers repository.CustomerRepository,
	notifications repository.NotificationRepository,
	observer TransitionObserver,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		events:        events,
		services:      services,
		providers:     providers,
		customers:     customers,
		notifications: notifications,
		observer:      observer,
	}
}

// Create бронирует услугу для вызывающего клиента. Начальный статус
// может быть только pending или confirmed.
func (s *BookingService) Create(ctx context.Context, actor Actor, in BookingInput) (*BookingView, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}
	if in.ServiceID == uuid.Nil {
		return nil, invalidArg("service_id is required")
	}
	if in.BookingDate.IsZero() {
		return nil, invalidArg("booking_date is required")
	}

	status := in.Status
	if status == "" {
		status = model.BookingStatusPending
	}
	if !status.IsActive() {
		return nil, fmt.Errorf("%w: a booking cannot start as %q", ErrInvalidState, status)
	}

	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, storeErr(err, "service")
	}
	if !svc.IsAvailable {
		return nil, fmt.Errorf("%w: service is not available for booking", ErrDomainRule)
	}

	price := svc.Price
	if in.TotalPrice != nil {
		if *in.TotalPrice < 0 {
			return nil, invalidArg("total_price must not be negative")
		}
		price = *in.TotalPrice
	}

	b := &model.Booking{
		ServiceID:   svc.ID,
		CustomerID:  c.ID,
		BookingDate: in.BookingDate.UTC(),
		Status:      status,
		Notes:       in.Notes,
		TotalPrice:  price,
	}
	ev := &model.Event{
		EventType:   model.EventTypeBookingCreated,
		ActorUserID: &actor.UserID,
		ToStatus:    status,
	}
	if err := s.bookings.Create(ctx, b, ev); err != nil {
		return nil, storeErr(err, "booking")
	}

	if s.observer != nil {
		s.observer.ObserveBookingTransition("", status)
	}

	created, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, storeErr(err, "booking")
	}
	if created.Service != nil && created.Service.Provider != nil {
		s.notify(ctx, created.Service.Provider.UserID, "New booking",
			fmt.Sprintf("%s booked for %s", created.Service.Title, created.BookingDate.Format(time.RFC3339)))
	}

	v := viewOf(*created)
	return &v, nil
}

// authorize проверяет, может ли actor видеть b. Админу доступно всё,
// остальным только бронирования, в которых они участвуют.
func (s *BookingService) authorize(ctx context.Context, actor Actor, b *model.Booking) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCustomer:
		c, err := customerOf(ctx, s.customers, actor)
		if err != nil {
			return err
		}
		if b.CustomerID != c.ID {
			return fmt.Errorf("%w: booking belongs to another customer", ErrForbidden)
		}
		return nil
	case model.RoleProvider:
		p, err := providerOf(ctx, s.providers, actor)
		if err != nil {
			return err
		}
		if b.Service == nil || b.Service.ProviderID != p.ID {
			return fmt.Errorf("%w: booking is for another provider's service", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: role %q", ErrForbidden, actor.Role)
	}
}

func (s *BookingService) load(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "booking")
	}
	if err := s.authorize(ctx, actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*BookingView, error) {
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	v := viewOf(*b)
	return &v, nil
}

// scope сужает f до того, что видно actor.
func (s *BookingService) scope(ctx context.Context, actor Actor, f *repository.BookingFilter) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCustomer:
		c, err := customerOf(ctx, s.customers, actor)
		if err != nil {
			return err
		}
		f.CustomerID = &c.ID
		return nil
	case model.RoleProvider:
		p, err := providerOf(ctx, s.providers, actor)
		if err != nil {
			return err
		}
		f.ProviderID = &p.ID
		return nil
	default:
		return fmt.Errorf("%w: role %q", ErrForbidden, actor.Role)
	}
}

func (s *BookingService) Search(ctx context.Context, actor Actor, f repository.BookingFilter, page calendar.PageRequest) (calendar.Page[BookingView], error) {
	if f.DateFrom != nil && f.DateTo != nil && !f.DateFrom.Before(*f.DateTo) {
		return calendar.Page[BookingView]{}, invalidArg("date_from must be before date_to")
	}
	if err := s.scope(ctx, actor, &f); err != nil {
		return calendar.Page[BookingView]{}, err
	}
	items, total, err := s.bookings.Search(ctx, f, page)
	if err != nil {
		return calendar.Page[BookingView]{}, fmt.Errorf("search bookings: %w", err)
	}
	return calendar.Map(calendar.NewPage(items, page, total), viewOf), nil
}

func (s *BookingService) CustomerBookings(ctx context.Context, actor Actor, statuses []model.BookingStatus, page calendar.PageRequest) (calendar.Page[BookingView], error) {
	if err := requireRole(actor, model.RoleCustomer); err != nil {
		return calendar.Page[BookingView]{}, err
	}
	return s.Search(ctx, actor, repository.BookingFilter{Statuses: statuses}, page)
}

func (s *BookingService) ProviderBookings(ctx context.Context, actor Actor, statuses []model.BookingStatus, page calendar.PageRequest) (calendar.Page[BookingView], error) {
	if err := requireRole(actor, model.RoleProvider); err != nil {
		return calendar.Page[BookingView]{}, err
	}
	return s.Search(ctx, actor, repository.BookingFilter{Statuses: statuses}, page)
}

// ProviderStats counts the caller's bookings; rates are 0 when there are none.
func (s *BookingService) ProviderStats(ctx context.Context, actor Actor) (*BookingStats, error) {
	p, err := providerOf(ctx, s.providers, actor)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{ProviderID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("provider bookings: %w", err)
	}
	sum := Summarize(bookings)
	completion, cancellation := sum.Rates()
	return &BookingStats{BookingSummary: sum, CompletionRate: completion, CancellationRate: cancellation}, nil
}

func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uuid.UUID, notes *string) (*BookingView, error) {
	return s.transition(ctx, actor, id, model.BookingStatusCancelled, notes)
}

func (s *BookingService) Confirm(ctx context.Context, actor Actor, id uuid.UUID, notes *string) (*BookingView, error) {
	return s.transition(ctx, actor, id, model.BookingStatusConfirmed, notes)
}

func (s *BookingService) Complete(ctx context.Context, actor Actor, id uuid.UUID, notes *string) (*BookingView, error) {
	return s.transition(ctx, actor, id, model.BookingStatusCompleted, notes)
}

// UpdateStatus переводит бронирование в любой статус, разрешённый таблицей переходов.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.BookingStatus, notes *string) (*BookingView, error) {
	return s.transition(ctx, actor, id, status, notes)
}

// mayMoveTo проверяет только роль. Владение проверяется отдельно.
func mayMoveTo(actor Actor, to model.BookingStatus) error {
	switch {
	case actor.IsCustomer() && to != model.BookingStatusCancelled:
		return fmt.Errorf("%w: customers may only cancel bookings", ErrForbidden)
	case actor.IsAdmin() && to == model.BookingStatusCompleted:
		return fmt.Errorf("%w: only the provider may complete a booking", ErrForbidden)
	}
	return nil
}

func (s *BookingService) transition(ctx context.Context, actor Actor, id uuid.UUID, to model.BookingStatus, notes *string) (*BookingView, error) {
	if _, err := model.ParseBookingStatus(string(to)); err != nil {
		return nil, invalidArg("%v", err)
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := mayMoveTo(actor, to); err != nil {
		return nil, err
	}

	from := b.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidState, from, to)
	}

	ev := &model.Event{
		EventType:   model.EventTypeBookingStatusChanged,
		ActorUserID: &actor.UserID,
		FromStatus:  from,
		ToStatus:    to,
	}
	if notes != nil {
		ev.Details = *notes
	}
	updated, err := s.bookings.Transition(ctx, id, from, to, notes, ev)
	if errors.Is(err, repository.ErrStale) {
		return nil, fmt.Errorf("%w: booking status changed concurrently", ErrInvalidState)
	}
	if err != nil {
		return nil, storeErr(err, "booking")
	}

	if s.observer != nil {
		s.observer.ObserveBookingTransition(from, to)
	}
	logger.FromContext(ctx).Info("booking status changed",
		"booking_id", id, "from", from, "to", to, "actor", actor.UserID)

	if updated.Customer != nil {
		title := "Booking"
		if updated.Service != nil {
			title = updated.Service.Title
		}
		s.notify(ctx, updated.Customer.UserID, "Booking "+string(to),
			fmt.Sprintf("%s is now %s", title, to))
	}

	v := viewOf(*updated)
	return &v, nil
}

// UpdateDetails changes the date or notes of a pending or confirmed booking.
// Only the booking's customer and admins may do it.
func (s *BookingService) UpdateDetails(ctx context.Context, actor Actor, id uuid.UUID, in BookingUpdate) (*BookingView, error) {
	if err := requireRole(actor, model.RoleCustomer, model.RoleAdmin); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.BookingDate == nil && in.Notes == nil {
		return nil, invalidArg("nothing to update")
	}
	if !b.Status.IsActive() {
		return nil, fmt.Errorf("%w: %s booking cannot be changed", ErrInvalidState, b.Status)
	}

	ev := &model.Event{
		EventType:   model.EventTypeBookingUpdated,
		ActorUserID: &actor.UserID,
		FromStatus:  b.Status,
		ToStatus:    b.Status,
	}
	if in.BookingDate != nil {
		ev.Details = "booking_date=" + in.BookingDate.UTC().Format(time.RFC3339)
	}
	updated, err := s.bookings.UpdateDetails(ctx, id, in.BookingDate, in.Notes, ev)
	if errors.Is(err, repository.ErrStale) {
		return nil, fmt.Errorf("%w: booking is no longer active", ErrInvalidState)
	}
	if err != nil {
		return nil, storeErr(err, "booking")
	}
	v := viewOf(*updated)
	return &v, nil
}

func (s *BookingService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	return storeErr(s.bookings.Delete(ctx, id), "booking")
}

// Events возвращает журнал аудита бронирования, от старых к новым.
func (s *BookingService) Events(ctx context.Context, actor Actor, id uuid.UUID) ([]model.Event, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := s.events.ListByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking events: %w", err)
	}
	return nonNil(events), nil
}

// notify пишет уведомление после коммита. Ошибка только логируется.
func (s *BookingService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	n := &model.Notification{
		UserID:  userID,
		Type:    model.NotificationTypeBooking,
		Title:   title,
		Message: message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		logger.FromContext(ctx).Warn("booking notification not saved", "user_id", userID, "error", err)
	}
}
