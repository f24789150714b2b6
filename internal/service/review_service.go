package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

type ReviewInput struct {
	ServiceID uuid.UUID
	Rating    int
	Comment   string
	IsPublic  *bool
}

type ReviewUpdate struct {
	Rating   *int
	Comment  *string
	IsPublic *bool
}

func validRating(r int) error {
	if r < model.MinRating || r > model.MaxRating {
		return invalidArg("rating must be within [%d, %d]", model.MinRating, model.MaxRating)
	}
	return nil
}

type ReviewService struct {
	reviews   repository.ReviewRepository
	services  repository.ServiceRepository
	bookings  repository.BookingRepository
	customers repository.CustomerRepository
	providers repository.ProviderRepository
}

func NewReviewService(
	reviews repository.ReviewRepository,
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
	customers repository.CustomerRepository,
	providers repository.ProviderRepository,
) *ReviewService {
	return &ReviewService{reviews: reviews, services: services, bookings: bookings, customers: customers, providers: providers}
}

// Create: отзыв возможен только после завершённого бронирования этой услуги.
func (s *ReviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*model.Review, error) {
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}
	if err := validRating(in.Rating); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, storeErr(err, "service")
	}

	done, err := s.bookings.HasCompleted(ctx, c.ID, svc.ID)
	if err != nil {
		return nil, fmt.Errorf("check bookings: %w", err)
	}
	if !done {
		return nil, fmt.Errorf("%w: a review needs a completed booking of this service", ErrDomainRule)
	}

	rv := &model.Review{
		ServiceID:  svc.ID,
		CustomerID: c.ID,
		ProviderID: svc.ProviderID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		IsPublic:   true,
	}
	if in.IsPublic != nil {
		rv.IsPublic = *in.IsPublic
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: service already reviewed by this customer", ErrDomainRule)
		}
		return nil, storeErr(err, "review")
	}
	return s.reviews.GetByID(ctx, rv.ID)
}

// Get hides private reviews from everyone except their author and admins.
func (s *ReviewService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "review")
	}
	if rv.IsPublic || actor.IsAdmin() {
		return rv, nil
	}
	if actor.IsCustomer() {
		if c, err := customerOf(ctx, s.customers, actor); err == nil && c.ID == rv.CustomerID {
			return rv, nil
		}
	}
	return nil, fmt.Errorf("%w: review", ErrNotFound)
}

func (s *ReviewService) own(ctx context.Context, actor Actor, id uuid.UUID) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "review")
	}
	if actor.IsAdmin() {
		return rv, nil
	}
	c, err := customerOf(ctx, s.customers, actor)
	if err != nil {
		return nil, err
	}
	if rv.CustomerID != c.ID {
		return nil, fmt.Errorf("%w: review belongs to another customer", ErrForbidden)
	}
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ReviewUpdate) (*model.Review, error) {
	rv, err := s.own(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		if err := validRating(*in.Rating); err != nil {
			return nil, err
		}
		rv.Rating = *in.Rating
	}
	if in.Comment != nil {
		rv.Comment = *in.Comment
	}
	if in.IsPublic != nil {
		rv.IsPublic = *in.IsPublic
	}
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, storeErr(err, "review")
	}
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	return storeErr(s.reviews.Delete(ctx, id), "review")
}

func (s *ReviewService) search(ctx context.Context, f repository.ReviewFilter, page calendar.PageRequest) (calendar.Page[model.Review], error) {
	items, total, err := s.reviews.Search(ctx, f, page)
	if err != nil {
		return calendar.Page[model.Review]{}, fmt.Errorf("search reviews: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

func (s *ReviewService) ByService(ctx context.Context, serviceID uuid.UUID, page calendar.PageRequest) (calendar.Page[model.Review], error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return calendar.Page[model.Review]{}, storeErr(err, "service")
	}
	return s.search(ctx, repository.ReviewFilter{ServiceID: &serviceID, PublicOnly: true}, page)
}

func (s *ReviewService) ByProvider(ctx context.Context, providerID uuid.UUID, page calendar.PageRequest) (calendar.Page[model.Review], error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return calendar.Page[model.Review]{}, storeErr(err, "provider")
	}
	return s.search(ctx, repository.ReviewFilter{ProviderID: &providerID, PublicOnly: true}, page)
}

// ByCustomer shows private reviews only to the author and admins.
func (s *ReviewService) ByCustomer(ctx context.Context, actor Actor, customerID uuid.UUID, page calendar.PageRequest) (calendar.Page[model.Review], error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return calendar.Page[model.Review]{}, storeErr(err, "customer")
	}
	publicOnly := !actor.IsAdmin()
	if actor.IsCustomer() {
		if c, err := customerOf(ctx, s.customers, actor); err == nil && c.ID == customerID {
			publicOnly = false
		}
	}
	return s.search(ctx, repository.ReviewFilter{CustomerID: &customerID, PublicOnly: publicOnly}, page)
}
