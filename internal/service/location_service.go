package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

type LocationInput struct {
	Name       string
	Address    string
	City       string
	State      string
	Country    string
	PostalCode string
	Latitude   *float64
	Longitude  *float64
	IsActive   *bool
}

func (in LocationInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidArg("name is required")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return invalidArg("latitude must be within [-90, 90]")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return invalidArg("longitude must be within [-180, 180]")
	}
	return nil
}

type LocationService struct {
	locations repository.LocationRepository
}

func NewLocationService(locations repository.LocationRepository) *LocationService {
	return &LocationService{locations: locations}
}

func (s *LocationService) Create(ctx context.Context, actor Actor, in LocationInput) (*model.Location, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	l := &model.Location{IsActive: true}
	in.apply(l)
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, storeErr(err, "location")
	}
	return l, nil
}

func (in LocationInput) apply(l *model.Location) {
	l.Name = strings.TrimSpace(in.Name)
	l.Address = in.Address
	l.City = in.City
	l.State = in.State
	l.Country = in.Country
	l.PostalCode = in.PostalCode
	l.Latitude = in.Latitude
	l.Longitude = in.Longitude
	if in.IsActive != nil {
		l.IsActive = *in.IsActive
	}
}

func (s *LocationService) Get(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "location")
	}
	return l, nil
}

func (s *LocationService) Search(ctx context.Context, f repository.LocationFilter, page calendar.PageRequest) (calendar.Page[model.Location], error) {
	items, total, err := s.locations.Search(ctx, f, page)
	if err != nil {
		return calendar.Page[model.Location]{}, fmt.Errorf("search locations: %w", err)
	}
	return calendar.NewPage(items, page, total), nil
}

func (s *LocationService) Update(ctx context.Context, actor Actor, id uuid.UUID, in LocationInput) (*model.Location, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(l)
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, storeErr(err, "location")
	}
	return s.Get(ctx, id)
}

func (s *LocationService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	return storeErr(s.locations.Delete(ctx, id), "location")
}
