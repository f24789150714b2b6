package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/dbtest"
	"github.com/Leganyst/service-marketplace/internal/model"
)

type fixture struct {
	db       *gorm.DB
	provUser *model.User
	custUser *model.User
	provider *model.ProviderProfile
	customer *model.CustomerProfile
	category *model.Category
	service  *model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.Open(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{db: db}
	f.provUser = &model.User{Email: "prov@example.com", FullName: "Prov", Role: model.RoleProvider, PasswordHash: "x", IsActive: true}
	f.custUser = &model.User{Email: "cust@example.com", FullName: "Cust", Role: model.RoleCustomer, PasswordHash: "x", IsActive: true}
	users := NewGormUserRepository(db)
	for _, u := range []*model.User{f.provUser, f.custUser} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	f.provider = &model.ProviderProfile{UserID: f.provUser.ID, BusinessName: "Acme Cleaning", HourlyRate: 30}
	if err := NewGormProviderRepository(db).Create(ctx, f.provider); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	f.customer = &model.CustomerProfile{UserID: f.custUser.ID, Address: "1 Main St"}
	if err := NewGormCustomerRepository(db).Create(ctx, f.customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	f.category = &model.Category{Name: "Cleaning", IsActive: true}
	if err := NewGormCategoryRepository(db).Create(ctx, f.category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	f.service = f.addService(t, "Deep clean", 50, true)
	return f
}

func (f *fixture) addService(t *testing.T, title string, price float64, available bool) *model.Service {
	t.Helper()
	s := &model.Service{
		ProviderID:      f.provider.ID,
		CategoryID:      f.category.ID,
		Title:           title,
		Price:           price,
		DurationMinutes: 60,
		IsAvailable:     available,
	}
	if err := NewGormServiceRepository(f.db).Create(context.Background(), s); err != nil {
		t.Fatalf("create service: %v", err)
	}
	return s
}

func (f *fixture) addBooking(t *testing.T, s *model.Service, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{
		ServiceID:   s.ID,
		CustomerID:  f.customer.ID,
		BookingDate: time.Now().UTC().Add(24 * time.Hour),
		Status:      status,
		TotalPrice:  s.Price,
	}
	if err := NewGormBookingRepository(f.db).Create(context.Background(), b, &model.Event{EventType: model.EventTypeBookingCreated, ToStatus: status}); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}
