package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Leganyst/service-marketplace/internal/auth"
	"github.com/Leganyst/service-marketplace/internal/dbtest"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

type recordedTransition struct{ from, to model.BookingStatus }

type fakeObserver struct {
	mu   sync.Mutex
	seen []recordedTransition
}

func (o *fakeObserver) ObserveBookingTransition(from, to model.BookingStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, recordedTransition{from, to})
}

// env wires every service over one in-memory database.
type env struct {
	identity      *IdentityService
	profiles      *ProfileService
	categories    *CategoryService
	locations     *LocationService
	catalog       *CatalogService
	bookings      *BookingService
	reviews       *ReviewService
	notifications *NotificationService
	analytics     *AnalyticsService
	observer      *fakeObserver

	admin    Actor
	provider Actor
	customer Actor

	providerProfile *model.ProviderProfile
	customerProfile *model.CustomerProfile
	category        *model.Category
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)

	users := repository.NewGormUserRepository(db)
	providers := repository.NewGormProviderRepository(db)
	customers := repository.NewGormCustomerRepository(db)
	categories := repository.NewGormCategoryRepository(db)
	locations := repository.NewGormLocationRepository(db)
	services := repository.NewGormServiceRepository(db)
	bookings := repository.NewGormBookingRepository(db)
	events := repository.NewGormEventRepository(db)
	reviews := repository.NewGormReviewRepository(db)
	notifications := repository.NewGormNotificationRepository(db)

	e := &env{observer: &fakeObserver{}}
	e.identity = NewIdentityService(users, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenIssuer("test-secret", time.Hour))
	e.profiles = NewProfileService(providers, customers, bookings, reviews)
	e.categories = NewCategoryService(categories, services, providers, bookings)
	e.locations = NewLocationService(locations)
	e.catalog = NewCatalogService(services, categories, providers, bookings)
	e.bookings = NewBookingService(bookings, events, services, providers, customers, notifications, e.observer)
	e.reviews = NewReviewService(reviews, services, bookings, customers, providers)
	e.notifications = NewNotificationService(notifications, users)
	e.analytics = NewAnalyticsService(bookings, services, providers, users)

	e.admin = e.register(t, model.RoleAdmin, "admin@example.com")
	e.provider = e.register(t, model.RoleProvider, "prov@example.com")
	e.customer = e.register(t, model.RoleCustomer, "cust@example.com")

	var err error
	e.providerProfile, err = e.profiles.CreateProviderProfile(ctx, e.provider, ProviderProfileInput{BusinessName: "Acme Cleaning", HourlyRate: 30})
	if err != nil {
		t.Fatalf("create provider profile: %v", err)
	}
	e.customerProfile, err = e.profiles.CreateCustomerProfile(ctx, e.customer, CustomerProfileInput{Address: "1 Main St"})
	if err != nil {
		t.Fatalf("create customer profile: %v", err)
	}
	e.category, err = e.categories.Create(ctx, e.admin, CategoryInput{Name: "Cleaning"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return e
}

func (e *env) register(t *testing.T, role model.Role, email string) Actor {
	t.Helper()
	in := RegisterInput{Email: email, FullName: string(role) + " user", Password: "password123"}
	var (
		u   *model.User
		err error
	)
	if role == model.RoleAdmin {
		u, err = e.identity.CreateAdmin(context.Background(), in)
	} else {
		u, err = e.identity.Register(context.Background(), role, in)
	}
	if err != nil {
		t.Fatalf("register %s: %v", role, err)
	}
	return Actor{UserID: u.ID, Role: u.Role}
}

func (e *env) addService(t *testing.T, title string, price float64) *model.Service {
	t.Helper()
	svc, err := e.catalog.Create(context.Background(), e.provider, ServiceInput{
		CategoryID:      e.category.ID,
		Title:           title,
		Price:           price,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create service %q: %v", title, err)
	}
	return svc
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}
