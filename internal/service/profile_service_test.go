package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/model"
)

func TestProfileCreatedOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.profiles.CreateProviderProfile(ctx, e.provider, ProviderProfileInput{BusinessName: "Again"})
	wantErr(t, err, ErrDomainRule)
	_, err = e.profiles.CreateCustomerProfile(ctx, e.customer, CustomerProfileInput{})
	wantErr(t, err, ErrDomainRule)
	_, err = e.profiles.CreateProviderProfile(ctx, e.customer, ProviderProfileInput{BusinessName: "Nope"})
	wantErr(t, err, ErrForbidden)
}

func TestFavorites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.profiles.AddFavorite(ctx, e.customer, uuid.New())
	wantErr(t, err, ErrNotFound)

	changed, err := e.profiles.AddFavorite(ctx, e.customer, e.providerProfile.ID)
	if err != nil || !changed {
		t.Fatalf("add favorite = %v, %v", changed, err)
	}
	changed, err = e.profiles.AddFavorite(ctx, e.customer, e.providerProfile.ID)
	if err != nil || changed {
		t.Fatalf("second add = %v, %v, want no change", changed, err)
	}

	dash, err := e.profiles.CustomerDashboard(ctx, e.customer)
	if err != nil {
		t.Fatal(err)
	}
	if len(dash.FavoriteProviders) != 1 || dash.FavoriteProviders[0].ID != e.providerProfile.ID {
		t.Fatalf("favorites = %+v", dash.FavoriteProviders)
	}

	changed, err = e.profiles.RemoveFavorite(ctx, e.customer, e.providerProfile.ID)
	if err != nil || !changed {
		t.Fatalf("remove favorite = %v, %v", changed, err)
	}
	changed, err = e.profiles.RemoveFavorite(ctx, e.customer, e.providerProfile.ID)
	if err != nil || changed {
		t.Fatalf("second remove = %v, %v, want no change", changed, err)
	}
}

func TestCreateCustomerProfileIgnoresFavorites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	other := e.register(t, model.RoleCustomer, "other@example.com")

	c, err := e.profiles.CreateCustomerProfile(ctx, other, CustomerProfileInput{
		Address: "2 Side St",
		Preferences: map[string]any{
			model.PreferenceFavoriteProviders: []any{uuid.NewString()},
			"language":                        "en",
		},
	})
	if err != nil {
		t.Fatalf("create customer profile: %v", err)
	}
	if ids := c.FavoriteProviderIDs(); len(ids) != 0 {
		t.Fatalf("favorites after create = %v, want none", ids)
	}

	got, err := e.profiles.GetOwnCustomerProfile(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if ids := got.FavoriteProviderIDs(); len(ids) != 0 {
		t.Fatalf("stored favorites = %v, want none", ids)
	}
	if got.Preferences["language"] != "en" {
		t.Fatalf("preferences = %v, want language kept", got.Preferences)
	}
}

func TestDashboardsAndStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	e.completeBooking(t, svc)
	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.bookings.Confirm(ctx, e.provider, b.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 5}); err != nil {
		t.Fatal(err)
	}

	pd, err := e.profiles.ProviderDashboard(ctx, e.provider)
	if err != nil {
		t.Fatal(err)
	}
	if pd.TodayEarnings != 50 || pd.UpcomingBookings != 1 || pd.AverageRating != 5 || pd.TotalReviews != 1 {
		t.Fatalf("provider dashboard = %+v", pd)
	}

	ps, err := e.profiles.ProviderStats(ctx, e.provider)
	if err != nil {
		t.Fatal(err)
	}
	if ps.TotalBookings != 2 || ps.CompletedBookings != 1 || ps.TotalEarnings != 50 {
		t.Fatalf("provider stats = %+v", ps)
	}

	cd, err := e.profiles.CustomerDashboard(ctx, e.customer)
	if err != nil {
		t.Fatal(err)
	}
	if cd.ActiveBookings != 1 || cd.PastBookings != 1 || len(cd.RecentReviews) != 1 {
		t.Fatalf("customer dashboard = %+v", cd)
	}

	cs, err := e.profiles.CustomerStats(ctx, e.customer)
	if err != nil {
		t.Fatal(err)
	}
	if cs.TotalSpent != 50 || cs.AverageRatingGiven != 5 || cs.TotalReviewsGiven != 1 {
		t.Fatalf("customer stats = %+v", cs)
	}
}
