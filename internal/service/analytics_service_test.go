package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
)

func around(now time.Time) calendar.Window {
	start, end := now.Add(-time.Hour), now.Add(time.Hour)
	w, _ := calendar.NewWindow(&start, &end)
	return w
}

func TestProviderAnalyticsCountsCompletedRevenue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	e.completeBooking(t, svc)

	if _, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()}); err != nil {
		t.Fatal(err)
	}
	cancelled, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.bookings.Cancel(ctx, e.customer, cancelled.ID, nil); err != nil {
		t.Fatal(err)
	}

	got, err := e.analytics.Provider(ctx, e.provider, e.providerProfile.ID, around(time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Completed != 1 || got.Revenue != 50 {
		t.Fatalf("completed=%d revenue=%v, want 1 and 50", got.Completed, got.Revenue)
	}
	if got.Total != 3 || got.Cancelled != 1 || got.Pending != 1 || got.TotalServices != 1 {
		t.Fatalf("analytics = %+v", got)
	}

	past := time.Now().UTC().Add(-48 * time.Hour)
	got, err = e.analytics.Provider(ctx, e.provider, e.providerProfile.ID, around(past))
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 0 || got.CompletionRate != 0 || got.CancellationRate != 0 {
		t.Fatalf("empty window analytics = %+v", got)
	}
}

func TestAnalyticsAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	_, err := e.analytics.Provider(ctx, e.customer, e.providerProfile.ID, calendar.Window{})
	wantErr(t, err, ErrForbidden)
	_, err = e.analytics.Provider(ctx, e.admin, uuid.New(), calendar.Window{})
	wantErr(t, err, ErrNotFound)

	if _, err := e.analytics.Service(ctx, e.admin, svc.ID, calendar.Window{}); err != nil {
		t.Fatalf("admin service analytics: %v", err)
	}
	_, err = e.analytics.Platform(ctx, e.provider, calendar.Window{})
	wantErr(t, err, ErrForbidden)
}

func TestPlatformAnalytics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	e.addService(t, "Windows", 20)
	e.completeBooking(t, svc)
	if _, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 4}); err != nil {
		t.Fatal(err)
	}

	got, err := e.analytics.Platform(ctx, e.admin, calendar.Window{})
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalUsers != 3 || got.TotalProviders != 1 || got.TotalCustomers != 1 || got.UsersByRole[model.RoleAdmin] != 1 {
		t.Fatalf("users = %+v", got)
	}
	if got.TotalServices != 2 || got.Completed != 1 || got.Revenue != 50 {
		t.Fatalf("platform = %+v", got)
	}
	// two services of one provider still count the provider once
	if got.AverageRating != 4 {
		t.Fatalf("average_rating = %v, want 4", got.AverageRating)
	}
}
