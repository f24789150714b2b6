package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

func tomorrow() time.Time { return time.Now().UTC().Add(24 * time.Hour) }

func TestCancelThenCompleteFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BookingStatusPending {
		t.Fatalf("status = %s, want pending", b.Status)
	}
	if b.TotalPrice != 50 {
		t.Fatalf("total_price = %v, want service price 50", b.TotalPrice)
	}
	if b.Service == nil || b.Service.ID != svc.ID || b.Customer == nil {
		t.Fatalf("view not enriched: %+v", b)
	}

	cancelled, err := e.bookings.Cancel(ctx, e.customer, b.ID, nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("after cancel: status=%s cancelled_at=%v", cancelled.Status, cancelled.CancelledAt)
	}

	_, err = e.bookings.Complete(ctx, e.provider, b.ID, nil)
	wantErr(t, err, ErrInvalidState)

	want := []recordedTransition{{"", model.BookingStatusPending}, {model.BookingStatusPending, model.BookingStatusCancelled}}
	if len(e.observer.seen) != len(want) || e.observer.seen[0] != want[0] || e.observer.seen[1] != want[1] {
		t.Fatalf("observed transitions = %+v", e.observer.seen)
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.bookings.Complete(ctx, e.provider, b.ID, nil)
	wantErr(t, err, ErrInvalidState)

	if _, err := e.bookings.Confirm(ctx, e.provider, b.ID, nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	notes := "done, thanks"
	done, err := e.bookings.Complete(ctx, e.provider, b.ID, &notes)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.BookingStatusCompleted || done.Notes != notes {
		t.Fatalf("after complete: status=%s notes=%q", done.Status, done.Notes)
	}

	_, err = e.bookings.Cancel(ctx, e.customer, b.ID, nil)
	wantErr(t, err, ErrInvalidState)

	events, err := e.bookings.Events(ctx, e.customer, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3 (created, confirmed, completed)", len(events))
	}
}

func TestCreateBookingGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	_, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: uuid.New(), BookingDate: tomorrow()})
	wantErr(t, err, ErrNotFound)

	if _, err := e.catalog.ToggleAvailability(ctx, e.provider, svc.ID); err != nil {
		t.Fatal(err)
	}
	_, err = e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	wantErr(t, err, ErrDomainRule)

	_, err = e.bookings.Create(ctx, e.provider, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	wantErr(t, err, ErrForbidden)
}

func TestCreateBookingInitialStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	_, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow(), Status: model.BookingStatusCompleted})
	wantErr(t, err, ErrInvalidState)

	price := 42.0
	b, err := e.bookings.Create(ctx, e.customer, BookingInput{
		ServiceID:   svc.ID,
		BookingDate: tomorrow(),
		Status:      model.BookingStatusConfirmed,
		TotalPrice:  &price,
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != model.BookingStatusConfirmed || b.TotalPrice != 42 {
		t.Fatalf("got status=%s price=%v", b.Status, b.TotalPrice)
	}
}

func TestTransitionRoleGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.bookings.Confirm(ctx, e.customer, b.ID, nil)
	wantErr(t, err, ErrForbidden)

	other := e.register(t, model.RoleProvider, "other@example.com")
	if _, err := e.profiles.CreateProviderProfile(ctx, other, ProviderProfileInput{BusinessName: "Other"}); err != nil {
		t.Fatal(err)
	}
	_, err = e.bookings.Confirm(ctx, other, b.ID, nil)
	wantErr(t, err, ErrForbidden)
	_, err = e.bookings.Get(ctx, other, b.ID)
	wantErr(t, err, ErrForbidden)

	if _, err := e.bookings.Confirm(ctx, e.admin, b.ID, nil); err != nil {
		t.Fatalf("admin confirm: %v", err)
	}
	_, err = e.bookings.Complete(ctx, e.admin, b.ID, nil)
	wantErr(t, err, ErrForbidden)

	_, err = e.bookings.UpdateStatus(ctx, e.provider, b.ID, model.BookingStatusPending, nil)
	wantErr(t, err, ErrInvalidState)
	_, err = e.bookings.UpdateStatus(ctx, e.provider, b.ID, "archived", nil)
	wantErr(t, err, ErrInvalidArgument)
}

func TestBookingNotifications(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.bookings.Confirm(ctx, e.provider, b.ID, nil); err != nil {
		t.Fatal(err)
	}

	provPage, err := e.notifications.List(ctx, e.provider, true, calendar.NewPageRequest(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if provPage.Total != 1 || provPage.Items[0].Type != model.NotificationTypeBooking {
		t.Fatalf("provider notifications = %+v", provPage)
	}
	custPage, err := e.notifications.List(ctx, e.customer, false, calendar.NewPageRequest(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if custPage.Total != 1 {
		t.Fatalf("customer notifications = %d, want 1", custPage.Total)
	}
}

func TestBookingSearchScopesByRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	for i := 0; i < 3; i++ {
		if _, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()}); err != nil {
			t.Fatal(err)
		}
	}

	other := e.register(t, model.RoleCustomer, "other@example.com")
	if _, err := e.profiles.CreateCustomerProfile(ctx, other, CustomerProfileInput{}); err != nil {
		t.Fatal(err)
	}

	page := calendar.NewPageRequest(1, 2)
	mine, err := e.bookings.CustomerBookings(ctx, e.customer, nil, page)
	if err != nil {
		t.Fatal(err)
	}
	if mine.Total != 3 || len(mine.Items) != 2 || !mine.HasNext {
		t.Fatalf("customer page = total %d items %d has_next %v", mine.Total, len(mine.Items), mine.HasNext)
	}

	theirs, err := e.bookings.Search(ctx, other, repository.BookingFilter{}, page)
	if err != nil {
		t.Fatal(err)
	}
	if theirs.Total != 0 {
		t.Fatalf("other customer sees %d bookings", theirs.Total)
	}

	prov, err := e.bookings.ProviderBookings(ctx, e.provider, []model.BookingStatus{model.BookingStatusPending}, page)
	if err != nil {
		t.Fatal(err)
	}
	if prov.Total != 3 {
		t.Fatalf("provider sees %d bookings, want 3", prov.Total)
	}
}

func TestProviderBookingStatsZeroRates(t *testing.T) {
	e := newEnv(t)
	stats, err := e.bookings.ProviderStats(context.Background(), e.provider)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 || stats.CompletionRate != 0 || stats.CancellationRate != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestUpdateDetailsAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	b, err := e.bookings.Create(ctx, e.customer, BookingInput{ServiceID: svc.ID, BookingDate: tomorrow()})
	if err != nil {
		t.Fatal(err)
	}

	when := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	notes := "ring twice"
	updated, err := e.bookings.UpdateDetails(ctx, e.customer, b.ID, BookingUpdate{BookingDate: &when, Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.BookingDate.Equal(when) || updated.Notes != notes {
		t.Fatalf("update not applied: %+v", updated.Booking)
	}

	_, err = e.bookings.UpdateDetails(ctx, e.provider, b.ID, BookingUpdate{Notes: &notes})
	wantErr(t, err, ErrForbidden)

	wantErr(t, e.bookings.Delete(ctx, e.customer, b.ID), ErrForbidden)
	if err := e.bookings.Delete(ctx, e.admin, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = e.bookings.Get(ctx, e.admin, b.ID)
	wantErr(t, err, ErrNotFound)
}
