package service

import (
	"context"
	"testing"

	"github.com/Leganyst/service-marketplace/internal/calendar"
)

func TestReviewRequiresCompletedBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)

	_, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 4})
	wantErr(t, err, ErrDomainRule)

	e.completeBooking(t, svc)

	_, err = e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 6})
	wantErr(t, err, ErrInvalidArgument)

	rv, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 4, Comment: "good"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if rv.ProviderID != e.providerProfile.ID || rv.Rating != 4 || rv.Comment != "good" || !rv.IsPublic {
		t.Fatalf("review = %+v", rv)
	}

	_, err = e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 5})
	wantErr(t, err, ErrDomainRule)
}

func TestReviewWritesRecomputeRating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	e.completeBooking(t, svc)

	rv, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 2})
	if err != nil {
		t.Fatal(err)
	}
	p, err := e.profiles.GetProvider(ctx, e.providerProfile.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.RatingValue() != 2 || p.TotalReviews != 1 {
		t.Fatalf("after create: rating=%v total=%d", p.RatingValue(), p.TotalReviews)
	}

	if _, err := e.reviews.Update(ctx, e.customer, rv.ID, ReviewUpdate{Rating: ptr(4)}); err != nil {
		t.Fatal(err)
	}
	p, _ = e.profiles.GetProvider(ctx, e.providerProfile.ID)
	if p.RatingValue() != 4 {
		t.Fatalf("after update: rating=%v", p.RatingValue())
	}

	wantErr(t, e.reviews.Delete(ctx, e.provider, rv.ID), ErrForbidden)
	if err := e.reviews.Delete(ctx, e.customer, rv.ID); err != nil {
		t.Fatal(err)
	}
	p, _ = e.profiles.GetProvider(ctx, e.providerProfile.ID)
	if p.Rating != nil || p.TotalReviews != 0 {
		t.Fatalf("after delete: rating=%v total=%d", p.Rating, p.TotalReviews)
	}
}

func TestPrivateReviewsListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.addService(t, "Deep clean", 50)
	e.completeBooking(t, svc)

	rv, err := e.reviews.Create(ctx, e.customer, ReviewInput{ServiceID: svc.ID, Rating: 3, IsPublic: ptr(false)})
	if err != nil {
		t.Fatal(err)
	}

	page := calendar.NewPageRequest(1, 10)
	public, err := e.reviews.ByService(ctx, svc.ID, page)
	if err != nil {
		t.Fatal(err)
	}
	if public.Total != 0 {
		t.Fatalf("private review listed publicly")
	}

	own, err := e.reviews.ByCustomer(ctx, e.customer, e.customerProfile.ID, page)
	if err != nil {
		t.Fatal(err)
	}
	if own.Total != 1 {
		t.Fatalf("author sees %d reviews, want 1", own.Total)
	}

	byProvider, err := e.reviews.ByCustomer(ctx, e.provider, e.customerProfile.ID, page)
	if err != nil {
		t.Fatal(err)
	}
	if byProvider.Total != 0 {
		t.Fatalf("provider sees private review")
	}

	_, err = e.reviews.Get(ctx, e.provider, rv.ID)
	wantErr(t, err, ErrNotFound)
	if _, err := e.reviews.Get(ctx, e.admin, rv.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}
