package service

import (
	"context"
	"testing"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

func TestNotificationLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.notifications.Create(ctx, e.customer, NotificationInput{UserID: e.provider.UserID, Title: "hi"})
	wantErr(t, err, ErrForbidden)

	n, err := e.notifications.Create(ctx, e.admin, NotificationInput{UserID: e.customer.UserID, Type: model.NotificationTypePromotion, Title: "Sale"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.notifications.Create(ctx, e.customer, NotificationInput{Title: "Reminder"}); err != nil {
		t.Fatal(err)
	}

	_, err = e.notifications.Get(ctx, e.provider, n.ID)
	wantErr(t, err, ErrForbidden)

	read, err := e.notifications.MarkRead(ctx, e.customer, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !read.IsRead {
		t.Fatalf("notification not marked read")
	}

	unread, err := e.notifications.List(ctx, e.customer, true, calendar.NewPageRequest(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if unread.Total != 1 || unread.Items[0].Type != model.NotificationTypeSystem {
		t.Fatalf("unread = %+v", unread.Items)
	}

	changed, err := e.notifications.MarkAllRead(ctx, e.customer)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 1 {
		t.Fatalf("mark all read changed %d, want 1", changed)
	}

	other := e.provider.UserID
	_, err = e.notifications.Search(ctx, e.customer, repository.NotificationFilter{UserID: &other}, calendar.NewPageRequest(1, 10))
	wantErr(t, err, ErrForbidden)

	promo := model.NotificationTypePromotion
	found, err := e.notifications.Search(ctx, e.admin, repository.NotificationFilter{UserID: &e.customer.UserID, Type: &promo}, calendar.NewPageRequest(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if found.Total != 1 {
		t.Fatalf("admin search = %d, want 1", found.Total)
	}

	wantErr(t, e.notifications.Delete(ctx, e.provider, n.ID), ErrForbidden)
	if err := e.notifications.Delete(ctx, e.customer, n.ID); err != nil {
		t.Fatal(err)
	}
}
