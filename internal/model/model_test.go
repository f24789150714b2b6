package model

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestBookingStatusTransitions(t *testing.T) {
	all := []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled}
	allowed := map[[2]BookingStatus]bool{
		{BookingStatusPending, BookingStatusConfirmed}:   true,
		{BookingStatusPending, BookingStatusCancelled}:   true,
		{BookingStatusConfirmed, BookingStatusCompleted}: true,
		{BookingStatusConfirmed, BookingStatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			if got != allowed[[2]BookingStatus{from, to}] {
				t.Fatalf("%s -> %s = %v", from, to, got)
			}
		}
	}

	if !BookingStatusCompleted.IsTerminal() || !BookingStatusCancelled.IsTerminal() {
		t.Fatalf("completed and cancelled must be terminal")
	}
	if BookingStatusPending.IsTerminal() || BookingStatusConfirmed.IsTerminal() {
		t.Fatalf("pending and confirmed must not be terminal")
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseBookingStatus("confirmed"); err != nil {
		t.Fatalf("ParseBookingStatus(confirmed): %v", err)
	}
	if _, err := ParseBookingStatus("done"); err == nil {
		t.Fatalf("ParseBookingStatus(done) expected error")
	}
	if _, err := ParseRole("system"); err == nil {
		t.Fatalf("ParseRole(system) expected error")
	}
	if r, err := ParseRole("admin"); err != nil || r != RoleAdmin {
		t.Fatalf("ParseRole(admin) = %q, %v", r, err)
	}
	if _, err := ParseNotificationType("promotion"); err != nil {
		t.Fatalf("ParseNotificationType(promotion): %v", err)
	}
	if _, err := ParseNotificationType("spam"); err == nil {
		t.Fatalf("ParseNotificationType(spam) expected error")
	}
}

func TestFavoriteProviderIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	var c CustomerProfile
	if ids := c.FavoriteProviderIDs(); len(ids) != 0 {
		t.Fatalf("empty profile favorites = %v", ids)
	}

	c.SetFavoriteProviderIDs([]uuid.UUID{a, b})
	ids := c.FavoriteProviderIDs()
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("favorites = %v, want [%s %s]", ids, a, b)
	}

	// форма после JSON-прохода через базу
	c.Preferences = datatypes.JSONMap{
		PreferenceFavoriteProviders: []any{a.String(), "junk", 42},
		"theme":                     "dark",
	}
	ids = c.FavoriteProviderIDs()
	if len(ids) != 1 || ids[0] != a {
		t.Fatalf("favorites = %v, want [%s]", ids, a)
	}
}

func TestProviderRatingValue(t *testing.T) {
	var p *ProviderProfile
	if p.RatingValue() != 0 {
		t.Fatalf("nil provider rating must be 0")
	}
	r := 4.5
	p = &ProviderProfile{Rating: &r}
	if p.RatingValue() != 4.5 {
		t.Fatalf("rating = %v, want 4.5", p.RatingValue())
	}
}
