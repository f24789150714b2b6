package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Leganyst/service-marketplace/internal/dbtest"
	"github.com/Leganyst/service-marketplace/internal/model"
)

// Повторяет ключевые проверки на настоящем Postgres, включая гонку переходов.
func TestPostgresRepositories(t *testing.T) {
	f := newFixtureOn(t, dbtest.OpenPostgres(t))
	ctx := context.Background()

	dup := &model.User{Email: "PROV@example.com", FullName: "Dup", Role: model.RoleCustomer, PasswordHash: "x"}
	if err := NewGormUserRepository(f.db).Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email err = %v, want ErrDuplicate", err)
	}

	got, err := NewGormServiceRepository(f.db).Search(ctx, ServiceFilter{Query: "deep"})
	if err != nil || len(got) != 1 {
		t.Fatalf("text search = %d, %v; want 1", len(got), err)
	}

	repo := NewGormBookingRepository(f.db)
	b := f.addBooking(t, f.service, model.BookingStatusPending)

	const racers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		stale int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Transition(ctx, b.ID, model.BookingStatusPending, model.BookingStatusConfirmed, nil,
				&model.Event{EventType: model.EventTypeBookingStatusChanged, FromStatus: model.BookingStatusPending, ToStatus: model.BookingStatusConfirmed})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrStale):
				stale++
			default:
				t.Errorf("Transition: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || stale != racers-1 {
		t.Fatalf("wins = %d, stale = %d; want 1 and %d", wins, stale, racers-1)
	}

	events, err := NewGormEventRepository(f.db).ListByBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListByBooking: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (created + one transition)", len(events))
	}
}
