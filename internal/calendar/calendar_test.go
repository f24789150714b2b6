package calendar

import (
	"errors"
	"math"
	"testing"
	"time"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestWindowContainsHalfOpen(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 0, 0)
	end := mustTime(t, 2025, 2, 1, 0, 0)
	w, err := NewWindow(&start, &end)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	if !w.Contains(start) {
		t.Fatalf("window must contain its start")
	}
	if w.Contains(end) {
		t.Fatalf("window must not contain its end")
	}
	if !w.Contains(end.Add(-time.Nanosecond)) {
		t.Fatalf("window must contain instant before end")
	}
	if w.Contains(start.Add(-time.Nanosecond)) {
		t.Fatalf("window must not contain instant before start")
	}
}

func TestWindowOpenBounds(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 0, 0)

	w, err := NewWindow(&start, nil)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if !w.Contains(mustTime(t, 2100, 1, 1, 0, 0)) {
		t.Fatalf("open end must contain far future")
	}

	var unbounded Window
	if !unbounded.IsZero() || !unbounded.Contains(time.Time{}) {
		t.Fatalf("zero window must contain everything")
	}
}

func TestNewWindowRejectsInverted(t *testing.T) {
	a := mustTime(t, 2025, 1, 2, 0, 0)
	b := mustTime(t, 2025, 1, 1, 0, 0)
	if _, err := NewWindow(&a, &b); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
	if _, err := NewWindow(&a, &a); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("empty window err = %v, want ErrInvalidWindow", err)
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	// 01:30 по UTC+3: это ещё 31 декабря по UTC
	d := Day(time.Date(2025, 1, 1, 1, 30, 0, 0, loc))
	if !d.Start.Equal(mustTime(t, 2024, 12, 31, 0, 0)) || !d.End.Equal(mustTime(t, 2025, 1, 1, 0, 0)) {
		t.Fatalf("Day = [%v, %v)", d.Start, d.End)
	}
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, 5, 1, 5},
		{2, 500, 2, MaxPageSize},
		{4, 10, 4, 10},
	}
	for _, tt := range tests {
		got := NewPageRequest(tt.page, tt.size)
		if got.Page != tt.wantPage || got.PageSize != tt.wantSize {
			t.Fatalf("NewPageRequest(%d, %d) = %+v", tt.page, tt.size, got)
		}
	}
	if off := NewPageRequest(3, 10).Offset(); off != 20 {
		t.Fatalf("Offset = %d, want 20", off)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, NewPageRequest(1, 2))
	if len(p.Items) != 2 || p.Items[0] != 1 || !p.HasNext || p.HasPrev || p.Total != 5 {
		t.Fatalf("page 1 = %+v", p)
	}

	p = Paginate(items, NewPageRequest(3, 2))
	if len(p.Items) != 1 || p.Items[0] != 5 || p.HasNext || !p.HasPrev {
		t.Fatalf("page 3 = %+v", p)
	}

	p = Paginate(items, NewPageRequest(10, 2))
	if len(p.Items) != 0 || p.HasNext {
		t.Fatalf("page past end = %+v", p)
	}
	if p.Items == nil {
		t.Fatalf("items must be empty slice, not nil")
	}
}

func TestHugePageStaysPastEnd(t *testing.T) {
	for _, page := range []int{1 << 62, math.MaxInt, 92233720368547758} {
		req := NewPageRequest(page, MaxPageSize)
		if req.Page != MaxPage || req.Offset() < 0 {
			t.Fatalf("NewPageRequest(%d) = %+v, offset %d", page, req, req.Offset())
		}
		p := Paginate([]int{1, 2, 3}, req)
		if len(p.Items) != 0 || p.HasNext || !p.HasPrev || p.Total != 3 {
			t.Fatalf("page %d = %+v", page, p)
		}
	}

	// PageRequest, собранный в обход NewPageRequest, тоже не должен ронять Paginate.
	p := Paginate([]int{1, 2, 3}, PageRequest{Page: -5, PageSize: 2})
	if len(p.Items) != 2 || p.Items[0] != 1 {
		t.Fatalf("negative offset page = %+v", p)
	}
}

func TestMapKeepsMetadata(t *testing.T) {
	p := Paginate([]int{1, 2, 3}, NewPageRequest(1, 2))
	m := Map(p, func(i int) string { return string(rune('a' + i)) })
	if m.Total != 3 || !m.HasNext || len(m.Items) != 2 || m.Items[1] != "c" {
		t.Fatalf("Map = %+v", m)
	}
}
