package calendar

import (
	"errors"
	"time"
)

var ErrInvalidWindow = errors.New("invalid window: period_start must be before period_end")

// Window: полуоткрытый интервал [Start, End). Любая граница может
// отсутствовать, тогда с этой стороны окно не ограничено.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// NewWindow validates that a closed window is non-empty.
func NewWindow(start, end *time.Time) (Window, error) {
	if start != nil && end != nil && !start.Before(*end) {
		return Window{}, ErrInvalidWindow
	}
	w := Window{}
	if start != nil {
		s := start.UTC()
		w.Start = &s
	}
	if end != nil {
		e := end.UTC()
		w.End = &e
	}
	return w, nil
}

// Contains: Start <= t < End.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

// IsZero reports whether the window is unbounded on both sides.
func (w Window) IsZero() bool {
	return w.Start == nil && w.End == nil
}

// Day returns the UTC calendar day containing t.
func Day(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return Window{Start: &start, End: &end}
}
