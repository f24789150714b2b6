package service

import "github.com/Leganyst/service-marketplace/internal/model"

// BookingSummary: свёртка по набору бронирований.
type BookingSummary struct {
	Total     int64 `json:"total_bookings"`
	Pending   int64 `json:"pending_bookings"`
	Confirmed int64 `json:"confirmed_bookings"`
	Completed int64 `json:"completed_bookings"`
	Cancelled int64 `json:"cancelled_bookings"`
	// Revenue sums total_price of completed bookings only.
	Revenue float64 `json:"total_revenue"`
}

// Summarize counts bookings by status and sums revenue.
func Summarize(bookings []model.Booking) BookingSummary {
	var s BookingSummary
	for _, b := range bookings {
		s.Total++
		switch b.Status {
		case model.BookingStatusPending:
			s.Pending++
		case model.BookingStatusConfirmed:
			s.Confirmed++
		case model.BookingStatusCompleted:
			s.Completed++
			s.Revenue += b.TotalPrice
		case model.BookingStatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// Revenue is Summarize(bookings).Revenue.
func Revenue(bookings []model.Booking) float64 {
	return Summarize(bookings).Revenue
}

// Rates returns completed/total and cancelled/total, both 0 when total is 0.
func (s BookingSummary) Rates() (completion, cancellation float64) {
	if s.Total == 0 {
		return 0, 0
	}
	return float64(s.Completed) / float64(s.Total), float64(s.Cancelled) / float64(s.Total)
}

// MeanRating averages the providers that have a rating, once per provider.
// Unrated providers are skipped; the result is 0 when none is rated.
func MeanRating(providers []model.ProviderProfile) float64 {
	var (
		sum float64
		n   int
	)
	for _, p := range providers {
		if p.Rating == nil {
			continue
		}
		sum += *p.Rating
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
