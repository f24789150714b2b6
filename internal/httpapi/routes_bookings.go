package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

type bookingRequest struct {
	ServiceID   uuid.UUID           `json:"service_id"`
	BookingDate time.Time           `json:"booking_date"`
	Status      model.BookingStatus `json:"status"`
	Notes       string              `json:"notes"`
	TotalPrice  *float64            `json:"total_price"`
}

type bookingUpdateRequest struct {
	BookingDate *time.Time `json:"booking_date"`
	Notes       *string    `json:"notes"`
}

type transitionRequest struct {
	Notes *string `json:"notes"`
}

type statusRequest struct {
	Status model.BookingStatus `json:"status"`
	Notes  *string             `json:"notes"`
}

// Statuses reads a comma separated status list.
func (q *query) Statuses(key string) []model.BookingStatus {
	s := q.raw(key)
	if s == "" {
		return nil
	}
	var out []model.BookingStatus
	for _, part := range strings.Split(s, ",") {
		st, err := model.ParseBookingStatus(strings.TrimSpace(part))
		if err != nil {
			q.fail(key, "a list of booking statuses")
			return nil
		}
		out = append(out, st)
	}
	return out
}

func (a *API) bookingRoutes(r *mux.Router) {
	r.HandleFunc("/bookings", a.authed(a.handleSearchBookings)).Methods(http.MethodGet)
	r.HandleFunc("/bookings", a.authed(a.handleCreateBooking)).Methods(http.MethodPost)
	r.HandleFunc("/bookings/search", a.authed(a.handleSearchBookings)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/customer/me", a.authed(a.handleCustomerBookings)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/provider/me", a.authed(a.handleProviderBookings)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/provider/stats", a.authed(a.handleProviderBookingStats)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id}", a.authed(a.handleGetBooking)).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id}", a.authed(a.handleUpdateBooking)).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{id}", a.authed(a.handleDeleteBooking)).Methods(http.MethodDelete)
	r.HandleFunc("/bookings/{id}/cancel", a.authed(a.transition(a.svc.Bookings.Cancel))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/confirm", a.authed(a.transition(a.svc.Bookings.Confirm))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/complete", a.authed(a.transition(a.svc.Bookings.Complete))).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/status", a.authed(a.handleBookingStatus)).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{id}/events", a.authed(a.handleBookingEvents)).Methods(http.MethodGet)
}

func (a *API) handleCreateBooking(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in bookingRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	b, err := a.svc.Bookings.Create(r.Context(), actor, service.BookingInput{
		ServiceID:   in.ServiceID,
		BookingDate: in.BookingDate,
		Status:      in.Status,
		Notes:       in.Notes,
		TotalPrice:  in.TotalPrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) handleSearchBookings(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	f := repository.BookingFilter{
		CustomerID: q.UUID("customer_id"),
		ProviderID: q.UUID("provider_id"),
		ServiceID:  q.UUID("service_id"),
		CategoryID: q.UUID("category_id"),
		Statuses:   q.Statuses("status"),
		DateFrom:   q.Time("date_from"),
		DateTo:     q.Time("date_to"),
		CreatedIn:  q.Window(),
	}
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Bookings.Search(r.Context(), actor, f, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCustomerBookings(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	statuses := q.Statuses("status")
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Bookings.CustomerBookings(r.Context(), actor, statuses, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleProviderBookings(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	statuses := q.Statuses("status")
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Bookings.ProviderBookings(r.Context(), actor, statuses, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleProviderBookingStats(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	s, err := a.svc.Bookings.ProviderStats(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleGetBooking(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := a.svc.Bookings.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleUpdateBooking(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in bookingUpdateRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	b, err := a.svc.Bookings.UpdateDetails(r.Context(), actor, id, service.BookingUpdate{
		BookingDate: in.BookingDate,
		Notes:       in.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleDeleteBooking(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Bookings.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, actor service.Actor, id uuid.UUID, notes *string) (*service.BookingView, error)

// transition serves cancel, confirm and complete; the body with notes is
// optional.
func (a *API) transition(fn transitionFunc) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var in transitionRequest
		if err := a.decodeJSON(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			a.writeDecodeError(w, err)
			return
		}
		b, err := fn(r.Context(), actor, id, in.Notes)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func (a *API) handleBookingStatus(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in statusRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	b, err := a.svc.Bookings.UpdateStatus(r.Context(), actor, id, in.Status, in.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleBookingEvents(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	events, err := a.svc.Bookings.Events(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
