package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/service"
)

type reviewRequest struct {
	ServiceID uuid.UUID `json:"service_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	IsPublic  *bool     `json:"is_public"`
}

type reviewUpdateRequest struct {
	Rating   *int    `json:"rating"`
	Comment  *string `json:"comment"`
	IsPublic *bool   `json:"is_public"`
}

func (a *API) reviewRoutes(r *mux.Router) {
	r.HandleFunc("/reviews", a.authed(a.handleCreateReview)).Methods(http.MethodPost)
	r.HandleFunc("/reviews/service/{id}", a.handleReviewsByService).Methods(http.MethodGet)
	r.HandleFunc("/reviews/provider/{id}", a.handleReviewsByProvider).Methods(http.MethodGet)
	r.HandleFunc("/reviews/customer/{id}", a.authed(a.handleReviewsByCustomer)).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", a.authed(a.handleGetReview)).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", a.authed(a.handleUpdateReview)).Methods(http.MethodPut)
	r.HandleFunc("/reviews/{id}", a.authed(a.handleDeleteReview)).Methods(http.MethodDelete)
}

func (a *API) handleCreateReview(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in reviewRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	rv, err := a.svc.Reviews.Create(r.Context(), actor, service.ReviewInput{
		ServiceID: in.ServiceID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		IsPublic:  in.IsPublic,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (a *API) handleReviewsByService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Reviews.ByService(r.Context(), id, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleReviewsByProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Reviews.ByProvider(r.Context(), id, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleReviewsByCustomer(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Reviews.ByCustomer(r.Context(), actor, id, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleGetReview(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rv, err := a.svc.Reviews.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (a *API) handleUpdateReview(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in reviewUpdateRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	rv, err := a.svc.Reviews.Update(r.Context(), actor, id, service.ReviewUpdate{
		Rating:   in.Rating,
		Comment:  in.Comment,
		IsPublic: in.IsPublic,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (a *API) handleDeleteReview(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Reviews.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
