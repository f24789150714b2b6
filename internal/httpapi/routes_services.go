package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

type serviceRequest struct {
	CategoryID      uuid.UUID `json:"category_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	IsAvailable     *bool     `json:"is_available"`
}

func (s serviceRequest) input() service.ServiceInput {
	return service.ServiceInput{
		CategoryID:      s.CategoryID,
		Title:           s.Title,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		IsAvailable:     s.IsAvailable,
	}
}

func (a *API) serviceRoutes(r *mux.Router) {
	r.HandleFunc("/services", a.handleListServices).Methods(http.MethodGet)
	r.HandleFunc("/services", a.authed(a.handleCreateService)).Methods(http.MethodPost)
	r.HandleFunc("/services/search", a.handleSearchServices).Methods(http.MethodGet)
	r.HandleFunc("/services/featured", a.handleFeaturedServices).Methods(http.MethodGet)
	r.HandleFunc("/services/category/{id}", a.handleServicesByCategory).Methods(http.MethodGet)
	r.HandleFunc("/services/provider/{id}", a.handleServicesByProvider).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", a.handleGetService).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", a.authed(a.handleUpdateService)).Methods(http.MethodPut)
	r.HandleFunc("/services/{id}", a.authed(a.handleDeleteService)).Methods(http.MethodDelete)
	r.HandleFunc("/services/{id}/toggle-availability", a.authed(a.handleToggleService)).Methods(http.MethodPost)
	r.HandleFunc("/services/{id}/stats", a.authed(a.handleServiceStats)).Methods(http.MethodGet)
}

func serviceFilter(q *query) repository.ServiceFilter {
	return repository.ServiceFilter{
		CategoryID:  q.UUID("category_id"),
		ProviderID:  q.UUID("provider_id"),
		MinPrice:    q.Float("min_price"),
		MaxPrice:    q.Float("max_price"),
		IsAvailable: q.Bool("is_available"),
		Query:       q.String("query"),
	}
}

func (a *API) handleListServices(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	f := serviceFilter(q)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Catalog.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSearchServices(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	search := service.ServiceSearch{
		ServiceFilter:     serviceFilter(q),
		MinProviderRating: q.Float("min_rating"),
		SortBy:            q.String("sort_by"),
	}
	switch order := strings.ToLower(q.String("sort_order")); order {
	case "", "asc":
	case "desc":
		search.SortDesc = true
	default:
		q.fail("sort_order", `"asc" or "desc"`)
	}
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Catalog.Search(r.Context(), search, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleFeaturedServices(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	limit := q.Int("limit", service.FeaturedDefaultLimit)
	if !q.ok(w) {
		return
	}
	items, err := a.svc.Catalog.Featured(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleServicesByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Categories.Services(r.Context(), id, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleServicesByProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Catalog.ByProvider(r.Context(), id, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCreateService(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in serviceRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	s, err := a.svc.Catalog.Create(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a *API) handleGetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := a.svc.Catalog.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleUpdateService(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in serviceRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	s, err := a.svc.Catalog.Update(r.Context(), actor, id, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleDeleteService(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Catalog.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleToggleService(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := a.svc.Catalog.ToggleAvailability(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleServiceStats(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := a.svc.Catalog.Stats(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
