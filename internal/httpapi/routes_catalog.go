package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

type categoryRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	ParentID    *uuid.UUID `json:"parent_id"`
	IsActive    *bool      `json:"is_active"`
}

func (c categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
	}
}

type locationRequest struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	IsActive   *bool    `json:"is_active"`
}

func (l locationRequest) input() service.LocationInput {
	return service.LocationInput{
		Name:       l.Name,
		Address:    l.Address,
		City:       l.City,
		State:      l.State,
		Country:    l.Country,
		PostalCode: l.PostalCode,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		IsActive:   l.IsActive,
	}
}

func (a *API) categoryRoutes(r *mux.Router) {
	r.HandleFunc("/categories", a.handleListCategories).Methods(http.MethodGet)
	r.HandleFunc("/categories", a.authed(a.handleCreateCategory)).Methods(http.MethodPost)
	r.HandleFunc("/categories/tree", a.handleCategoryTree).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", a.handleGetCategory).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", a.authed(a.handleUpdateCategory)).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id}", a.authed(a.handleDeleteCategory)).Methods(http.MethodDelete)
	r.HandleFunc("/categories/{id}/children", a.handleCategoryChildren).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}/services", a.handleCategoryServices).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}/stats", a.handleCategoryStats).Methods(http.MethodGet)
}

func activeOnly(q *query) bool {
	if b := q.Bool("active_only"); b != nil {
		return *b
	}
	return false
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	only := activeOnly(q)
	if !q.ok(w) {
		return
	}
	items, err := a.svc.Categories.List(r.Context(), only)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	only := activeOnly(q)
	if !q.ok(w) {
		return
	}
	tree, err := a.svc.Categories.Tree(r.Context(), only)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in categoryRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	c, err := a.svc.Categories.Create(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.svc.Categories.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in categoryRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	c, err := a.svc.Categories.Update(r.Context(), actor, id, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Categories.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCategoryChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := a.svc.Categories.Children(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleCategoryServices(w http.ResponseWriter, r *http.Request) {
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

func (a *API) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := a.svc.Categories.Stats(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) locationRoutes(r *mux.Router) {
	r.HandleFunc("/locations", a.handleListLocations).Methods(http.MethodGet)
	r.HandleFunc("/locations", a.authed(a.handleCreateLocation)).Methods(http.MethodPost)
	r.HandleFunc("/locations/search", a.handleSearchLocations).Methods(http.MethodGet)
	r.HandleFunc("/locations/{id}", a.handleGetLocation).Methods(http.MethodGet)
	r.HandleFunc("/locations/{id}", a.authed(a.handleUpdateLocation)).Methods(http.MethodPut)
	r.HandleFunc("/locations/{id}", a.authed(a.handleDeleteLocation)).Methods(http.MethodDelete)
}

func (a *API) handleListLocations(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	f := repository.LocationFilter{}
	if activeOnly(q) {
		active := true
		f.IsActive = &active
	}
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Locations.Search(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSearchLocations(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	f := repository.LocationFilter{
		City:     q.String("city"),
		State:    q.String("state"),
		Country:  q.String("country"),
		Query:    q.String("query"),
		IsActive: q.Bool("is_active"),
	}
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Locations.Search(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCreateLocation(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in locationRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	l, err := a.svc.Locations.Create(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (a *API) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	l, err := a.svc.Locations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) handleUpdateLocation(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in locationRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	l, err := a.svc.Locations.Update(r.Context(), actor, id, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) handleDeleteLocation(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Locations.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
