package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/service"
)

func (a *API) analyticsRoutes(r *mux.Router) {
	r.HandleFunc("/analytics/provider/{id}", a.authed(a.handleProviderAnalytics)).Methods(http.MethodGet)
	r.HandleFunc("/analytics/service/{id}", a.authed(a.handleServiceAnalytics)).Methods(http.MethodGet)
	r.HandleFunc("/analytics/platform", a.authed(a.handlePlatformAnalytics)).Methods(http.MethodGet)
}

func (a *API) handleProviderAnalytics(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	window := q.Window()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Analytics.Provider(r.Context(), actor, id, window)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleServiceAnalytics(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := queryOf(r)
	window := q.Window()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Analytics.Service(r.Context(), actor, id, window)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handlePlatformAnalytics(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	window := q.Window()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Analytics.Platform(r.Context(), actor, window)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
