package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/service"
)

type providerProfileRequest struct {
	BusinessName string  `json:"business_name"`
	ServiceType  string  `json:"service_type"`
	HourlyRate   float64 `json:"hourly_rate"`
	Location     string  `json:"location"`
	WorkingHours string  `json:"working_hours"`
	Description  string  `json:"description"`
	Bio          string  `json:"bio"`
}

func (p providerProfileRequest) input() service.ProviderProfileInput {
	return service.ProviderProfileInput{
		BusinessName: p.BusinessName,
		ServiceType:  p.ServiceType,
		HourlyRate:   p.HourlyRate,
		Location:     p.Location,
		WorkingHours: p.WorkingHours,
		Description:  p.Description,
		Bio:          p.Bio,
	}
}

type customerProfileRequest struct {
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	Preferences map[string]any `json:"preferences"`
}

func (c customerProfileRequest) input() service.CustomerProfileInput {
	return service.CustomerProfileInput{Address: c.Address, Phone: c.Phone, Preferences: c.Preferences}
}

func (a *API) profileRoutes(r *mux.Router) {
	r.HandleFunc("/providers", a.handleListProviders).Methods(http.MethodGet)
	r.HandleFunc("/providers/profile", a.authed(a.handleGetProviderProfile)).Methods(http.MethodGet)
	r.HandleFunc("/providers/profile", a.authed(a.handleCreateProviderProfile)).Methods(http.MethodPost)
	r.HandleFunc("/providers/profile", a.authed(a.handleUpdateProviderProfile)).Methods(http.MethodPut)
	r.HandleFunc("/providers/dashboard", a.authed(a.handleProviderDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/providers/stats", a.authed(a.handleProviderStats)).Methods(http.MethodGet)
	r.HandleFunc("/providers/{id}", a.handleGetProvider).Methods(http.MethodGet)

	r.HandleFunc("/customers/profile", a.authed(a.handleGetCustomerProfile)).Methods(http.MethodGet)
	r.HandleFunc("/customers/profile", a.authed(a.handleCreateCustomerProfile)).Methods(http.MethodPost)
	r.HandleFunc("/customers/profile", a.authed(a.handleUpdateCustomerProfile)).Methods(http.MethodPut)
	r.HandleFunc("/customers/dashboard", a.authed(a.handleCustomerDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/customers/stats", a.authed(a.handleCustomerStats)).Methods(http.MethodGet)
	r.HandleFunc("/customers/favorites/{provider_id}", a.authed(a.handleAddFavorite)).Methods(http.MethodPost)
	r.HandleFunc("/customers/favorites/{provider_id}", a.authed(a.handleRemoveFavorite)).Methods(http.MethodDelete)
}

func (a *API) handleListProviders(w http.ResponseWriter, r *http.Request) {
	q := queryOf(r)
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Profiles.ListProviders(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.svc.Profiles.GetProvider(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleGetProviderProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	p, err := a.svc.Profiles.GetOwnProviderProfile(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleCreateProviderProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in providerProfileRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	p, err := a.svc.Profiles.CreateProviderProfile(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handleUpdateProviderProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in providerProfileRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	p, err := a.svc.Profiles.UpdateProviderProfile(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleProviderDashboard(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	d, err := a.svc.Profiles.ProviderDashboard(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) handleProviderStats(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	s, err := a.svc.Profiles.ProviderStats(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleGetCustomerProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	c, err := a.svc.Profiles.GetOwnCustomerProfile(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleCreateCustomerProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in customerProfileRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	c, err := a.svc.Profiles.CreateCustomerProfile(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) handleUpdateCustomerProfile(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in customerProfileRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	c, err := a.svc.Profiles.UpdateCustomerProfile(r.Context(), actor, in.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleCustomerDashboard(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	d, err := a.svc.Profiles.CustomerDashboard(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) handleCustomerStats(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	s, err := a.svc.Profiles.CustomerStats(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleAddFavorite(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "provider_id")
	if !ok {
		return
	}
	changed, err := a.svc.Profiles.AddFavorite(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (a *API) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "provider_id")
	if !ok {
		return
	}
	changed, err := a.svc.Profiles.RemoveFavorite(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}
