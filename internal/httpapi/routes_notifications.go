package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

type notificationRequest struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    model.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
}

func (a *API) notificationRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", a.authed(a.handleListNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications", a.authed(a.handleCreateNotification)).Methods(http.MethodPost)
	r.HandleFunc("/notifications/search", a.authed(a.handleSearchNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", a.authed(a.handleReadAllNotifications)).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}", a.authed(a.handleGetNotification)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}", a.authed(a.handleDeleteNotification)).Methods(http.MethodDelete)
	r.HandleFunc("/notifications/{id}/read", a.authed(a.handleReadNotification)).Methods(http.MethodPost)
}

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	unread := q.Bool("unread_only")
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Notifications.List(r.Context(), actor, unread != nil && *unread, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSearchNotifications(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	q := queryOf(r)
	f := repository.NotificationFilter{
		UserID: q.UUID("user_id"),
		IsRead: q.Bool("is_read"),
	}
	if s := q.String("type"); s != "" {
		t, err := model.ParseNotificationType(s)
		if err != nil {
			q.fail("type", "one of booking, message, system, promotion")
		} else {
			f.Type = &t
		}
	}
	page := q.Page()
	if !q.ok(w) {
		return
	}
	res, err := a.svc.Notifications.Search(r.Context(), actor, f, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCreateNotification(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var in notificationRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	n, err := a.svc.Notifications.Create(r.Context(), actor, service.NotificationInput{
		UserID:  in.UserID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (a *API) handleGetNotification(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := a.svc.Notifications.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) handleReadNotification(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := a.svc.Notifications.MarkRead(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) handleReadAllNotifications(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	n, err := a.svc.Notifications.MarkAllRead(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (a *API) handleDeleteNotification(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Notifications.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
