package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/calendar"
	"github.com/Leganyst/service-marketplace/internal/logger"
	"github.com/Leganyst/service-marketplace/internal/service"
)

const defaultMaxBodyBytes int64 = 1 << 20

func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Warn("write json failed", "status", status, "body_type", fmt.Sprintf("%T", body), "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (a *API) writeDecodeError(w http.ResponseWriter, err error) {
	message := "invalid JSON"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		message = fmt.Sprintf("request body too large (max %d bytes)", a.maxBodyBytes)
	} else if strings.HasPrefix(err.Error(), "json: unknown field") {
		message = err.Error()
	}
	writeError(w, http.StatusBadRequest, message)
}

// writeServiceError maps service sentinels onto status codes. Anything
// unrecognised is logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrDomainRule),
		errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses a uuid path variable; on failure it writes 400 and reports false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

// query разбирает параметры строки запроса и копит первую ошибку.
type query struct {
	r   *http.Request
	err error
}

func queryOf(r *http.Request) *query { return &query{r: r} }

func (q *query) fail(key, want string) {
	if q.err == nil {
		q.err = fmt.Errorf("query parameter %s must be %s", key, want)
	}
}

func (q *query) raw(key string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(key))
}

func (q *query) String(key string) string { return q.raw(key) }

func (q *query) Int(key string, def int) int {
	s := q.raw(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.fail(key, "an integer")
		return def
	}
	return n
}

func (q *query) Bool(key string) *bool {
	s := q.raw(key)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(key, "a boolean")
		return nil
	}
	return &b
}

func (q *query) Float(key string) *float64 {
	s := q.raw(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		q.fail(key, "a number")
		return nil
	}
	return &f
}

func (q *query) UUID(key string) *uuid.UUID {
	s := q.raw(key)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		q.fail(key, "a UUID")
		return nil
	}
	return &id
}

func (q *query) Time(key string) *time.Time {
	s := q.raw(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		q.fail(key, "an RFC 3339 timestamp")
		return nil
	}
	t = t.UTC()
	return &t
}

func (q *query) Page() calendar.PageRequest {
	return calendar.NewPageRequest(q.Int("page", 1), q.Int("page_size", calendar.DefaultPageSize))
}

// Window reads period_start and period_end.
func (q *query) Window() calendar.Window {
	start, end := q.Time("period_start"), q.Time("period_end")
	w, err := calendar.NewWindow(start, end)
	if err != nil && q.err == nil {
		q.err = err
	}
	return w
}

// ok writes 400 for the first parse error.
func (q *query) ok(w http.ResponseWriter) bool {
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err.Error())
		return false
	}
	return true
}
