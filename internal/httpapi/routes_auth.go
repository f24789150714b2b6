package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

func (a *API) authRoutes(r *mux.Router) {
	r.HandleFunc("/auth/provider/register", a.register(model.RoleProvider)).Methods(http.MethodPost)
	r.HandleFunc("/auth/customer/register", a.register(model.RoleCustomer)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", a.throttled(a.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", a.authed(a.handleMe)).Methods(http.MethodGet)
}

func (a *API) register(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in registerRequest
		if err := a.decodeJSON(w, r, &in); err != nil {
			a.writeDecodeError(w, err)
			return
		}
		u, err := a.svc.Identity.Register(r.Context(), role, service.RegisterInput{
			Email:    in.Email,
			FullName: in.FullName,
			Phone:    in.Phone,
			Password: in.Password,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := a.decodeJSON(w, r, &in); err != nil {
		a.writeDecodeError(w, err)
		return
	}
	res, err := a.svc.Identity.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	u, err := a.svc.Identity.Me(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
