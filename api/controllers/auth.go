package controllers

import (
	"net/http"

	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/api/validators"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"businessName"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// authResponse carries the operation outcome plus where the UI should
// navigate next. Next is empty when the operation failed.
type authResponse struct {
	Result session.Result `json:"result"`
	User   *user.User     `json:"user,omitempty"`
	Next   string         `json:"next,omitempty"`
}

// AuthLogin wires the login operation into the HTTP layer. A failed
// login is still a 200: the outcome travels in the Result so the UI can
// render the message inline.
func AuthLogin(sessions SessionService, flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res := sessions.Login(r.Context(), body.Email, body.Password)
		out := authResponse{Result: res}
		if res.Success {
			if u, ok := sessions.CurrentUser(); ok {
				safe := redacted(u)
				out.User = &safe
				out.Next = flow.NextPath(u)
			}
		}
		responses.WriteSuccess(w, out)
	}
}

// AuthRegister creates the local account and points the UI at the first
// setup stage.
func AuthRegister(sessions SessionService, flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res := sessions.Register(r.Context(), session.Profile{
			Name:         body.Name,
			Email:        body.Email,
			Password:     body.Password,
			BusinessName: body.BusinessName,
		})
		out := authResponse{Result: res}
		if res.Success {
			if u, ok := sessions.CurrentUser(); ok {
				safe := redacted(u)
				out.User = &safe
				out.Next = flow.NextPath(u)
			}
		}
		responses.WriteSuccess(w, out)
	}
}

// AuthForgotPassword relays the reset request to the backend.
func AuthForgotPassword(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body forgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResponse{Result: sessions.ResetPassword(r.Context(), body.Email)})
	}
}

// AuthLogout ends the session. Always succeeds, even when no session
// was active.
func AuthLogout(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions.Logout(r.Context())
		responses.WriteSuccess(w, authResponse{
			Result: session.Result{Success: true, Message: "Logged out."},
			Next:   "/login",
		})
	}
}
