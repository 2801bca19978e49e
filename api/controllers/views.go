package controllers

import (
	"net/http"

	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

// The view handlers return the data each page renders from. They sit
// behind RequireSession, so a missing session here means the guard was
// bypassed and is treated as an internal fault.

func ViewDashboard(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := sessions.CurrentUser()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "view reached without a session"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"view":          "dashboard",
			"user":          redacted(u),
			"setupComplete": u.SetupComplete,
		})
	}
}

func ViewContent(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := sessions.CurrentUser()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "view reached without a session"))
			return
		}
		var brandVoice string
		if u.BrandData != nil {
			brandVoice = u.BrandData.BrandVoice
		}
		responses.WriteSuccess(w, map[string]any{
			"view":         "content",
			"businessName": u.BusinessName,
			"brandVoice":   brandVoice,
		})
	}
}

func ViewSchedule(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := sessions.CurrentUser()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "view reached without a session"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"view":         "schedule",
			"businessName": u.BusinessName,
		})
	}
}

func ViewSettings(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := sessions.CurrentUser()
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "view reached without a session"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"view": "settings",
			"profile": map[string]string{
				"name":         u.Name,
				"email":        u.Email,
				"businessName": u.BusinessName,
			},
			"business":     u.BusinessInfo,
			"branding":     u.BrandData,
			"voiceOptions": setup.VoiceOptions(),
		})
	}
}
