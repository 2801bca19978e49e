package controllers

import (
	"net/http"

	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/api/validators"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

type setupResponse struct {
	Result session.Result `json:"result"`
	Next   string         `json:"next,omitempty"`
}

// SetupBusinessInfoShow returns the first-stage form pre-populated from
// the session, so revisiting the stage keeps earlier answers.
func SetupBusinessInfoShow(flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"stage":    string(setup.StageBusinessInfo),
			"defaults": flow.BusinessInfoDefaults(),
		})
	}
}

func SetupBusinessInfoSubmit(flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setup.BusinessInfoInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res := flow.SubmitBusinessInfo(r.Context(), body)
		if !res.Success {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, res.Message))
			return
		}
		responses.WriteSuccess(w, setupResponse{Result: res, Next: "/setup/brand-identity"})
	}
}

// SetupBrandIdentityShow returns the terminal-stage form along with the
// selectable voices.
func SetupBrandIdentityShow(flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"stage":        string(setup.StageBrandIdentity),
			"defaults":     flow.BrandIdentityDefaults(),
			"voiceOptions": setup.VoiceOptions(),
			"defaultColor": setup.DefaultBrandColor,
		})
	}
}

func SetupBrandIdentitySubmit(flow SetupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setup.BrandIdentityInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res := flow.SubmitBrandIdentity(r.Context(), body)
		if !res.Success {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, res.Message))
			return
		}
		responses.WriteSuccess(w, setupResponse{Result: res, Next: "/dashboard"})
	}
}
