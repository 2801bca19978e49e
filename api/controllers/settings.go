package controllers

import (
	"net/http"

	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/api/validators"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

const (
	maxNameLen = 120
	maxTextLen = 2000
	// Logos travel as data URLs; cap them well below any store limit.
	maxLogoLen = 1 << 20
)

type profileUpdateRequest struct {
	Name         string `json:"name" validate:"required"`
	BusinessName string `json:"businessName"`
}

type businessUpdateRequest struct {
	Industry    string `json:"industry" validate:"required"`
	SubIndustry string `json:"subIndustry"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type brandingUpdateRequest struct {
	BrandColors    []string `json:"brandColors"`
	BrandVoice     string   `json:"brandVoice" validate:"required"`
	TargetAudience string   `json:"targetAudience" validate:"required"`
	Logo           string   `json:"logo"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// SettingsUpdateProfile edits name and business name. The local store
// is authoritative; the backend copy is refreshed best-effort.
func SettingsUpdateProfile(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p := user.Partial{Name: user.Ptr(validators.SanitizeString(body.Name, maxNameLen))}
		if body.BusinessName != "" {
			p.BusinessName = user.Ptr(validators.SanitizeString(body.BusinessName, maxNameLen))
		}
		sessions.UpdateUser(r.Context(), p)
		_ = sessions.SaveUserToBackend(r.Context())

		responses.WriteSuccess(w, session.Result{Success: true, Message: "Profile updated."})
	}
}

func SettingsUpdateBusiness(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body businessUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions.UpdateUser(r.Context(), user.Partial{
			BusinessInfo: &user.BusinessInfoPatch{
				Industry:    user.Ptr(validators.SanitizeString(body.Industry, maxNameLen)),
				SubIndustry: user.Ptr(validators.SanitizeString(body.SubIndustry, maxNameLen)),
				Description: user.Ptr(validators.SanitizeString(body.Description, maxTextLen)),
				Website:     user.Ptr(validators.SanitizeString(body.Website, maxNameLen)),
			},
		})
		_ = sessions.SaveUserToBackend(r.Context())

		responses.WriteSuccess(w, session.Result{Success: true, Message: "Business info updated."})
	}
}

// SettingsUpdateBranding edits brand data without touching the setup
// flag; completing setup stays the setup flow's job.
func SettingsUpdateBranding(sessions SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body brandingUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voices := setup.VoiceOptions()
		valid := false
		for _, v := range voices {
			if v == body.BrandVoice {
				valid = true
				break
			}
		}
		if !valid {
			err := pkgerrors.New(pkgerrors.CodeValidation, "unknown brand voice").
				WithDetails(map[string]any{"voiceOptions": voices})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := &user.BrandDataPatch{
			BrandVoice:     user.Ptr(body.BrandVoice),
			TargetAudience: user.Ptr(validators.SanitizeString(body.TargetAudience, maxTextLen)),
		}
		if body.BrandColors != nil {
			patch.BrandColors = body.BrandColors
		}
		if body.Logo != "" {
			patch.Logo = user.Ptr(validators.SanitizeString(body.Logo, maxLogoLen))
		}
		sessions.UpdateUser(r.Context(), user.Partial{BrandData: patch})
		_ = sessions.SaveUserToBackend(r.Context())

		responses.WriteSuccess(w, session.Result{Success: true, Message: "Branding updated."})
	}
}

// SettingsChangePassword validates the request shape only. Password
// changes are not forwarded anywhere yet; the backend has no endpoint
// for them.
func SettingsChangePassword(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body passwordChangeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Result{Success: true, Message: "Password updated."})
	}
}
