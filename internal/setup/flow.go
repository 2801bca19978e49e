package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/socialai-labs/socialai-gateway/internal/identity"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

// Stage identifies a setup step. The order is fixed: business info
// first, brand identity second.
type Stage string

const (
	StageBusinessInfo  Stage = "business-info"
	StageBrandIdentity Stage = "brand-identity"
)

// DefaultBrandColor is applied when a submission picks no colors.
const DefaultBrandColor = "#4F46E5"

var voiceOptions = []string{
	"Professional",
	"Friendly",
	"Casual",
	"Authoritative",
	"Playful",
	"Inspirational",
	"Educational",
	"Conversational",
}

// VoiceOptions returns the selectable brand voices in display order.
func VoiceOptions() []string {
	return append([]string(nil), voiceOptions...)
}

func validVoice(voice string) bool {
	for _, v := range voiceOptions {
		if v == voice {
			return true
		}
	}
	return false
}

type sessionManager interface {
	CurrentUser() (user.User, bool)
	UpdateUser(ctx context.Context, p user.Partial)
	SaveUserToBackend(ctx context.Context) error
}

// BusinessInfoInput is the first-stage submission.
type BusinessInfoInput struct {
	BusinessName string `json:"businessName" validate:"required"`
	Industry     string `json:"industry" validate:"required"`
	SubIndustry  string `json:"subIndustry"`
	Description  string `json:"description"`
	Website      string `json:"website"`
}

// BrandIdentityInput is the terminal-stage submission.
type BrandIdentityInput struct {
	BrandColors    []string `json:"brandColors"`
	BrandVoice     string   `json:"brandVoice" validate:"required"`
	TargetAudience string   `json:"targetAudience" validate:"required"`
	Logo           string   `json:"logo"`
}

// Flow drives the two-stage onboarding sequence. It is the only writer
// of the setup-complete flag and the only initiator of the remote
// profile upsert.
type Flow struct {
	sessions sessionManager
	logger   *logger.Logger
}

// FlowParams bundles the dependencies required to build a setup flow.
type FlowParams struct {
	Sessions sessionManager
	Logger   *logger.Logger
}

func NewFlow(params FlowParams) (*Flow, error) {
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &Flow{sessions: params.Sessions, logger: params.Logger}, nil
}

// BusinessInfoDefaults pre-populates the first-stage form from whatever
// the session already holds, so the stage is freely re-enterable.
func (f *Flow) BusinessInfoDefaults() BusinessInfoInput {
	u, ok := f.sessions.CurrentUser()
	if !ok {
		return BusinessInfoInput{}
	}
	in := BusinessInfoInput{BusinessName: u.BusinessName}
	if u.BusinessInfo != nil {
		in.Industry = u.BusinessInfo.Industry
		in.SubIndustry = u.BusinessInfo.SubIndustry
		in.Description = u.BusinessInfo.Description
		in.Website = u.BusinessInfo.Website
	}
	return in
}

// BrandIdentityDefaults pre-populates the terminal-stage form.
func (f *Flow) BrandIdentityDefaults() BrandIdentityInput {
	u, ok := f.sessions.CurrentUser()
	if !ok {
		return BrandIdentityInput{}
	}
	in := BrandIdentityInput{}
	if u.BrandData != nil {
		in.BrandColors = append([]string(nil), u.BrandData.BrandColors...)
		in.BrandVoice = u.BrandData.BrandVoice
		in.TargetAudience = u.BrandData.TargetAudience
		in.Logo = u.BrandData.Logo
	}
	return in
}

// SubmitBusinessInfo merges the first-stage fields into the session
// user. Resubmitting overwrites only the fields carried here; anything
// collected later survives.
func (f *Flow) SubmitBusinessInfo(ctx context.Context, in BusinessInfoInput) session.Result {
	if _, ok := f.sessions.CurrentUser(); !ok {
		return session.Result{Success: false, Message: "No active session."}
	}

	name := strings.TrimSpace(in.BusinessName)
	industry := strings.TrimSpace(in.Industry)
	if name == "" || industry == "" {
		return session.Result{Success: false, Message: "Business name and industry are required."}
	}

	f.sessions.UpdateUser(ctx, user.Partial{
		BusinessName: user.Ptr(name),
		BusinessInfo: &user.BusinessInfoPatch{
			Industry:    user.Ptr(industry),
			SubIndustry: user.Ptr(strings.TrimSpace(in.SubIndustry)),
			Description: user.Ptr(strings.TrimSpace(in.Description)),
			Website:     user.Ptr(strings.TrimSpace(in.Website)),
		},
	})
	return session.Result{Success: true, Message: "Business info saved."}
}

// SubmitBrandIdentity completes setup. The local record is committed
// first, then pushed to the backend; a 409 from the backend means the
// account already exists there and counts as success. Any other remote
// failure is logged and retried implicitly on the next settings save,
// never rolled back locally.
func (f *Flow) SubmitBrandIdentity(ctx context.Context, in BrandIdentityInput) session.Result {
	if _, ok := f.sessions.CurrentUser(); !ok {
		return session.Result{Success: false, Message: "No active session."}
	}

	voice := strings.TrimSpace(in.BrandVoice)
	target := strings.TrimSpace(in.TargetAudience)
	if voice == "" || target == "" {
		return session.Result{Success: false, Message: "Brand voice and target audience are required."}
	}
	if !validVoice(voice) {
		return session.Result{Success: false, Message: fmt.Sprintf("Unknown brand voice %q.", voice)}
	}

	colors := make([]string, 0, len(in.BrandColors))
	for _, c := range in.BrandColors {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	if len(colors) == 0 {
		colors = []string{DefaultBrandColor}
	}

	f.sessions.UpdateUser(ctx, user.Partial{
		BrandData: &user.BrandDataPatch{
			BrandColors:    colors,
			BrandVoice:     user.Ptr(voice),
			TargetAudience: user.Ptr(target),
			Logo:           user.Ptr(strings.TrimSpace(in.Logo)),
		},
		SetupComplete: user.Ptr(true),
	})

	err := f.sessions.SaveUserToBackend(ctx)
	switch {
	case err == nil, errors.Is(err, identity.ErrAlreadyExists):
		// The backend holds the account now; the bootstrap password has
		// served its purpose.
		f.sessions.UpdateUser(ctx, user.Partial{Password: user.Ptr("")})
		return session.Result{Success: true, Message: "Setup complete."}
	default:
		if f.logger != nil {
			f.logger.Error(ctx, "remote account creation failed, keeping local setup state", err)
		}
		return session.Result{Success: true, Message: "Setup complete. Backend sync pending."}
	}
}

// NextPath returns where an authenticated user should land: the first
// incomplete stage, or the dashboard once setup is done.
func (f *Flow) NextPath(u user.User) string {
	if u.SetupComplete {
		return "/dashboard"
	}
	if u.BusinessName != "" && u.BusinessInfo != nil && u.BusinessInfo.Industry != "" {
		return "/setup/brand-identity"
	}
	return "/setup/business-info"
}
