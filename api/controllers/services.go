package controllers

import (
	"context"

	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	"github.com/socialai-labs/socialai-gateway/internal/user"
)

// SessionService is the slice of the session manager the HTTP layer
// consumes.
type SessionService interface {
	Login(ctx context.Context, email, password string) session.Result
	Register(ctx context.Context, profile session.Profile) session.Result
	Logout(ctx context.Context)
	ResetPassword(ctx context.Context, email string) session.Result
	UpdateUser(ctx context.Context, p user.Partial)
	SaveUserToBackend(ctx context.Context) error
	CurrentUser() (user.User, bool)
}

// SetupService drives the onboarding stages.
type SetupService interface {
	BusinessInfoDefaults() setup.BusinessInfoInput
	BrandIdentityDefaults() setup.BrandIdentityInput
	SubmitBusinessInfo(ctx context.Context, in setup.BusinessInfoInput) session.Result
	SubmitBrandIdentity(ctx context.Context, in setup.BrandIdentityInput) session.Result
	NextPath(u user.User) string
}

// redacted strips fields that must never leave the process.
func redacted(u user.User) user.User {
	u.Password = ""
	return u
}
