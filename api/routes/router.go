package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialai-labs/socialai-gateway/api/controllers"
	"github.com/socialai-labs/socialai-gateway/api/middleware"
	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/pkg/config"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

// NewRouter builds the gateway's HTTP surface: public auth endpoints,
// session-guarded views and setup stages, and the operational routes.
// Every unmatched path lands on the login view, mirroring the app's
// catch-all route.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions controllers.SessionService,
	flow controllers.SetupService,
	metricsHandler http.Handler,
	readyPingers ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyPingers...))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Public surface: reachable without a session.
	r.Group(func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(sessions, flow, logg))
		r.Post("/auth/register", controllers.AuthRegister(sessions, flow, logg))
		r.Post("/auth/forgot-password", controllers.AuthForgotPassword(sessions, logg))

		r.Get("/login", viewStub("login"))
		r.Get("/register", viewStub("register"))
		r.Get("/forgot-password", viewStub("forgot-password"))
	})

	// Protected surface: every route re-checks the session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, logg))

		r.Post("/auth/logout", controllers.AuthLogout(sessions, logg))

		r.Route("/setup", func(r chi.Router) {
			r.Get("/business-info", controllers.SetupBusinessInfoShow(flow, logg))
			r.Post("/business-info", controllers.SetupBusinessInfoSubmit(flow, logg))
			r.Get("/brand-identity", controllers.SetupBrandIdentityShow(flow, logg))
			r.Post("/brand-identity", controllers.SetupBrandIdentitySubmit(flow, logg))
		})

		r.Get("/dashboard", controllers.ViewDashboard(sessions, logg))
		r.Get("/content", controllers.ViewContent(sessions, logg))
		r.Get("/schedule", controllers.ViewSchedule(sessions, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.ViewSettings(sessions, logg))
			r.Post("/profile", controllers.SettingsUpdateProfile(sessions, logg))
			r.Post("/business", controllers.SettingsUpdateBusiness(sessions, logg))
			r.Post("/branding", controllers.SettingsUpdateBranding(sessions, logg))
			r.Post("/password", controllers.SettingsChangePassword(logg))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	return r
}

func viewStub(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"view": view})
	}
}
