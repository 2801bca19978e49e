package controllers

import (
	"context"
	"net/http"

	"github.com/socialai-labs/socialai-gateway/api/responses"
	"github.com/socialai-labs/socialai-gateway/pkg/config"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

const envHeader = "X-SocialAI-Env"

// Pinger is anything whose connectivity gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every configured dependency
// answers a ping. The file store driver has no pinger, so a file-backed
// gateway is ready whenever it is live.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
