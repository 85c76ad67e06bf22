package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/pkg/config"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type breakerReporter interface {
	BreakerState() string
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frozify-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, upstream breakerReporter, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frozify-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed []string
		for name, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = append(failed, name)
				continue
			}
			checks[name] = "up"
		}
		if upstream != nil {
			checks["storefront_api"] = upstream.BreakerState()
		}

		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
