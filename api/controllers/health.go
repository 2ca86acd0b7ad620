package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

const readyProbeTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Zahabi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the dependencies the API cannot serve without. A nil
// pinger is skipped so worker-less deployments stay green.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	probes := map[string]pinger{
		"db":    dbP,
		"redis": redisP,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Zahabi-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe.Ping(ctx); err != nil {
				healthy = false
				status[name] = "down"
				if logg != nil {
					logg.Error(r.Context(), "readiness probe failed: "+name, err)
				}
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
