package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
	redisclient "github.com/paolomureddu/agrikmzero-backend/pkg/redis"
	"github.com/paolomureddu/agrikmzero-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriKM-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies. Object storage is optional and
// reported as skipped when not configured.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redisclient.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriKM-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		checks["database"] = pingStatus(ctx, dbP)
		checks["redis"] = pingStatus(ctx, redisP)
		if gcsP != nil {
			checks["storage"] = pingStatus(ctx, gcsP)
		} else {
			checks["storage"] = "skipped"
		}

		for _, status := range checks {
			if status == "down" {
				failed = true
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingStatus(ctx context.Context, p pinger) string {
	if p == nil {
		return "down"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
