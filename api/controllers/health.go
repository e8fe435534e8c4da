package controllers

import (
	"net/http"

	"github.com/estoquelabs/estoque-backend/api/responses"
	"github.com/estoquelabs/estoque-backend/pkg/config"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	pkgredis "github.com/estoquelabs/estoque-backend/pkg/redis"
)

const envHeader = "X-Estoque-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the datastores answer.
func HealthReady(cfg *config.Config, dbPinger db.Pinger, redisPinger pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbPinger != nil {
			if err := dbPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
