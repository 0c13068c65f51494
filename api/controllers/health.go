package controllers

import (
	"context"
	"net/http"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/responses"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db"
	pkgerrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

const envHeader = "X-Makeitsell-Env"

type redisPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redisPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx := r.Context()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
