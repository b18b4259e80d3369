package handlers

import (
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlonsoPV/baileApp-sub007/internal/repo/postgres"
	httperrors "github.com/AlonsoPV/baileApp-sub007/internal/transport/http/errors"
)

type HealthHandler struct {
	pool   *pgxpool.Pool
	redis  *goredis.Client
	logger *zap.Logger
}

func NewHealthHandler(pool *pgxpool.Pool, redis *goredis.Client, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{pool: pool, redis: redis, logger: logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.pool != nil {
		if err := postgres.Ping(ctx, h.pool); err != nil {
			h.logger.Warn("postgres health check failed", zap.Error(err))
			httperrors.Write(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warn("redis health check failed", zap.Error(err))
			httperrors.Write(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}

	httperrors.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}
