package health

import (
	"context"
	"net/http"
	"time"

	"guesthouse/infras/postgres"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db    *postgres.Connection
	redis *goRedis.Client
}

func New(db *postgres.Connection, redis *goRedis.Client) Handler {
	return Handler{
		db:    db,
		redis: redis,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/health", handler.Check)
}

// Check pings the database and the cache.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Failure 503 {object} response.Message
// @Router /health [get]
func (handler *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := handler.db.Write.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("health: postgres unreachable")

		response.WithUnhealthy(w)

		return
	}

	if err := handler.redis.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("health: redis unreachable")

		response.WithUnhealthy(w)

		return
	}

	response.WithMessage(w, http.StatusOK, "OK")
}
