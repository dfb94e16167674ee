package redis

import (
	"context"
	"net"
	"time"

	"guesthouse/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// Options maps the primary Redis settings onto client options.
func Options(config *config.Config) *goRedis.Options {
	primary := config.Cache.Redis.Primary

	return &goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	}
}

// New returns a client that has answered a PING. An unreachable Redis is fatal
// because reports and the rate limiter both depend on it.
func New(config *config.Config) *goRedis.Client {
	opts := Options(config)
	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", opts.Addr).Msg("Failed to connect to Redis")
	}

	log.Info().Int("db", opts.DB).Str("addr", opts.Addr).Msg("Connected to Redis")

	return client
}
