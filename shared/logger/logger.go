package logger

import (
	"io"
	"os"
	"time"

	"guesthouse/config"
	"guesthouse/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultService = "guesthouse"

// InitLogger installs a human readable console logger at trace level.
// Configure narrows it once the config is known.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// Configure applies SERVER_LOG_LEVEL and, in production, switches to JSON lines
// tagged with the service name so log shippers can index them.
func Configure(cfg *config.Config) {
	ConfigureOutput(cfg, os.Stdout)
}

func ConfigureOutput(cfg *config.Config, out io.Writer) {
	if cfg.Server.Env == constant.ServerEnvProduction {
		service := cfg.App.Name
		if service == "" {
			service = defaultService
		}

		zerolog.TimeFieldFormat = time.RFC3339Nano
		log.Logger = zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || cfg.Server.LogLevel == "" {
		level = zerolog.TraceLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Debug().Str("loglevel", level.String()).Str("env", cfg.Server.Env).Msg("Logger configured.")
}
