package di

import (
	"guesthouse/config"
	"guesthouse/infras/mqtt"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	staffRepository "guesthouse/internal/domains/staff/repository"
	staffService "guesthouse/internal/domains/staff/service"
	userRepository "guesthouse/internal/domains/user/repository"
	"guesthouse/shared/event"

	"github.com/rs/zerolog/log"
)

func provideStaffService(
	repo staffRepository.Staff,
	userRepo userRepository.User,
	tx postgres.Transactor,
	publisher event.Publisher,
	otel otel.Otel,
) staffService.Staff {
	return staffService.New(repo, userRepo, tx, publisher, otel)
}

// provideScanClient connects to the MQTT broker only when scanner ingestion is enabled.
func provideScanClient(cfg *config.Config) (mqtt.Client, error) {
	if !cfg.MQTT.Enable {
		log.Info().Msg("MQTT scanner ingestion is disabled")

		return nil, nil
	}

	return mqtt.New(cfg)
}
