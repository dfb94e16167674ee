//go:build wireinject
// +build wireinject

package di

import (
	"guesthouse/config"
	"guesthouse/infras/amqp"
	"guesthouse/infras/jwt"
	"guesthouse/infras/kafka"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/infras/redis"
	"guesthouse/infras/s3"
	"guesthouse/permissions"
	"guesthouse/shared/cache"
	"guesthouse/shared/calendar"
	"guesthouse/shared/event"
	"guesthouse/transport/http"
	"guesthouse/transport/http/middleware"
	"guesthouse/transport/http/router"
	"guesthouse/transport/worker"

	attendanceRepository "guesthouse/internal/domains/attendance/repository"
	attendanceService "guesthouse/internal/domains/attendance/service"
	authService "guesthouse/internal/domains/auth/service"
	bookingRepository "guesthouse/internal/domains/booking/repository"
	bookingService "guesthouse/internal/domains/booking/service"
	guestRepository "guesthouse/internal/domains/guest/repository"
	guestService "guesthouse/internal/domains/guest/service"
	inventoryRepository "guesthouse/internal/domains/inventory/repository"
	inventoryService "guesthouse/internal/domains/inventory/service"
	laundryRepository "guesthouse/internal/domains/laundry/repository"
	laundryService "guesthouse/internal/domains/laundry/service"
	paymentRepository "guesthouse/internal/domains/payment/repository"
	paymentService "guesthouse/internal/domains/payment/service"
	roomRepository "guesthouse/internal/domains/room/repository"
	roomService "guesthouse/internal/domains/room/service"
	staffRepository "guesthouse/internal/domains/staff/repository"
	statsService "guesthouse/internal/domains/stats/service"
	userRepository "guesthouse/internal/domains/user/repository"
	userService "guesthouse/internal/domains/user/service"

	attendanceHandler "guesthouse/internal/handlers/attendance"
	authHandler "guesthouse/internal/handlers/auth"
	bookingHandler "guesthouse/internal/handlers/booking"
	guestHandler "guesthouse/internal/handlers/guest"
	healthHandler "guesthouse/internal/handlers/health"
	inventoryHandler "guesthouse/internal/handlers/inventory"
	laundryHandler "guesthouse/internal/handlers/laundry"
	paymentHandler "guesthouse/internal/handlers/payment"
	roomHandler "guesthouse/internal/handlers/room"
	staffHandler "guesthouse/internal/handlers/staff"
	statsHandler "guesthouse/internal/handlers/stats"
	userHandler "guesthouse/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	amqp.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	event.NewPublisher,
	calendar.NewSystem,
)

var repositories = wire.NewSet(
	userRepository.New,
	staffRepository.New,
	guestRepository.New,
	roomRepository.New,
	bookingRepository.New,
	paymentRepository.New,
	laundryRepository.New,
	attendanceRepository.New,
	inventoryRepository.New,
	inventoryRepository.NewMovement,
)

var services = wire.NewSet(
	authService.New,
	userService.New,
	provideStaffService,
	guestService.New,
	roomService.New,
	bookingService.New,
	paymentService.New,
	laundryService.New,
	attendanceService.New,
	inventoryService.New,
	wire.Struct(new(statsService.Sources), "*"),
	statsService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	authHandler.New,
	userHandler.New,
	staffHandler.New,
	guestHandler.New,
	roomHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	laundryHandler.New,
	attendanceHandler.New,
	inventoryHandler.New,
	statsHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		services,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() (*worker.Worker, error) {
	wire.Build(
		config.Get,
		infrastructures,
		sharedHelpers,
		repositories,
		attendanceService.New,
		wire.Struct(new(statsService.Sources), "*"),
		statsService.New,
		provideScanClient,
		worker.New,
	)

	return &worker.Worker{}, nil
}
