package router

import (
	"guesthouse/internal/handlers/attendance"
	"guesthouse/internal/handlers/auth"
	"guesthouse/internal/handlers/booking"
	"guesthouse/internal/handlers/guest"
	"guesthouse/internal/handlers/health"
	"guesthouse/internal/handlers/inventory"
	"guesthouse/internal/handlers/laundry"
	"guesthouse/internal/handlers/payment"
	"guesthouse/internal/handlers/room"
	"guesthouse/internal/handlers/staff"
	"guesthouse/internal/handlers/stats"
	"guesthouse/internal/handlers/user"
	"guesthouse/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Health     health.Handler
	Auth       auth.Handler
	User       user.Handler
	Staff      staff.Handler
	Guest      guest.Handler
	Room       room.Handler
	Booking    booking.Handler
	Payment    payment.Handler
	Laundry    laundry.Handler
	Attendance attendance.Handler
	Inventory  inventory.Handler
	Stats      stats.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	authRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Health.Router(router)

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.authRole.Auth, r.authRole.RBAC)

		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Staff.Router(routerGroup)
		r.DomainHandlers.Guest.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
		r.DomainHandlers.Laundry.Router(routerGroup)
		r.DomainHandlers.Attendance.Router(routerGroup, r.authRole.Scanner)
		r.DomainHandlers.Inventory.Router(routerGroup)
		r.DomainHandlers.Stats.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		authRole:       authRole,
	}
}
