package booking

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/booking/model"
	"guesthouse/internal/domains/booking/model/dto"
	"guesthouse/internal/domains/booking/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const queryParamUnpaid = "unpaid"

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
	})
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a new booking
// @Description Allocate a room for [checkIn, checkOut). Fails with 409 when the room is already taken.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create booking")

		return
	}

	scope.AddEvent("Booking created successfully by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBookings retrieves bookings based on query parameters.
// @Summary Get all bookings
// @Description Retrieve bookings with optional filtering and pagination. unpaid=true restricts to bookings without a settled payment.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search guest name or room number"
// @Param room_id query string false "Filter by room ID"
// @Param guest_id query string false "Filter by guest ID"
// @Param unpaid query bool false "Only unpaid bookings"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(constant.FieldCreatedAt, gDto.SortDirDesc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if q := query.Get(constant.RequestParamQuery); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, shared.SearchFilter(q, "guests.name", "rooms.number"))
	}

	shared.EqFilter(&filterGroup, model.TableName, model.FieldRoomID, query.Get(model.FieldRoomID))
	shared.EqFilter(&filterGroup, model.TableName, model.FieldGuestID, query.Get(model.FieldGuestID))

	list := handler.service.GetAll

	if shared.QueryFlag(query, queryParamUnpaid) {
		list = handler.service.ListUnpaid
	}

	res, err := list(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get booking by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateBooking reschedules or reassigns a booking.
// @Summary Update a booking by ID
// @Description Re-runs the availability check against every other booking of the target room.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), id, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update booking")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteBooking deletes a booking by its ID.
// @Summary Delete a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	actor := principal.FromContext(ctx)

	if err := handler.service.Delete(ctx, actor, id); err != nil {
		response.Fail(w, scope, err, "failed to delete booking")

		return
	}

	scope.AddEvent("Booking deleted by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}
