package room

import (
	"net/http"

	"guesthouse/infras/otel"
	bookingService "guesthouse/internal/domains/booking/service"
	"guesthouse/internal/domains/room/model"
	"guesthouse/internal/domains/room/model/dto"
	"guesthouse/internal/domains/room/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  service.Room
	bookings bookingService.Booking
	otel     otel.Otel
}

func New(service service.Room, bookings bookingService.Booking, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		bookings: bookings,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/available", handler.GetAvailableRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Tags Room
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Create Room Request"
// @Success 201 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create room")

		return
	}

	scope.AddEvent("Room created by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetRooms retrieves all rooms.
// @Summary Get all rooms
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search room number"
// @Param type query string false "Filter by room type"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(model.FieldNumber, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if q := query.Get(constant.RequestParamQuery); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, shared.SearchFilter(q, model.TableName+"."+model.FieldNumber))
	}

	shared.EqFilter(&filterGroup, model.TableName, model.FieldType, query.Get(model.FieldType))

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get rooms")

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetAvailableRooms lists rooms free for a stay.
// @Summary Get available rooms
// @Description Rooms with no booking intersecting [checkIn, checkOut).
// @Tags Room
// @Produce json
// @Param checkIn query string true "Check-in (RFC3339 or YYYY-MM-DD)"
// @Param checkOut query string true "Check-out (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Data[[]dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Router /v1/rooms/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetAvailableRooms")
	defer scope.End()

	query := r.URL.Query()

	req := dto.AvailableRoomsRequest{
		CheckIn:  query.Get("checkIn"),
		CheckOut: query.Get("checkOut"),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		response.Fail(w, scope, err, "failed to validate query")

		return
	}

	rooms, err := handler.bookings.FindAvailable(ctx, req.CheckIn, req.CheckOut)
	if err != nil {
		response.Fail(w, scope, err, "failed to get available rooms")

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 404 {object} response.Error
// @Router /v1/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetRoomByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get room by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Update Room Request"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateRoomRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), id, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update room")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	actor := principal.FromContext(ctx)

	if err := handler.service.Delete(ctx, actor, id); err != nil {
		response.Fail(w, scope, err, "failed to delete room")

		return
	}

	scope.AddEvent("Room deleted by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}
