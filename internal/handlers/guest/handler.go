package guest

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/guest/model"
	"guesthouse/internal/domains/guest/model/dto"
	"guesthouse/internal/domains/guest/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Guest
	otel    otel.Otel
}

func New(service service.Guest, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/guests", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateGuest)
		routerGroup.Get("/", handler.GetGuests)
		routerGroup.Get("/{id}", handler.GetGuestByID)
		routerGroup.Patch("/{id}", handler.UpdateGuest)
		routerGroup.Delete("/{id}", handler.DeleteGuest)
	})
}

// CreateGuest handles the creation of a new guest.
// @Summary Create a new guest
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.CreateGuestRequest true "Create Guest Request"
// @Success 201 {object} response.Data[dto.GuestResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guests [post]
// @Security BearerAuth
func (handler *Handler) CreateGuest(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateGuest")
	defer scope.End()

	req := dto.CreateGuestRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create guest")

		return
	}

	scope.AddEvent("Guest created by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetGuests retrieves guests.
// @Summary Get all guests
// @Tags Guest
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search name, phone or email"
// @Success 200 {object} response.Data[dto.GetGuestsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/guests [get]
// @Security BearerAuth
func (handler *Handler) GetGuests(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetGuests")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(constant.FieldCreatedAt, gDto.SortDirDesc)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if q := r.URL.Query().Get(constant.RequestParamQuery); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, shared.SearchFilter(q,
			model.TableName+"."+model.FieldName,
			model.TableName+"."+model.FieldPhone,
			model.TableName+"."+model.FieldEmail,
		))
	}

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get guests")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetGuestByID retrieves a guest by its ID.
// @Summary Get a guest by ID
// @Tags Guest
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} response.Data[dto.GuestResponse]
// @Failure 404 {object} response.Error
// @Router /v1/guests/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetGuestByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetGuestByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get guest by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateGuest updates an existing guest.
// @Summary Update a guest by ID
// @Tags Guest
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Param request body dto.UpdateGuestRequest true "Update Guest Request"
// @Success 200 {object} response.Data[dto.GuestResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/guests/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateGuest")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateGuestRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), id, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update guest")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteGuest deletes a guest by its ID.
// @Summary Delete a guest by ID
// @Tags Guest
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/guests/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteGuest")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		response.Fail(w, scope, err, "failed to delete guest")

		return
	}

	scope.AddEvent("Guest deleted by user " + principal.FromContext(ctx).UserID)

	response.WithMessage(w, http.StatusOK, "Guest deleted successfully")
}
