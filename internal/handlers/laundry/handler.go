package laundry

import (
	"net/http"
	"strings"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/laundry/model"
	"guesthouse/internal/domains/laundry/model/dto"
	"guesthouse/internal/domains/laundry/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Laundry
	otel    otel.Otel
}

func New(service service.Laundry, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/laundry", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateLaundry)
		routerGroup.Get("/", handler.GetLaundry)
		routerGroup.Get("/{id}", handler.GetLaundryByID)
		routerGroup.Patch("/{id}", handler.UpdateLaundry)
		routerGroup.Patch("/{id}/status", handler.UpdateLaundryStatus)
		routerGroup.Delete("/{id}", handler.DeleteLaundry)
	})
}

// CreateLaundry creates a laundry order.
// @Summary Create a laundry order
// @Description A payment can be recorded in the same transaction by setting the payment block.
// @Tags Laundry
// @Accept json
// @Produce json
// @Param request body dto.CreateLaundryRequest true "Create Laundry Request"
// @Success 201 {object} response.Data[dto.LaundryResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/laundry [post]
// @Security BearerAuth
func (handler *Handler) CreateLaundry(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateLaundry")
	defer scope.End()

	req := dto.CreateLaundryRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create laundry")

		return
	}

	scope.AddEvent("Laundry created by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetLaundry lists laundry orders.
// @Summary Get all laundry orders
// @Tags Laundry
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search items or guest name"
// @Param status query string false "Filter by status (pending, in_progress, done)"
// @Param guest_id query string false "Filter by guest ID"
// @Success 200 {object} response.Data[dto.GetLaundryResponse]
// @Failure 500 {object} response.Error
// @Router /v1/laundry [get]
// @Security BearerAuth
func (handler *Handler) GetLaundry(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetLaundry")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(constant.FieldCreatedAt, gDto.SortDirDesc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if q := query.Get(constant.RequestParamQuery); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, shared.SearchFilter(q, model.TableName+"."+model.FieldItems, "guests.name"))
	}

	shared.EqFilter(&filterGroup, model.TableName, model.FieldStatus, strings.ToLower(query.Get(model.FieldStatus)))
	shared.EqFilter(&filterGroup, model.TableName, model.FieldGuestID, query.Get(model.FieldGuestID))

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get laundry")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetLaundryByID retrieves a laundry order by its ID.
// @Summary Get a laundry order by ID
// @Tags Laundry
// @Produce json
// @Param id path string true "Laundry ID"
// @Success 200 {object} response.Data[dto.LaundryResponse]
// @Failure 404 {object} response.Error
// @Router /v1/laundry/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetLaundryByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetLaundryByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.Fail(w, scope, err, "failed to get laundry by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateLaundry patches a laundry order.
// @Summary Update a laundry order
// @Tags Laundry
// @Accept json
// @Produce json
// @Param id path string true "Laundry ID"
// @Param request body dto.UpdateLaundryRequest true "Update Laundry Request"
// @Success 200 {object} response.Data[dto.LaundryResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/laundry/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateLaundry(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateLaundry")
	defer scope.End()

	req := dto.UpdateLaundryRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update laundry")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateLaundryStatus moves a laundry order through its workflow.
// @Summary Update laundry status
// @Tags Laundry
// @Accept json
// @Produce json
// @Param id path string true "Laundry ID"
// @Param request body dto.UpdateLaundryStatusRequest true "Status"
// @Success 200 {object} response.Data[dto.LaundryResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/laundry/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateLaundryStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateLaundryStatus")
	defer scope.End()

	req := dto.UpdateLaundryStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.UpdateStatus(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update laundry status")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteLaundry deletes a laundry order.
// @Summary Delete a laundry order
// @Tags Laundry
// @Produce json
// @Param id path string true "Laundry ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/laundry/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteLaundry(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteLaundry")
	defer scope.End()

	actor := principal.FromContext(ctx)

	if err := handler.service.Delete(ctx, actor, chi.URLParam(r, constant.RequestParamID)); err != nil {
		response.Fail(w, scope, err, "failed to delete laundry")

		return
	}

	scope.AddEvent("Laundry deleted by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Laundry deleted successfully")
}
