package inventory

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/inventory/model"
	"guesthouse/internal/domains/inventory/model/dto"
	"guesthouse/internal/domains/inventory/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const queryParamLow = "low"

type Handler struct {
	service service.Inventory
	otel    otel.Otel
}

func New(service service.Inventory, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/inventory", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateItem)
		routerGroup.Get("/", handler.GetItems)
		routerGroup.Get("/metrics", handler.GetMetrics)
		routerGroup.Get("/{id}", handler.GetItemByID)
		routerGroup.Patch("/{id}", handler.UpdateItem)
		routerGroup.Delete("/{id}", handler.DeleteItem)
		routerGroup.Post("/{id}/move", handler.MoveItem)
		routerGroup.Get("/{id}/movements", handler.GetMovements)
	})
}

// CreateItem adds a stock item.
// @Summary Create an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body dto.CreateItemRequest true "Create Item Request"
// @Success 201 {object} response.Data[dto.ItemResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/inventory [post]
// @Security BearerAuth
func (handler *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "CreateItem")
	defer scope.End()

	req := dto.CreateItemRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Create(ctx, principal.FromContext(ctx), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to create inventory item")

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// GetItems lists stock items.
// @Summary List inventory items
// @Tags Inventory
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search name or SKU"
// @Param category query string false "Filter by category"
// @Param low query bool false "Only items at or below their threshold"
// @Success 200 {object} response.Data[dto.GetItemsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/inventory [get]
// @Security BearerAuth
func (handler *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetItems")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(model.FieldName, gDto.SortDirAsc)

	query := r.URL.Query()

	res, err := handler.service.GetAll(ctx, queryParams, dto.ItemQuery{
		Q:        query.Get(constant.RequestParamQuery),
		Category: query.Get(model.FieldCategory),
		Low:      shared.QueryFlag(query, queryParamLow),
	})
	if err != nil {
		response.Fail(w, scope, err, "failed to get inventory items")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetMetrics summarises stock per category.
// @Summary Inventory metrics
// @Tags Inventory
// @Produce json
// @Success 200 {object} response.Data[dto.MetricsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/inventory/metrics [get]
// @Security BearerAuth
func (handler *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetMetrics")
	defer scope.End()

	res, err := handler.service.Metrics(ctx)
	if err != nil {
		response.Fail(w, scope, err, "failed to get inventory metrics")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get an inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Data[dto.ItemResponse]
// @Failure 404 {object} response.Error
// @Router /v1/inventory/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetItemByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.Fail(w, scope, err, "failed to get inventory item")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateItem patches item details. Quantity only changes through moves.
// @Summary Update an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body dto.UpdateItemRequest true "Update Item Request"
// @Success 200 {object} response.Data[dto.ItemResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/inventory/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateItem")
	defer scope.End()

	req := dto.UpdateItemRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update inventory item")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Delete an inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/inventory/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteItem")
	defer scope.End()

	if err := handler.service.Delete(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID)); err != nil {
		response.Fail(w, scope, err, "failed to delete inventory item")

		return
	}

	response.WithMessage(w, http.StatusOK, "Item deleted successfully")
}

// MoveItem applies a stock movement.
// @Summary Move stock
// @Description IN adds, OUT removes (never below zero), ADJUST sets the absolute quantity.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body dto.MoveRequest true "Movement"
// @Success 200 {object} response.Data[dto.MoveResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/inventory/{id}/move [post]
// @Security BearerAuth
func (handler *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "MoveItem")
	defer scope.End()

	req := dto.MoveRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Move(ctx, actor, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to move stock")

		return
	}

	scope.AddEvent("Stock " + req.Type + " by user " + actor.UserID)

	response.WithJSON(w, http.StatusOK, res)
}

// GetMovements returns the newest movements of an item.
// @Summary List stock movements
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Param limit query int false "Maximum rows (1-500, default 50)"
// @Success 200 {object} response.Data[[]dto.MovementResponse]
// @Failure 404 {object} response.Error
// @Router /v1/inventory/{id}/movements [get]
// @Security BearerAuth
func (handler *Handler) GetMovements(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetMovements")
	defer scope.End()

	limit := shared.QueryInt(r.URL.Query(), constant.RequestParamLimit)

	res, err := handler.service.Movements(ctx, chi.URLParam(r, constant.RequestParamID), limit)
	if err != nil {
		response.Fail(w, scope, err, "failed to get stock movements")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
