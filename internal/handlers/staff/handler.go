package staff

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/staff/model"
	"guesthouse/internal/domains/staff/model/dto"
	"guesthouse/internal/domains/staff/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Staff
	otel    otel.Otel
}

func New(service service.Staff, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/staff", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateStaff)
		routerGroup.Get("/", handler.GetStaff)
		routerGroup.Get("/{id}", handler.GetStaffByID)
		routerGroup.Patch("/{id}", handler.UpdateStaff)
		routerGroup.Delete("/{id}", handler.DeleteStaff)
	})
}

// CreateStaff registers a staff member, optionally with a login.
// @Summary Create a staff member
// @Description Create a staff member with a generated EMP-NNNNNN barcode. An optional account creates the linked user in the same transaction.
// @Tags Staff
// @Accept json
// @Produce json
// @Param request body dto.CreateStaffRequest true "Create Staff Request"
// @Success 201 {object} response.Data[dto.StaffResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/staff [post]
// @Security BearerAuth
func (handler *Handler) CreateStaff(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateStaff")
	defer scope.End()

	req := dto.CreateStaffRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create staff")

		return
	}

	scope.AddEvent("Staff created by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetStaff lists staff members.
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search name, phone or barcode"
// @Param role query string false "Filter by role"
// @Success 200 {object} response.Data[dto.GetStaffResponse]
// @Failure 500 {object} response.Error
// @Router /v1/staff [get]
// @Security BearerAuth
func (handler *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetStaff")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(model.FieldName, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if q := query.Get(constant.RequestParamQuery); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, shared.SearchFilter(q,
			model.TableName+"."+model.FieldName,
			model.TableName+"."+model.FieldPhone,
			model.TableName+"."+model.FieldBarcode,
		))
	}

	shared.EqFilter(&filterGroup, model.TableName, model.FieldRole, query.Get(model.FieldRole))

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get staff")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetStaffByID retrieves a staff member with the linked user.
// @Summary Get a staff member by ID
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Data[dto.StaffResponse]
// @Failure 404 {object} response.Error
// @Router /v1/staff/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetStaffByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetStaffByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		response.Fail(w, scope, err, "failed to get staff by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateStaff patches a staff member. A role change is mirrored onto the linked user.
// @Summary Update a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param request body dto.UpdateStaffRequest true "Update Staff Request"
// @Success 200 {object} response.Data[dto.StaffResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/staff/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateStaff")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateStaffRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), id, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update staff")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteStaff removes a staff member.
// @Summary Delete a staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/staff/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteStaff")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	actor := principal.FromContext(ctx)

	if err := handler.service.Delete(ctx, actor, id); err != nil {
		response.Fail(w, scope, err, "failed to delete staff")

		return
	}

	scope.AddEvent("Staff deleted by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Staff deleted successfully")
}
