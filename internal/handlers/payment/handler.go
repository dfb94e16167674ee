package payment

import (
	"net/http"
	"strings"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/payment/model"
	"guesthouse/internal/domains/payment/model/dto"
	"guesthouse/internal/domains/payment/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePayment)
		routerGroup.Get("/", handler.GetPayments)
		routerGroup.Get("/{id}", handler.GetPaymentByID)
		routerGroup.Patch("/{id}", handler.UpdatePayment)
		routerGroup.Delete("/{id}", handler.DeletePayment)
	})
}

// CreatePayment records a payment against a booking or a laundry order.
// @Summary Create a payment
// @Description Amount and guest are derived from the referenced booking or laundry order when omitted.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Create Payment Request"
// @Success 201 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/payments [post]
// @Security BearerAuth
func (handler *Handler) CreatePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreatePayment")
	defer scope.End()

	req := dto.CreatePaymentRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Create(ctx, actor, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create payment")

		return
	}

	scope.AddEvent("Payment recorded by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetPayments lists payments.
// @Summary Get all payments
// @Tags Payment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (paid, unpaid, refunded, failed)"
// @Param service_type query string false "Filter by service type (ROOM, LAUNDRY, ...)"
// @Param guest_id query string false "Filter by guest ID"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetPayments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.SortDefault(constant.FieldCreatedAt, gDto.SortDirDesc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	shared.EqFilter(&filterGroup, model.TableName, model.FieldStatus, strings.ToLower(query.Get(model.FieldStatus)))
	shared.EqFilter(&filterGroup, model.TableName, model.FieldServiceType, strings.ToUpper(query.Get(model.FieldServiceType)))
	shared.EqFilter(&filterGroup, model.TableName, model.FieldGuestID, query.Get(model.FieldGuestID))

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		response.Fail(w, scope, err, "failed to get payments")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPaymentByID retrieves a payment by its ID.
// @Summary Get a payment by ID
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetPaymentByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.Fail(w, scope, err, "failed to get payment by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdatePayment patches a payment.
// @Summary Update a payment by ID
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.UpdatePaymentRequest true "Update Payment Request"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdatePayment")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdatePaymentRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), id, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update payment")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeletePayment deletes a payment by its ID.
// @Summary Delete a payment by ID
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeletePayment")
	defer scope.End()

	actor := principal.FromContext(ctx)

	if err := handler.service.Delete(ctx, actor, chi.URLParam(r, constant.RequestParamID)); err != nil {
		response.Fail(w, scope, err, "failed to delete payment")

		return
	}

	scope.AddEvent("Payment deleted by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Payment deleted successfully")
}
