package user

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/user/model/dto"
	"guesthouse/internal/domains/user/service"
	"guesthouse/shared/constant"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(routerGroup chi.Router) {
		routerGroup.Post("/staff/{staffId}", handler.CreateForStaff)
	})
}

// CreateForStaff creates the login account of a staff member.
// @Summary Create a user for a staff member
// @Description Create a login linked to an existing staff member. The role defaults to the staff role.
// @Tags User
// @Accept json
// @Produce json
// @Param staffId path string true "Staff ID"
// @Param request body dto.CreateStaffUserRequest true "Create Staff User Request"
// @Success 201 {object} response.Data[dto.UserResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/users/staff/{staffId} [post]
// @Security BearerAuth
func (handler *Handler) CreateForStaff(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, request, "CreateForStaff")
	defer scope.End()

	staffID := chi.URLParam(request, constant.RequestParamStaffID)

	req := dto.CreateStaffUserRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		response.Fail(writer, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.CreateForStaff(ctx, actor, staffID, req)
	if err != nil {
		response.Fail(writer, scope, err, "failed to create staff user")

		return
	}

	scope.AddEvent("Staff user created by user " + actor.UserID)

	response.WithJSON(writer, http.StatusCreated, res)
}
