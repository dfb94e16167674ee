package auth

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/auth/model/dto"
	"guesthouse/internal/domains/auth/service"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.Login)
		r.Post("/refresh-token", handler.RefreshToken)
		r.Get("/me", handler.Me)
		r.Post("/change-password", handler.ChangePassword)
	})
}

// Login handles user login
// @Summary Login a user
// @Description Exchange email and password for an access/refresh token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.LoginResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "Login")
	defer scope.End()

	req := dto.LoginRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to login user")

		return
	}

	scope.AddEvent("User logged in successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// RefreshToken handles token refresh
// @Summary Refresh user token
// @Description Issue a new token pair from a valid refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Data[dto.RefreshTokenResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "RefreshToken")
	defer scope.End()

	req := dto.RefreshTokenRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.RefreshToken(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to refresh token")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Me returns the authenticated user
// @Summary Current user
// @Description Return the authenticated user and the staff record linked to it.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[dto.MeResponse]
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "Me")
	defer scope.End()

	res, err := handler.service.Me(ctx, principal.FromContext(ctx))
	if err != nil {
		response.Fail(w, scope, err, "failed to get current user")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Description Verify the current password and set a new one; clears the forced-change flag.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "ChangePassword")
	defer scope.End()

	req := dto.ChangePasswordRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	if err := handler.service.ChangePassword(ctx, actor, req); err != nil {
		response.Fail(w, scope, err, "failed to change password")

		return
	}

	scope.AddEvent("Password changed by user " + actor.UserID)

	response.WithMessage(w, http.StatusOK, "Password changed successfully")
}
