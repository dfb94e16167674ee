package service

import (
	"context"
	"fmt"

	"guesthouse/infras/jwt"
	"guesthouse/infras/otel"
	"guesthouse/internal/domains/auth/model/dto"
	staffModel "guesthouse/internal/domains/staff/model"
	staffDto "guesthouse/internal/domains/staff/model/dto"
	staffRepo "guesthouse/internal/domains/staff/repository"
	userModel "guesthouse/internal/domains/user/model"
	userRepo "guesthouse/internal/domains/user/repository"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	"guesthouse/shared/failure"
	"guesthouse/shared/password"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCredentials = failure.Unauthorized("Invalid credentials")
	ErrInactiveUser       = failure.Forbidden("user account is deactivated")
	ErrInvalidRefresh     = failure.Unauthorized("invalid refresh token")
	ErrUserNotFound       = failure.NotFound("user not found")
	ErrWrongPassword      = failure.BadRequestFromString("current password is incorrect")
)

type Auth interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	Me(ctx context.Context, actor principal.Principal) (dto.MeResponse, error)
	ChangePassword(ctx context.Context, actor principal.Principal, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	staffRepo  staffRepo.Staff
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, staffRepo staffRepo.Staff, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		staffRepo:  staffRepo,
		otel:       otel,
		jwtService: jwt,
	}
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	emailFilter := shared.FilterByID(req.Email, userModel.FieldEmail, userModel.TableName)

	user, err := s.userRepo.Get(ctx, emailFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, ErrInvalidCredentials
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, ErrInvalidCredentials
	}

	if !user.Active {
		return res, ErrInactiveUser
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := timezone.Now()
	lastLogin := dto.UpdateLastLoginRequest{LastLogin: now}

	if err := s.userRepo.Update(ctx, shared.TransformFields(lastLogin, user.ID), emailFilter); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	user.LastLogin = &now

	res.FromTokenPair(tokenPair)
	res.User.FromModel(user)

	return res, nil
}

// RefreshToken reissues the pair from a refresh token, reloading the account so
// deactivation and role changes take effect without waiting for expiry.
func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	claims, err := s.jwtService.ValidateToken(ctx, req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, ErrInvalidRefresh
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(claims.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty || !user.Active {
		return res, ErrInvalidRefresh
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) Me(ctx context.Context, actor principal.Principal) (res dto.MeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Me")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.userRepo.Get(ctx, shared.FilterByID(actor.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, ErrUserNotFound
	}

	res.UserResponse.FromModel(user)

	if user.StaffID == nil {
		return res, nil
	}

	staff, err := s.staffRepo.Get(ctx, shared.FilterByID(*user.StaffID, staffModel.FieldID, staffModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff")

		return res, fmt.Errorf("failed to get staff: %w", err)
	}

	if staff.ID != constant.Empty {
		res.Staff = &staffDto.StaffResponse{}
		res.Staff.FromModel(staff)
		res.Staff.User = nil
	}

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, actor principal.Principal, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(actor.UserID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return ErrUserNotFound
	}

	if err := password.Verify(req.CurrentPassword, user.Password); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	cleared := false
	updatePassword := dto.UpdatePasswordRequest{Password: hashedPassword, ForceChangePassword: &cleared}

	if err = s.userRepo.Update(ctx, shared.TransformFields(updatePassword, actor.Actor()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
