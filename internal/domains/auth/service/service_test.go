package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guesthouse/infras/jwt"
	jwtMocks "guesthouse/infras/jwt/mocks"
	"guesthouse/infras/otel/mocks"
	"guesthouse/internal/domains/auth/model/dto"
	"guesthouse/internal/domains/auth/service"
	staffMocks "guesthouse/internal/domains/staff/mocks"
	staffModel "guesthouse/internal/domains/staff/model"
	userMocks "guesthouse/internal/domains/user/mocks"
	userModel "guesthouse/internal/domains/user/model"
	"guesthouse/shared/failure"
	gModel "guesthouse/shared/model"
	"guesthouse/shared/password"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"
)

// "password" hashed with bcrypt
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

type deps struct {
	users *userMocks.MockUser
	staff *staffMocks.MockStaff
	jwt   *jwtMocks.MockJWT
}

func newService(t *testing.T) (service.Auth, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		users: userMocks.NewMockUser(ctrl),
		staff: staffMocks.NewMockStaff(ctrl),
		jwt:   jwtMocks.NewMockJWT(ctrl),
	}

	return service.New(d.users, d.staff, mocks.NewOtel(), d.jwt), d
}

func validUser() userModel.User {
	staffID := "staff-1"

	return userModel.User{
		ID:       "user-id-123",
		Email:    "test@example.com",
		Password: passwordHash,
		Role:     "reception",
		StaffID:  &staffID,
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "system",
			ModifiedBy: "system",
		},
	}
}

func TestAuthService_Login(t *testing.T) {
	pair := &jwt.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), "user-id-123", "test@example.com", "reception").Return(pair, nil)
				d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
					assert.Contains(t, fields, userModel.FieldLastLogin)

					return nil
				})
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "wrong"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "inactive account",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				user := validUser()
				user.Active = false
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "token generation failure",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			res, err := svc.Login(context.Background(), tt.req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access", res.AccessToken)
			assert.Equal(t, "refresh", res.RefreshToken)
			assert.Equal(t, "reception", res.User.Role)
			assert.NotNil(t, res.User.LastLogin)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		svc, d := newService(t)
		d.jwt.EXPECT().ValidateToken(gomock.Any(), "bad", jwt.RefreshToken).Return(nil, jwt.ErrInvalidToken)

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "bad"})
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("deactivated since issue", func(t *testing.T) {
		svc, d := newService(t)
		user := validUser()
		user.Active = false

		d.jwt.EXPECT().ValidateToken(gomock.Any(), "good", jwt.RefreshToken).Return(&jwt.Claims{UserID: user.ID}, nil)
		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "good"})
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("reissues with current role", func(t *testing.T) {
		svc, d := newService(t)
		user := validUser()
		user.Role = "manager"

		d.jwt.EXPECT().ValidateToken(gomock.Any(), "good", jwt.RefreshToken).Return(&jwt.Claims{UserID: user.ID, Role: "reception"}, nil)
		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
		d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), user.ID, user.Email, "manager").
			Return(&jwt.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

		res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "good"})
		require.NoError(t, err)
		assert.Equal(t, "a2", res.AccessToken)
	})
}

func TestAuthService_Me(t *testing.T) {
	actor := principal.Principal{UserID: "user-id-123", Role: "reception", Source: principal.SourceToken}

	t.Run("includes the linked staff member", func(t *testing.T) {
		svc, d := newService(t)

		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
		d.staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(staffModel.Staff{ID: "staff-1", Name: "Juma", Barcode: "EMP-123456"}, nil)

		res, err := svc.Me(context.Background(), actor)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", res.Email)
		require.NotNil(t, res.Staff)
		assert.Equal(t, "EMP-123456", res.Staff.Barcode)
	})

	t.Run("login without staff", func(t *testing.T) {
		svc, d := newService(t)
		user := validUser()
		user.StaffID = nil

		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		res, err := svc.Me(context.Background(), actor)
		require.NoError(t, err)
		assert.Nil(t, res.Staff)
	})

	t.Run("deleted account", func(t *testing.T) {
		svc, d := newService(t)
		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)

		_, err := svc.Me(context.Background(), actor)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	actor := principal.Principal{UserID: "user-id-123", Source: principal.SourceToken}

	t.Run("wrong current password", func(t *testing.T) {
		svc, d := newService(t)
		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)

		err := svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword"})
		require.ErrorIs(t, err, service.ErrWrongPassword)
	})

	t.Run("stores the new hash and clears the force flag", func(t *testing.T) {
		svc, d := newService(t)
		user := validUser()
		user.ForceChangePassword = true

		d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
		d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
			hash, ok := fields[userModel.FieldPassword].(string)
			require.True(t, ok)
			assert.NoError(t, password.Verify("newpassword", hash))

			force, ok := fields[userModel.FieldForceChangePassword].(*bool)
			require.True(t, ok)
			assert.False(t, *force)

			return nil
		})

		err := svc.ChangePassword(context.Background(), actor, dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newpassword"})
		require.NoError(t, err)
	})
}
