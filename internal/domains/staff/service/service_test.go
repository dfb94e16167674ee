package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	txMocks "guesthouse/infras/postgres/mocks"
	staffMocks "guesthouse/internal/domains/staff/mocks"
	"guesthouse/internal/domains/staff/model"
	"guesthouse/internal/domains/staff/model/dto"
	"guesthouse/internal/domains/staff/service"
	userMocks "guesthouse/internal/domains/user/mocks"
	userModel "guesthouse/internal/domains/user/model"
	userService "guesthouse/internal/domains/user/service"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/password"
	"guesthouse/shared/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var actor = principal.Principal{UserID: "manager-1", Role: "manager", Source: principal.SourceToken}

type deps struct {
	repo  *staffMocks.MockStaff
	users *userMocks.MockUser
	tx    *txMocks.Transactor
}

func newService(t *testing.T, codes ...int) (service.Staff, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:  staffMocks.NewMockStaff(ctrl),
		users: userMocks.NewMockUser(ctrl),
		tx:    txMocks.NewTransactor(),
	}

	var opts []service.Option

	if len(codes) > 0 {
		i := 0
		opts = append(opts, service.WithBarcodeSource(func() int {
			code := codes[i%len(codes)]
			i++

			return code
		}))
	}

	publisher := event.NewPublisher(&config.Config{}, nil, mocks.NewOtel())

	return service.New(d.repo, d.users, d.tx, publisher, mocks.NewOtel(), opts...), d
}

func TestStaffService_CreateRetriesBarcode(t *testing.T) {
	svc, d := newService(t, 111111, 222222)

	var stored model.Staff

	gomock.InOrder(
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil),
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil),
	)
	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s model.Staff) error {
		stored = s

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ any, _ ...string) (model.Staff, error) {
		return stored, nil
	})

	res, err := svc.Create(context.Background(), actor, dto.CreateStaffRequest{Name: "Neema", Role: "security"})
	require.NoError(t, err)

	assert.Equal(t, "EMP-222222", res.Barcode)
	assert.Regexp(t, model.BarcodePattern, res.Barcode)
	assert.Nil(t, res.User)
	assert.Equal(t, 1, d.tx.Calls)
}

func TestStaffService_CreateFallsBackAfterTwentyCollisions(t *testing.T) {
	svc, d := newService(t, 123456)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).Times(20)
	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s model.Staff) error {
		assert.Regexp(t, model.BarcodePattern, s.Barcode)

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Staff{ID: "staff-1", Barcode: "EMP-000001"}, nil)

	_, err := svc.Create(context.Background(), actor, dto.CreateStaffRequest{Name: "Neema", Role: "security"})
	require.NoError(t, err)
}

func TestStaffService_CreateWithAccount(t *testing.T) {
	force := false
	req := dto.CreateStaffRequest{
		Name: "Juma",
		Role: "reception",
		Account: &dto.AccountRequest{
			Email:               "juma@guesthouse.test",
			Password:            "supersecret",
			ForceChangePassword: &force,
		},
	}

	t.Run("links a login carrying the staff role", func(t *testing.T) {
		svc, d := newService(t, 333333)

		var staffID string

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s model.Staff) error {
			staffID = s.ID

			return nil
		})
		d.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.users.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u userModel.User) error {
			require.NotNil(t, u.StaffID)
			assert.Equal(t, staffID, *u.StaffID)
			assert.Equal(t, "reception", u.Role)
			assert.False(t, u.ForceChangePassword)
			assert.True(t, u.Active)
			assert.NoError(t, password.Verify("supersecret", u.Password))

			return nil
		})
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ any, _ ...string) (model.Staff, error) {
			userID, email := "user-1", req.Account.Email

			return model.Staff{ID: staffID, Name: "Juma", Role: "reception", Barcode: "EMP-333333", UserID: &userID, UserEmail: &email}, nil
		})

		res, err := svc.Create(context.Background(), actor, req)
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, req.Account.Email, res.User.Email)
	})

	t.Run("taken email aborts the whole creation", func(t *testing.T) {
		svc, d := newService(t, 333333)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		d.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := svc.Create(context.Background(), actor, req)
		require.ErrorIs(t, err, userService.ErrEmailTaken)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestStaffService_Get(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Staff{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrStaffNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestStaffService_UpdateMirrorsRole(t *testing.T) {
	svc, d := newService(t)
	userID := "user-7"

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Staff{ID: "staff-7", Role: "barista", UserID: &userID}, nil)
	d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
		assert.Equal(t, "store", fields[model.FieldRole])

		return nil
	})
	d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
		assert.Equal(t, "store", fields[userModel.FieldRole])
		assert.Equal(t, actor.UserID, fields["modified_by"])

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Staff{ID: "staff-7", Role: "store", UserID: &userID}, nil)

	res, err := svc.Update(context.Background(), actor, "staff-7", dto.UpdateStaffRequest{Role: "store"})
	require.NoError(t, err)
	assert.Equal(t, "store", res.Role)
}

func TestStaffService_UpdateWithoutLogin(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Staff{ID: "staff-8", Role: "barista"}, nil).Times(2)
	d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Update(context.Background(), actor, "staff-8", dto.UpdateStaffRequest{Phone: "0700000000"})
	require.NoError(t, err)
}

func TestStaffService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "missing",
			setupMock: func(d deps) {
				d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			setupMock: func(d deps) {
				d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "success",
			setupMock: func(d deps) {
				d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			err := svc.Delete(context.Background(), actor, "staff-1")
			if tt.wantCode == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}
