package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	guestMocks "guesthouse/internal/domains/guest/mocks"
	"guesthouse/internal/domains/guest/model"
	"guesthouse/internal/domains/guest/model/dto"
	"guesthouse/internal/domains/guest/service"
	"guesthouse/shared/cache"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var actor = principal.Principal{UserID: "user-1", Role: "reception", Source: principal.SourceToken}

func newService(t *testing.T) (service.Guest, *guestMocks.MockGuest) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := guestMocks.NewMockGuest(ctrl)

	server := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: server.Addr()}), mocks.NewOtel())

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return service.New(repo, cfg, redisCache, mocks.NewOtel()), repo
}

func TestGuestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateGuestRequest
		setupMock func(repo *guestMocks.MockGuest)
		wantErr   bool
	}{
		{
			name: "stores optional fields only when given",
			req:  dto.CreateGuestRequest{Name: "Amina", Phone: "0712345678"},
			setupMock: func(repo *guestMocks.MockGuest) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, guest model.Guest) error {
					assert.Equal(t, "Amina", guest.Name)
					assert.Nil(t, guest.Email)
					assert.Equal(t, actor.UserID, guest.CreatedBy)

					return nil
				})
			},
		},
		{
			name: "repository error",
			req:  dto.CreateGuestRequest{Name: "Amina", Phone: "0712345678", Email: "a@b.co"},
			setupMock: func(repo *guestMocks.MockGuest) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			tt.setupMock(repo)

			res, err := svc.Create(context.Background(), actor, tt.req)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, tt.req.Name, res.Name)
		})
	}
}

func TestGuestService_Get(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Guest{}, nil)

	_, err := svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Guest{ID: "g-1", Name: "Amina", Phone: "071"}, nil)

	res, err := svc.Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Amina", res.Name)
}

func TestGuestService_GetAll(t *testing.T) {
	svc, repo := newService(t)

	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Guest{{ID: "g-1"}, {ID: "g-2"}}, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Guests, 2)
}

func TestGuestService_Update(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := svc.Update(context.Background(), actor, "g-1", dto.UpdateGuestRequest{Name: "B"})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("patches only given fields", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, "Bakari", fields[model.FieldName])
			assert.NotContains(t, fields, model.FieldPhone)

			return nil
		})
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Guest{ID: "g-1", Name: "Bakari"}, nil)

		res, err := svc.Update(context.Background(), actor, "g-1", dto.UpdateGuestRequest{Name: "Bakari"})
		require.NoError(t, err)
		assert.Equal(t, "Bakari", res.Name)
	})
}

func TestGuestService_Delete(t *testing.T) {
	svc, repo := newService(t)

	repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(svc.Delete(context.Background(), "g-1")))

	repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), "g-1"))
}
