package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	bookingModel "guesthouse/internal/domains/booking/model"
	"guesthouse/internal/domains/room/model"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	gRepo "guesthouse/shared/repository"
)

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	GetAvailable(ctx context.Context, checkIn, checkOut time.Time) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetAvailable lists rooms without any booking that overlaps [checkIn, checkOut).
func (r *repositoryImpl) GetAvailable(ctx context.Context, checkIn, checkOut time.Time) ([]model.Room, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetAvailable")
	defer scope.End()

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Operator: gDto.FilterPlainQuery,
				Value: fmt.Sprintf(
					"NOT EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s AND %s)",
					bookingModel.TableName, bookingModel.TableName, bookingModel.FieldRoomID,
					model.TableName, model.FieldID, bookingModel.OverlapCondition,
				),
				Args: bookingModel.OverlapArgs(checkIn, checkOut),
			},
		},
	}

	params := gDto.QueryParams{SortBy: model.FieldNumber, SortDir: gDto.SortDirAsc}

	return r.GetAll(ctx, params, filter) //nolint:wrapcheck
}
