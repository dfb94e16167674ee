package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/booking/model"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	gRepo "guesthouse/shared/repository"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// HasOverlap reports whether roomID already holds a booking intersecting [checkIn, checkOut).
// excludeID leaves one booking out so an update does not collide with itself.
func (r *repositoryImpl) HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.HasOverlap")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRoomID,
				Operator: gDto.FilterOperatorEq,
				Value:    roomID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Operator: gDto.FilterPlainQuery,
				Value:    model.OverlapCondition,
				Args:     model.OverlapArgs(checkIn, checkOut),
			},
		},
	}

	if excludeID != "" {
		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  "exclude_id",
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    excludeID,
			Table:    model.TableName,
		})
	}

	return r.Exist(ctx, filter) //nolint:wrapcheck
}
