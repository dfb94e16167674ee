package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/inventory/model"
	gDto "guesthouse/shared/dto"
	gRepo "guesthouse/shared/repository"
)

type Inventory interface {
	Insert(ctx context.Context, model model.Item) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Item, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Item, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Item, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	CategoryMetrics(ctx context.Context) ([]model.CategoryMetric, error)
}

type Movement interface {
	Insert(ctx context.Context, model model.Movement) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Movement, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Item]
}

func New(db *postgres.Connection, otel otel.Otel) Inventory {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Item](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// CategoryMetrics groups item count, stock and low-stock count by category.
func (r *repositoryImpl) CategoryMetrics(ctx context.Context) ([]model.CategoryMetric, error) {
	var metrics []model.CategoryMetric

	selects := fmt.Sprintf(
		"%[1]s.%[2]s AS category, COUNT(*) AS item_count, COALESCE(SUM(%[1]s.%[3]s), 0) AS quantity, "+
			"COUNT(*) FILTER (WHERE %[4]s) AS low_count",
		model.TableName, model.FieldCategory, model.FieldQuantity, model.LowStockCondition,
	)

	err := r.Aggregate(ctx, &metrics, selects, gDto.FilterGroup{}, "GROUP BY "+model.TableName+"."+model.FieldCategory+" ORDER BY category")
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return metrics, nil
}

type movementRepositoryImpl struct {
	gRepo.Repository[model.Movement]
}

func NewMovement(db *postgres.Connection, otel otel.Otel) Movement {
	return &movementRepositoryImpl{
		Repository: gRepo.NewRepository[model.Movement](model.MovementEntityName, model.MovementTableName, model.FieldID, db, otel),
	}
}
