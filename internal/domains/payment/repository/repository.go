package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/payment/model"
	gDto "guesthouse/shared/dto"
	gRepo "guesthouse/shared/repository"

	"github.com/shopspring/decimal"
)

type Payment interface {
	Insert(ctx context.Context, model model.Payment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Payment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Payment, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	Revenue(ctx context.Context, filter gDto.FilterGroup) (decimal.Decimal, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type revenueRow struct {
	Total decimal.Decimal `db:"total"`
}

// Revenue sums the amount of every payment matching filter.
func (r *repositoryImpl) Revenue(ctx context.Context, filter gDto.FilterGroup) (decimal.Decimal, error) {
	var rows []revenueRow

	selects := "COALESCE(SUM(" + model.TableName + "." + model.FieldAmount + "), 0) AS total"

	if err := r.Aggregate(ctx, &rows, selects, filter, ""); err != nil {
		return decimal.Zero, err //nolint:wrapcheck
	}

	if len(rows) == 0 {
		return decimal.Zero, nil
	}

	return rows[0].Total, nil
}
