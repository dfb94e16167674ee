package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/attendance/model"
	gDto "guesthouse/shared/dto"
	gRepo "guesthouse/shared/repository"
)

type Attendance interface {
	Insert(ctx context.Context, model model.Attendance) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Attendance, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Attendance, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Attendance]
}

func New(db *postgres.Connection, otel otel.Otel) Attendance {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Attendance](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
