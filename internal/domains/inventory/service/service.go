package service

import (
	"context"
	"errors"
	"fmt"

	"guesthouse/infras/amqp"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/inventory/model"
	"guesthouse/internal/domains/inventory/model/dto"
	"guesthouse/internal/domains/inventory/repository"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

var (
	ErrItemNotFound      = failure.NotFound("Item not found")
	ErrInsufficientStock = failure.BadRequestFromString("Insufficient stock")
	ErrPositiveQuantity  = failure.BadRequestFromString("Quantity must be a positive number")
	ErrNegativeQuantity  = failure.BadRequestFromString("Quantity must be a non-negative number")
	ErrUnknownMovement   = failure.BadRequestFromString("type must be one of IN, OUT, ADJUST")
)

type Inventory interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateItemRequest) (dto.ItemResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, query dto.ItemQuery) (dto.GetItemsResponse, error)
	Get(ctx context.Context, id string) (dto.ItemResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateItemRequest) (dto.ItemResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
	Metrics(ctx context.Context) (dto.MetricsResponse, error)
	Move(ctx context.Context, actor principal.Principal, id string, req dto.MoveRequest) (dto.MoveResponse, error)
	Movements(ctx context.Context, id string, limit int) ([]dto.MovementResponse, error)
}

type serviceImpl struct {
	repo      repository.Inventory
	movements repository.Movement
	tx        postgres.Transactor
	alerts    amqp.Client
	publisher event.Publisher
	otel      otel.Otel
}

func New(repo repository.Inventory, movements repository.Movement, tx postgres.Transactor, alerts amqp.Client,
	publisher event.Publisher, otel otel.Otel,
) Inventory {
	return &serviceImpl{
		repo:      repo,
		movements: movements,
		tx:        tx,
		alerts:    alerts,
		publisher: publisher,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	item := req.ToModel(actor.Actor())

	if err = s.repo.Insert(ctx, item); err != nil {
		return res, s.translate(err, "failed to create item")
	}

	res.FromModel(item)

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, item.ID, actor.Actor()))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, query dto.ItemQuery) (res dto.GetItemsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := listFilter(query)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count items")

		return res, fmt.Errorf("failed to count items: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get items")

		return res, fmt.Errorf("failed to get items: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func listFilter(query dto.ItemQuery) gDto.FilterGroup {
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if query.Q != constant.Empty {
		search := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorOr}

		for _, field := range []string{model.FieldName, model.FieldCategory, model.FieldSKU} {
			search.Filters = append(search.Filters, gDto.Filter{
				Field: field, ArgName: "q_" + field, Operator: gDto.FilterOperatorLike, Value: query.Q, Table: model.TableName,
			})
		}

		filter.Filters = append(filter.Filters, search)
	}

	if query.Category != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldCategory, Operator: gDto.FilterOperatorEq, Value: query.Category, Table: model.TableName,
		})
	}

	if query.Low {
		filter.Filters = append(filter.Filters, gDto.Filter{Operator: gDto.FilterPlainQuery, Value: model.LowStockCondition})
	}

	return filter
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	item, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get item")

		return res, fmt.Errorf("failed to get item: %w", err)
	}

	if item.ID == constant.Empty {
		return res, ErrItemNotFound
	}

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check item existence")

		return res, fmt.Errorf("failed to check item existence: %w", err)
	}

	if !exist {
		return res, ErrItemNotFound
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, actor.Actor()), filter); err != nil {
		return res, s.translate(err, "failed to update item")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if item exists")

		return fmt.Errorf("failed to check if item exists: %w", err)
	}

	if !exist {
		return ErrItemNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete item")

		return fmt.Errorf("failed to delete item: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return nil
}

func (s *serviceImpl) Metrics(ctx context.Context) (res dto.MetricsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Metrics")
	defer scope.End()
	defer scope.TraceIfError(err)

	rows, err := s.repo.CategoryMetrics(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate inventory")

		return res, fmt.Errorf("failed to aggregate inventory: %w", err)
	}

	res.FromModels(rows)

	return res, nil
}

func validateMove(req dto.MoveRequest) error {
	switch req.Type {
	case model.MoveIn, model.MoveOut:
		if req.Quantity <= 0 {
			return ErrPositiveQuantity
		}
	case model.MoveAdjust:
		if req.Quantity < 0 {
			return ErrNegativeQuantity
		}
	default:
		return ErrUnknownMovement
	}

	return nil
}

// Resulting computes the stock level a movement leaves behind.
func Resulting(current int, req dto.MoveRequest) (int, error) {
	if err := validateMove(req); err != nil {
		return 0, err
	}

	switch req.Type {
	case model.MoveIn:
		return current + req.Quantity, nil
	case model.MoveOut:
		if req.Quantity > current {
			return 0, ErrInsufficientStock
		}

		return current - req.Quantity, nil
	default:
		return req.Quantity, nil
	}
}

// Move applies a stock movement and appends it to the item's log in one transaction.
func (s *serviceImpl) Move(ctx context.Context, actor principal.Principal, id string, req dto.MoveRequest) (res dto.MoveResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Move")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = validateMove(req); err != nil {
		return res, err
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var (
		item     model.Item
		movement model.Movement
	)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.GetForUpdate(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}

		if found.ID == constant.Empty {
			return ErrItemNotFound
		}

		resulting, err := Resulting(found.Quantity, req)
		if err != nil {
			return err
		}

		fields := map[string]any{
			model.FieldQuantity:      resulting,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: actor.Actor(),
		}

		if err := s.repo.Update(ctx, fields, filter); err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}

		movement = dto.NewMovement(actor.Actor(), found.ID, req, resulting)

		if err := s.movements.Insert(ctx, movement); err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}

		found.Quantity = resulting
		item = found

		return nil
	})
	if err != nil {
		return res, s.translate(err, "failed to move stock")
	}

	res.Item.FromModel(item)
	res.Movement.FromModel(movement)

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeInventoryMoved, item.ID, actor.Actor()))

	if item.IsLow() {
		go s.alertLowStock(context.WithoutCancel(ctx), item, req.Type)
	}

	return res, nil
}

func (s *serviceImpl) alertLowStock(ctx context.Context, item model.Item, movementType string) {
	alert := model.LowStockAlert{
		ItemID:       item.ID,
		Name:         item.Name,
		SKU:          item.SKU,
		Unit:         item.Unit,
		Quantity:     item.Quantity,
		MinThreshold: item.MinThreshold,
		MovementType: movementType,
		At:           timezone.Now(),
	}

	if err := s.alerts.Publish(ctx, alert); err != nil {
		log.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish low stock alert")
	}
}

func (s *serviceImpl) Movements(ctx context.Context, id string, limit int) (res []dto.MovementResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Movements")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check item existence")

		return res, fmt.Errorf("failed to check item existence: %w", err)
	}

	if !exist {
		return res, ErrItemNotFound
	}

	params := gDto.QueryParams{
		Limit:   ClampLimit(limit),
		SortBy:  constant.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}

	rows, err := s.movements.GetAll(ctx, params, shared.FilterByID(id, model.FieldItemID, model.MovementTableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get movements")

		return res, fmt.Errorf("failed to get movements: %w", err)
	}

	res = make([]dto.MovementResponse, len(rows))
	for i, row := range rows {
		res[i].FromModel(row)
	}

	return res, nil
}

// ClampLimit bounds a movement page to [1, 500], defaulting to 50.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultMovementLimit
	case limit > maxMovementLimit:
		return maxMovementLimit
	}

	return limit
}

func (s *serviceImpl) translate(err error, msg string) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}
