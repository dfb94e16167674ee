package service

import (
	"context"
	"fmt"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/internal/domains/room/model"
	"guesthouse/internal/domains/room/model/dto"
	"guesthouse/internal/domains/room/repository"
	"guesthouse/shared"
	"guesthouse/shared/cache"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

var (
	ErrRoomNotFound     = failure.NotFound("room not found")
	ErrRoomNumberExists = failure.Conflict("room number already exists")
)

type Room interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateRoomRequest) (dto.RoomResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

type serviceImpl struct {
	repo      repository.Room
	cfg       *config.Config
	cache     cache.RedisCache
	publisher event.Publisher
	otel      otel.Otel
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, publisher event.Publisher, otel otel.Otel) Room {
	return &serviceImpl{
		repo:      repo,
		cfg:       cfg,
		cache:     cache,
		publisher: publisher,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.ensureNumberFree(ctx, req.Number, ""); err != nil {
		return res, err
	}

	room := req.ToModel(actor.Actor())

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		if failure.IsConflict(err) {
			return res, ErrRoomNumberExists
		}

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(room)

	s.forget(ctx, "")

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, room.ID, actor.Actor()))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	return shared.Cached(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetRoomsResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		rooms, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list rooms")

			return page, fmt.Errorf("failed to list rooms: %w", err)
		}

		page.FromModels(rooms, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	return shared.Cached(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count rooms")

			return 0, fmt.Errorf("failed to count rooms: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	return shared.Cached(ctx, s.cache, shared.BuildCacheKey(cacheGetRoom, id), s.cfg.Cache.TTL, func(ctx context.Context) (out dto.RoomResponse, err error) {
		room, err := s.find(ctx, id)
		if err != nil {
			return out, err
		}

		out.FromModel(room)

		return out, nil
	})
}

// find loads a room by id, mapping a missing row to ErrRoomNotFound.
func (s *serviceImpl) find(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to load room")

		return room, fmt.Errorf("failed to load room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, ErrRoomNotFound
	}

	return room, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if req.Number != constant.Empty && req.Number != current.Number {
		if err = s.ensureNumberFree(ctx, req.Number, id); err != nil {
			return res, err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, actor.Actor()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return res, fmt.Errorf("failed to update room: %w", err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	s.forget(ctx, id)

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return ErrRoomNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.forget(ctx, id)

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return nil
}

func (s *serviceImpl) ensureNumberFree(ctx context.Context, number, exceptID string) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldNumber, Operator: gDto.FilterOperatorEq, Value: number, Table: model.TableName},
		},
	}

	if exceptID != "" {
		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  "except_id",
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    exceptID,
			Table:    model.TableName,
		})
	}

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check room number")

		return fmt.Errorf("failed to check room number: %w", err)
	}

	if exist {
		return ErrRoomNumberExists
	}

	return nil
}

// forget drops the cached room (when id is set) and every cached listing.
func (s *serviceImpl) forget(ctx context.Context, id string) {
	go func(ctx context.Context) {
		if id != "" {
			if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
				log.Error().Err(err).Str("room_id", id).Msg("failed to evict room")
			}
		}

		shared.InvalidateCaches(ctx, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(ctx, s.cache, cacheCountRoom)
	}(context.WithoutCancel(ctx))
}
