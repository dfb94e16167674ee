package service

import (
	"context"
	"fmt"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/internal/domains/guest/model"
	"guesthouse/internal/domains/guest/model/dto"
	"guesthouse/internal/domains/guest/repository"
	"guesthouse/shared"
	"guesthouse/shared/cache"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetGuest    = "guest:get"
	cacheGetAllGuest = "guest:gets"
	cacheCountGuest  = "guest:count"
)

var ErrGuestNotFound = failure.NotFound("guest not found")

type Guest interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateGuestRequest) (dto.GuestResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetGuestsResponse, error)
	Get(ctx context.Context, id string) (dto.GuestResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateGuestRequest) (dto.GuestResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Guest
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Guest, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Guest {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateGuestRequest) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	guest := req.ToModel(actor.Actor())

	if err = s.repo.Insert(ctx, guest); err != nil {
		log.Error().Err(err).Msg("failed to create guest")

		return res, fmt.Errorf("failed to create guest: %w", err)
	}

	res.FromModel(guest)

	go s.invalidateLists(context.WithoutCancel(ctx))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetGuestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	countKey := shared.BuildCacheKeyWithQuery(cacheCountGuest, req, filter)
	listKey := shared.BuildCacheKeyWithQuery(cacheGetAllGuest, req, filter)

	return shared.Cached(ctx, s.cache, listKey, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetGuestsResponse, err error) {
		total, err := shared.Cached(ctx, s.cache, countKey, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
			n, err := s.repo.Count(ctx, filter)
			if err != nil {
				return 0, fmt.Errorf("failed to count guests: %w", err)
			}

			return n, nil
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to count guests")

			return page, err
		}

		guests, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list guests")

			return page, fmt.Errorf("failed to list guests: %w", err)
		}

		page.FromModels(guests, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	return shared.Cached(ctx, s.cache, shared.BuildCacheKey(cacheGetGuest, id), s.cfg.Cache.TTL, func(ctx context.Context) (out dto.GuestResponse, err error) {
		guest, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Str("guest_id", id).Msg("failed to load guest")

			return out, fmt.Errorf("failed to load guest: %w", err)
		}

		if guest.ID == constant.Empty {
			return out, ErrGuestNotFound
		}

		out.FromModel(guest)

		return out, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateGuestRequest) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check guest existence")

		return res, fmt.Errorf("failed to check guest existence: %w", err)
	}

	if !exist {
		return res, ErrGuestNotFound
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, actor.Actor()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update guest")

		return res, fmt.Errorf("failed to update guest: %w", err)
	}

	guest, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload guest")

		return res, fmt.Errorf("failed to reload guest: %w", err)
	}

	res.FromModel(guest)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetGuest, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete guest cache")
		}

		s.invalidateLists(c)
	}()

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if guest exists")

		return fmt.Errorf("failed to check if guest exists: %w", err)
	}

	if !exist {
		return ErrGuestNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete guest")

		return fmt.Errorf("failed to delete guest: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetGuest, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete guest from cache")
		}

		s.invalidateLists(c)
	}()

	return nil
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllGuest)
	shared.InvalidateCaches(ctx, s.cache, cacheCountGuest)
}
