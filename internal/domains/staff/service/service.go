package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/staff/model"
	"guesthouse/internal/domains/staff/model/dto"
	"guesthouse/internal/domains/staff/repository"
	userModel "guesthouse/internal/domains/user/model"
	userDto "guesthouse/internal/domains/user/model/dto"
	userRepo "guesthouse/internal/domains/user/repository"
	userService "guesthouse/internal/domains/user/service"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/password"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
)

const barcodeAttempts = 20

var ErrStaffNotFound = failure.NotFound("Staff not found")

type Staff interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateStaffRequest) (dto.StaffResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetStaffResponse, error)
	Get(ctx context.Context, id string) (dto.StaffResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateStaffRequest) (dto.StaffResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

// Option customises the service, mostly for tests.
type Option func(*serviceImpl)

// WithBarcodeSource replaces the random six digit generator.
func WithBarcodeSource(next func() int) Option {
	return func(s *serviceImpl) {
		s.nextCode = next
	}
}

type serviceImpl struct {
	repo      repository.Staff
	userRepo  userRepo.User
	tx        postgres.Transactor
	publisher event.Publisher
	otel      otel.Otel
	nextCode  func() int
}

func New(repo repository.Staff, userRepo userRepo.User, tx postgres.Transactor, publisher event.Publisher, otel otel.Otel, opts ...Option) Staff {
	s := &serviceImpl{
		repo:      repo,
		userRepo:  userRepo,
		tx:        tx,
		publisher: publisher,
		otel:      otel,
		nextCode:  func() int { return 100000 + rand.IntN(900000) }, //nolint:gosec
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateStaffRequest) (res dto.StaffResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".staff.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	var hashed string

	if req.Account != nil {
		if hashed, err = password.Hash(req.Account.Password); err != nil {
			log.Error().Err(err).Msg("failed to hash password")

			return res, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	var staff model.Staff

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		barcode, err := s.uniqueBarcode(ctx)
		if err != nil {
			return err
		}

		staff = req.ToModel(actor.Actor(), barcode)

		if err := s.repo.Insert(ctx, staff); err != nil {
			return fmt.Errorf("failed to insert staff: %w", err)
		}

		if req.Account == nil {
			return nil
		}

		if err := userService.EnsureEmailFree(ctx, s.userRepo, req.Account.Email); err != nil {
			return err
		}

		user := userDto.NewStaffUser(actor.Actor(), staff.ID, req.Account.Email, hashed, staff.Role, req.Account.MustChangePassword())

		if err := s.userRepo.Insert(ctx, user); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, s.translate(err, "failed to create staff")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, staff.ID, actor.Actor()))

	return s.Get(ctx, staff.ID)
}

// uniqueBarcode draws EMP-NNNNNN codes until one is free. After barcodeAttempts
// collisions it falls back to the clock, which the UNIQUE constraint still guards.
func (s *serviceImpl) uniqueBarcode(ctx context.Context) (string, error) {
	for range barcodeAttempts {
		code := model.BarcodePrefix + strconv.Itoa(s.nextCode())

		exists, err := s.repo.Exist(ctx, shared.FilterByID(code, model.FieldBarcode, model.TableName))
		if err != nil {
			return constant.Empty, fmt.Errorf("failed to check barcode: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	millis := strconv.FormatInt(timezone.Now().UnixMilli(), 10)

	return model.BarcodePrefix + millis[len(millis)-6:], nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetStaffResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".staff.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count staff")

		return res, fmt.Errorf("failed to count staff: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff")

		return res, fmt.Errorf("failed to get staff: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.StaffResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".staff.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	staff, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff")

		return res, fmt.Errorf("failed to get staff: %w", err)
	}

	if staff.ID == constant.Empty {
		return res, ErrStaffNotFound
	}

	res.FromModel(staff)

	return res, nil
}

// Update patches the staff row. A role change is mirrored onto the linked login.
func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateStaffRequest) (res dto.StaffResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".staff.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		staff, err := s.repo.Get(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to get staff: %w", err)
		}

		if staff.ID == constant.Empty {
			return ErrStaffNotFound
		}

		if err := s.repo.Update(ctx, shared.TransformFields(req, actor.Actor()), filter); err != nil {
			return fmt.Errorf("failed to update staff: %w", err)
		}

		if req.Role == constant.Empty || req.Role == staff.Role || !staff.HasUser() {
			return nil
		}

		roleChange := struct {
			Role string `db:"role"`
		}{Role: req.Role}

		if err := s.userRepo.Update(ctx, shared.TransformFields(roleChange, actor.Actor()), shared.FilterByID(*staff.UserID, userModel.FieldID, userModel.TableName)); err != nil {
			return fmt.Errorf("failed to update linked user role: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, s.translate(err, "failed to update staff")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".staff.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if staff exists")

		return fmt.Errorf("failed to check if staff exists: %w", err)
	}

	if !exist {
		return ErrStaffNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete staff")

		return fmt.Errorf("failed to delete staff: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, id, actor.Actor()))

	return nil
}

func (s *serviceImpl) translate(err error, msg string) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}
