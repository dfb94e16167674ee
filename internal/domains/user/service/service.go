package service

import (
	"context"
	"errors"
	"fmt"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	staffModel "guesthouse/internal/domains/staff/model"
	staffRepo "guesthouse/internal/domains/staff/repository"
	"guesthouse/internal/domains/user/model"
	"guesthouse/internal/domains/user/model/dto"
	"guesthouse/internal/domains/user/repository"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/password"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

var (
	ErrStaffNotFound = failure.NotFound("Staff not found")
	ErrStaffHasUser  = failure.Conflict("Staff already has a user account")
	ErrEmailTaken    = failure.Conflict("User with that username/email already exists")
)

type User interface {
	CreateForStaff(ctx context.Context, actor principal.Principal, staffID string, req dto.CreateStaffUserRequest) (dto.UserResponse, error)
}

type serviceImpl struct {
	repo      repository.User
	staffRepo staffRepo.Staff
	tx        postgres.Transactor
	publisher event.Publisher
	otel      otel.Otel
}

func New(repo repository.User, staffRepo staffRepo.Staff, tx postgres.Transactor, publisher event.Publisher, otel otel.Otel) User {
	return &serviceImpl{
		repo:      repo,
		staffRepo: staffRepo,
		tx:        tx,
		publisher: publisher,
		otel:      otel,
	}
}

func (s *serviceImpl) CreateForStaff(ctx context.Context, actor principal.Principal, staffID string, req dto.CreateStaffUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.CreateForStaff")
	defer scope.End()
	defer scope.TraceIfError(err)

	hashed, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	var user model.User

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		staff, err := s.staffRepo.Get(ctx, shared.FilterByID(staffID, staffModel.FieldID, staffModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get staff: %w", err)
		}

		if staff.ID == constant.Empty {
			return ErrStaffNotFound
		}

		if staff.HasUser() {
			return ErrStaffHasUser
		}

		if err := EnsureEmailFree(ctx, s.repo, req.Email); err != nil {
			return err
		}

		role := req.Role
		if role == constant.Empty {
			role = staff.Role
		}

		user = dto.NewStaffUser(actor.Actor(), staff.ID, req.Email, hashed, role, true)

		if err := s.repo.Insert(ctx, user); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, translate(err, "failed to create user for staff")
	}

	res.FromModel(user)

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeReferenceChange, user.ID, actor.Actor()))

	return res, nil
}

// EnsureEmailFree returns ErrEmailTaken when a login already uses email.
func EnsureEmailFree(ctx context.Context, repo repository.User, email string) error {
	exists, err := repo.Exist(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if exists {
		return ErrEmailTaken
	}

	return nil
}

// translate keeps domain failures intact. A unique violation from storage that
// was not caught by the pre-checks means the email was claimed concurrently.
func translate(err error, msg string) error {
	if errors.Is(err, ErrStaffHasUser) {
		return err
	}

	if failure.IsConflict(err) {
		return ErrEmailTaken
	}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}
