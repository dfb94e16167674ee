package service

import (
	"context"
	"fmt"

	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	guestModel "guesthouse/internal/domains/guest/model"
	guestRepo "guesthouse/internal/domains/guest/repository"
	"guesthouse/internal/domains/laundry/model"
	"guesthouse/internal/domains/laundry/model/dto"
	"guesthouse/internal/domains/laundry/repository"
	paymentModel "guesthouse/internal/domains/payment/model"
	paymentDto "guesthouse/internal/domains/payment/model/dto"
	paymentRepo "guesthouse/internal/domains/payment/repository"
	"guesthouse/shared"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

const chargeDescription = "Laundry charge"

var (
	ErrLaundryNotFound = failure.NotFound("laundry not found")
	ErrGuestNotFound   = failure.NotFound("guest not found")
)

type Laundry interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateLaundryRequest) (dto.LaundryResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetLaundryResponse, error)
	Get(ctx context.Context, id string) (dto.LaundryResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateLaundryRequest) (dto.LaundryResponse, error)
	UpdateStatus(ctx context.Context, actor principal.Principal, id string, req dto.UpdateLaundryStatusRequest) (dto.LaundryResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

type serviceImpl struct {
	repo        repository.Laundry
	paymentRepo paymentRepo.Payment
	guestRepo   guestRepo.Guest
	tx          postgres.Transactor
	publisher   event.Publisher
	otel        otel.Otel
}

func New(
	repo repository.Laundry,
	paymentRepo paymentRepo.Payment,
	guestRepo guestRepo.Guest,
	tx postgres.Transactor,
	publisher event.Publisher,
	otel otel.Otel,
) Laundry {
	return &serviceImpl{
		repo:        repo,
		paymentRepo: paymentRepo,
		guestRepo:   guestRepo,
		tx:          tx,
		publisher:   publisher,
		otel:        otel,
	}
}

// Create stores the order together with its settled cash payment; either both persist or neither does.
func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateLaundryRequest) (res dto.LaundryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	order := req.ToModel(actor.Actor())
	charge := paymentDto.Charge{
		ServiceType: paymentModel.ServiceLaundry,
		LaundryID:   order.ID,
		GuestID:     order.GuestID,
		Amount:      order.Price,
		Method:      paymentModel.MethodCash,
		Status:      paymentModel.StatusPaid,
		Description: chargeDescription,
	}
	payment := charge.ToModel(actor.Actor())

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ensureGuest(ctx, order.GuestID); err != nil {
			return err
		}

		if err := s.repo.Insert(ctx, order); err != nil {
			return fmt.Errorf("failed to insert laundry: %w", err)
		}

		if err := s.paymentRepo.Insert(ctx, payment); err != nil {
			return fmt.Errorf("failed to insert laundry payment: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create laundry")

		return res, err
	}

	event.PublishAsync(ctx, s.publisher,
		event.New(event.TypeLaundryCreated, order.ID, actor.Actor()),
		event.New(event.TypePaymentCreated, payment.ID, actor.Actor()),
	)

	return s.Get(ctx, order.ID)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetLaundryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count laundry")

		return res, fmt.Errorf("failed to count laundry: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get laundry")

		return res, fmt.Errorf("failed to get laundry: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.LaundryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	order, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get laundry")

		return res, fmt.Errorf("failed to get laundry: %w", err)
	}

	if order.ID == constant.Empty {
		return res, ErrLaundryNotFound
	}

	res.FromModel(order)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateLaundryRequest) (res dto.LaundryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.ensureExists(ctx, filter); err != nil {
		return res, err
	}

	if req.GuestID != constant.Empty {
		if err = s.ensureGuest(ctx, req.GuestID); err != nil {
			return res, err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, actor.Actor()), filter); err != nil {
		log.Error().Err(err).Msg("failed to update laundry")

		return res, fmt.Errorf("failed to update laundry: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeLaundryUpdated, id, actor.Actor()))

	return s.Get(ctx, id)
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, actor principal.Principal, id string, req dto.UpdateLaundryStatusRequest) (dto.LaundryResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.UpdateStatus")
	defer scope.End()

	return s.Update(ctx, actor, id, dto.UpdateLaundryRequest{Status: req.Status})
}

// Delete removes the order. Its payment survives with the guest attribution and no laundry reference.
func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".laundry.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.ensureExists(ctx, filter); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete laundry")

		return fmt.Errorf("failed to delete laundry: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeLaundryDeleted, id, actor.Actor()))

	return nil
}

func (s *serviceImpl) ensureExists(ctx context.Context, filter gDto.FilterGroup) error {
	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check laundry existence")

		return fmt.Errorf("failed to check laundry existence: %w", err)
	}

	if !exist {
		return ErrLaundryNotFound
	}

	return nil
}

func (s *serviceImpl) ensureGuest(ctx context.Context, id string) error {
	exist, err := s.guestRepo.Exist(ctx, shared.FilterByID(id, guestModel.FieldID, guestModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to check guest: %w", err)
	}

	if !exist {
		return ErrGuestNotFound
	}

	return nil
}
