package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	bookingModel "guesthouse/internal/domains/booking/model"
	bookingRepo "guesthouse/internal/domains/booking/repository"
	guestModel "guesthouse/internal/domains/guest/model"
	guestRepo "guesthouse/internal/domains/guest/repository"
	laundryModel "guesthouse/internal/domains/laundry/model"
	laundryRepo "guesthouse/internal/domains/laundry/repository"
	"guesthouse/internal/domains/payment/model"
	"guesthouse/internal/domains/payment/model/dto"
	"guesthouse/internal/domains/payment/repository"
	"guesthouse/shared"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound   = failure.NotFound("payment not found")
	ErrBookingNotFound   = failure.NotFound("booking not found")
	ErrLaundryNotFound   = failure.NotFound("laundry not found")
	ErrGuestNotFound     = failure.NotFound("guest not found")
	ErrBookingPaid       = failure.Conflict("Payment already exists for this booking")
	ErrLaundryPaid       = failure.Conflict("Payment already exists for this laundry")
	ErrBookingRequired   = failure.BadRequestFromString("bookingId is required for ROOM payments")
	ErrLaundryRequired   = failure.BadRequestFromString("laundryId is required for LAUNDRY payments")
	ErrGuestRequired     = failure.BadRequestFromString("guestId is required for non-room payments")
	ErrAmountRequired    = failure.BadRequestFromString("Amount is required for non-room payments")
	ErrInvalidAmount     = failure.BadRequestFromString("Invalid amount")
	ErrInvalidStatus     = failure.BadRequestFromString("status must be one of paid, unpaid, refunded, failed")
	ErrInvalidService    = failure.BadRequestFromString("serviceType must be one of ROOM, LAUNDRY, DINING, OTHER")
	ErrConflictingSource = failure.BadRequestFromString("a payment charges either a booking or a laundry order, not both")
)

type Payment interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreatePaymentRequest) (dto.PaymentResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPaymentsResponse, error)
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdatePaymentRequest) (dto.PaymentResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

type serviceImpl struct {
	repo        repository.Payment
	bookingRepo bookingRepo.Booking
	laundryRepo laundryRepo.Laundry
	guestRepo   guestRepo.Guest
	tx          postgres.Transactor
	publisher   event.Publisher
	cfg         *config.Config
	otel        otel.Otel
}

func New(
	repo repository.Payment,
	bookingRepo bookingRepo.Booking,
	laundryRepo laundryRepo.Laundry,
	guestRepo guestRepo.Guest,
	tx postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		laundryRepo: laundryRepo,
		guestRepo:   guestRepo,
		tx:          tx,
		publisher:   publisher,
		cfg:         cfg,
		otel:        otel,
	}
}

// NormalizeStatus lower-cases a status and checks it against the canonical set. Empty means paid.
func NormalizeStatus(status string) (string, error) {
	if status == constant.Empty {
		return model.StatusPaid, nil
	}

	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(model.Statuses, status) {
		return constant.Empty, ErrInvalidStatus
	}

	return status, nil
}

// ResolveServiceType applies the default (ROOM with a booking, OTHER otherwise) and upper-cases.
func ResolveServiceType(serviceType, bookingID string) (string, error) {
	if serviceType == constant.Empty {
		if bookingID != constant.Empty {
			return model.ServiceRoom, nil
		}

		return model.ServiceOther, nil
	}

	serviceType = strings.ToUpper(strings.TrimSpace(serviceType))
	if !slices.Contains(model.ServiceTypes, serviceType) {
		return constant.Empty, ErrInvalidService
	}

	return serviceType, nil
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreatePaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	serviceType, err := ResolveServiceType(req.ServiceType, req.BookingID)
	if err != nil {
		return res, err
	}

	status, err := NormalizeStatus(req.Status)
	if err != nil {
		return res, err
	}

	if req.BookingID != constant.Empty && req.LaundryID != constant.Empty {
		return res, ErrConflictingSource
	}

	charge := dto.Charge{
		ServiceType: serviceType,
		Method:      req.Method,
		Status:      status,
		Description: req.Description,
	}

	var payment model.Payment

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error

		switch serviceType {
		case model.ServiceRoom:
			charge, err = s.roomCharge(ctx, charge, req)
		case model.ServiceLaundry:
			charge, err = s.laundryCharge(ctx, charge, req)
		default:
			charge, err = s.guestCharge(ctx, charge, req)
		}

		if err != nil {
			return err
		}

		payment = charge.ToModel(actor.Actor())

		return s.repo.Insert(ctx, payment) //nolint:wrapcheck
	})
	if err != nil {
		return res, s.translate(err, serviceType, "failed to create payment")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypePaymentCreated, payment.ID, actor.Actor()))

	return s.Get(ctx, payment.ID)
}

// roomCharge bills a booking: nights times the room rate unless an amount is given.
func (s *serviceImpl) roomCharge(ctx context.Context, charge dto.Charge, req dto.CreatePaymentRequest) (dto.Charge, error) {
	if req.BookingID == constant.Empty {
		return charge, ErrBookingRequired
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(req.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		return charge, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return charge, ErrBookingNotFound
	}

	if booking.PaymentID != nil {
		return charge, ErrBookingPaid
	}

	charge.BookingID = booking.ID
	charge.GuestID = booking.GuestID
	charge.Amount = booking.RoomPrice.Mul(decimal.NewFromInt(int64(calendar.NightCount(booking.CheckIn, booking.CheckOut))))

	if req.Amount != nil {
		charge.Amount = *req.Amount
	}

	if charge.Amount.IsNegative() {
		return charge, ErrInvalidAmount
	}

	return charge, nil
}

// laundryCharge bills a laundry order at its flat price unless an amount is given.
func (s *serviceImpl) laundryCharge(ctx context.Context, charge dto.Charge, req dto.CreatePaymentRequest) (dto.Charge, error) {
	if req.LaundryID == constant.Empty {
		return charge, ErrLaundryRequired
	}

	laundry, err := s.laundryRepo.Get(ctx, shared.FilterByID(req.LaundryID, laundryModel.FieldID, laundryModel.TableName))
	if err != nil {
		return charge, fmt.Errorf("failed to get laundry: %w", err)
	}

	if laundry.ID == constant.Empty {
		return charge, ErrLaundryNotFound
	}

	if laundry.PaymentID != nil {
		return charge, ErrLaundryPaid
	}

	charge.LaundryID = laundry.ID
	charge.GuestID = laundry.GuestID
	charge.Amount = laundry.Price

	if req.Amount != nil {
		charge.Amount = *req.Amount
	}

	if charge.Amount.IsNegative() {
		return charge, ErrInvalidAmount
	}

	return charge, nil
}

// guestCharge bills a guest directly. These charges repeat freely, so there is no duplicate guard.
func (s *serviceImpl) guestCharge(ctx context.Context, charge dto.Charge, req dto.CreatePaymentRequest) (dto.Charge, error) {
	if req.Amount == nil || !req.Amount.IsPositive() {
		return charge, ErrAmountRequired
	}

	if req.GuestID == constant.Empty {
		return charge, ErrGuestRequired
	}

	exist, err := s.guestRepo.Exist(ctx, shared.FilterByID(req.GuestID, guestModel.FieldID, guestModel.TableName))
	if err != nil {
		return charge, fmt.Errorf("failed to check guest: %w", err)
	}

	if !exist {
		return charge, ErrGuestNotFound
	}

	charge.GuestID = req.GuestID
	charge.Amount = *req.Amount

	return charge, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return res, fmt.Errorf("failed to get payments: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	payment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return res, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return res, ErrPaymentNotFound
	}

	res.FromModel(payment)

	return res, nil
}

// Update patches the stored payment as-is. The amount is not re-derived and the source guard is not re-run.
func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdatePaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check payment existence")

		return res, fmt.Errorf("failed to check payment existence: %w", err)
	}

	if !exist {
		return res, ErrPaymentNotFound
	}

	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.Actor(),
	}

	if req.Amount != nil {
		fields[model.FieldAmount] = *req.Amount
	}

	if req.Method != constant.Empty {
		fields[model.FieldMethod] = req.Method
	}

	if req.Status != constant.Empty {
		status, err := NormalizeStatus(req.Status)
		if err != nil {
			return res, err
		}

		fields[model.FieldStatus] = status
	}

	if req.Description != nil {
		fields[model.FieldDescription] = nullable(*req.Description)
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update payment")

		return res, fmt.Errorf("failed to update payment: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypePaymentUpdated, id, actor.Actor()))

	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if payment exists")

		return fmt.Errorf("failed to check if payment exists: %w", err)
	}

	if !exist {
		return ErrPaymentNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete payment")

		return fmt.Errorf("failed to delete payment: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypePaymentDeleted, id, actor.Actor()))

	return nil
}

// translate maps a unique violation raised by a concurrent payment onto the per-source conflict.
func (s *serviceImpl) translate(err error, serviceType, msg string) error {
	if failure.IsConflict(err) {
		switch serviceType {
		case model.ServiceRoom:
			return ErrBookingPaid
		case model.ServiceLaundry:
			return ErrLaundryPaid
		}

		return err
	}

	if failure.GetCode(err) != http.StatusInternalServerError {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}

// nullable stores an empty description as NULL.
func nullable(value string) *string {
	if value == constant.Empty {
		return nil
	}

	return &value
}
