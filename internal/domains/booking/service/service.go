package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/booking/model"
	"guesthouse/internal/domains/booking/model/dto"
	"guesthouse/internal/domains/booking/repository"
	guestModel "guesthouse/internal/domains/guest/model"
	guestRepo "guesthouse/internal/domains/guest/repository"
	roomModel "guesthouse/internal/domains/room/model"
	roomDto "guesthouse/internal/domains/room/model/dto"
	roomRepo "guesthouse/internal/domains/room/repository"
	"guesthouse/shared"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	ErrRoomUnavailable = failure.Conflict("Room is not available for the selected dates")
	ErrInvalidRange    = failure.BadRequestFromString("checkIn must be before checkOut")
	ErrBookingNotFound = failure.NotFound("booking not found")
	ErrGuestNotFound   = failure.NotFound("guest not found")
	ErrRoomNotFound    = failure.NotFound("room not found")
)

type Booking interface {
	Create(ctx context.Context, actor principal.Principal, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	ListUnpaid(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
	FindAvailable(ctx context.Context, checkIn, checkOut string) ([]roomDto.RoomResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	guestRepo guestRepo.Guest
	roomRepo  roomRepo.Room
	tx        postgres.Transactor
	publisher event.Publisher
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	guestRepo guestRepo.Guest,
	roomRepo roomRepo.Room,
	tx postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		guestRepo: guestRepo,
		roomRepo:  roomRepo,
		tx:        tx,
		publisher: publisher,
		cfg:       cfg,
		otel:      otel,
	}
}

// ParseStay reads a check-in/check-out pair and rejects empty or inverted ranges.
func ParseStay(checkIn, checkOut string, utcOffsetMinutes int) (time.Time, time.Time, error) {
	in, err := calendar.ParseInstant(checkIn, utcOffsetMinutes)
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("invalid checkIn") // nolint:wrapcheck
	}

	out, err := calendar.ParseInstant(checkOut, utcOffsetMinutes)
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("invalid checkOut") // nolint:wrapcheck
	}

	if !in.Before(out) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}

	return in, out, nil
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	checkIn, checkOut, err := ParseStay(req.CheckIn, req.CheckOut, s.cfg.App.UTCOffsetMinutes)
	if err != nil {
		return res, err
	}

	booking := req.ToModel(actor.Actor(), checkIn, checkOut)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ensureGuest(ctx, booking.GuestID); err != nil {
			return err
		}

		if err := s.ensureRoom(ctx, booking.RoomID); err != nil {
			return err
		}

		if err := s.ensureAvailable(ctx, booking.RoomID, checkIn, checkOut, ""); err != nil {
			return err
		}

		return s.repo.Insert(ctx, booking) //nolint:wrapcheck
	})
	if err != nil {
		return res, s.translate(err, "failed to create booking")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeBookingCreated, booking.ID, actor.Actor()))

	return s.Get(ctx, booking.ID)
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	offset := s.cfg.App.UTCOffsetMinutes

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		filter := shared.FilterByID(id, model.FieldID, model.TableName)

		current, err := s.repo.Get(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if current.ID == constant.Empty {
			return ErrBookingNotFound
		}

		fields := map[string]any{}
		checkIn, checkOut := current.CheckIn, current.CheckOut

		if req.CheckIn != constant.Empty {
			if checkIn, err = calendar.ParseInstant(req.CheckIn, offset); err != nil {
				return failure.BadRequestFromString("invalid checkIn") // nolint:wrapcheck
			}

			fields[model.FieldCheckIn] = checkIn
		}

		if req.CheckOut != constant.Empty {
			if checkOut, err = calendar.ParseInstant(req.CheckOut, offset); err != nil {
				return failure.BadRequestFromString("invalid checkOut") // nolint:wrapcheck
			}

			fields[model.FieldCheckOut] = checkOut
		}

		if !checkIn.Before(checkOut) {
			return ErrInvalidRange
		}

		if req.GuestID != constant.Empty && req.GuestID != current.GuestID {
			if err := s.ensureGuest(ctx, req.GuestID); err != nil {
				return err
			}

			fields[model.FieldGuestID] = req.GuestID
		}

		roomID := current.RoomID
		if req.RoomID != constant.Empty && req.RoomID != current.RoomID {
			if err := s.ensureRoom(ctx, req.RoomID); err != nil {
				return err
			}

			roomID = req.RoomID
			fields[model.FieldRoomID] = roomID
		}

		if err := s.ensureAvailable(ctx, roomID, checkIn, checkOut, current.ID); err != nil {
			return err
		}

		fields[constant.FieldModifiedAt] = timezone.Now()
		fields[constant.FieldModifiedBy] = actor.Actor()

		return s.repo.Update(ctx, fields, filter) //nolint:wrapcheck
	})
	if err != nil {
		return res, s.translate(err, "failed to update booking")
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeBookingUpdated, id, actor.Actor()))

	return s.Get(ctx, id)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// ListUnpaid narrows filter to bookings with no payment or a payment that is not paid.
func (s *serviceImpl) ListUnpaid(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ListUnpaid")
	defer scope.End()
	defer scope.TraceIfError(err)

	unpaid := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Operator: gDto.FilterPlainQuery, Value: model.UnpaidCondition},
		},
	}

	if len(filter.Filters) > 0 {
		unpaid.Filters = append(unpaid.Filters, filter)
	}

	return s.GetAll(ctx, req, unpaid)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, ErrBookingNotFound
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if !exist {
		return ErrBookingNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	event.PublishAsync(ctx, s.publisher, event.New(event.TypeBookingDeleted, id, actor.Actor()))

	return nil
}

// FindAvailable lists rooms free for the whole stay, using the same overlap predicate as Create.
func (s *serviceImpl) FindAvailable(ctx context.Context, checkIn, checkOut string) (res []roomDto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.FindAvailable")
	defer scope.End()
	defer scope.TraceIfError(err)

	in, out, err := ParseStay(checkIn, checkOut, s.cfg.App.UTCOffsetMinutes)
	if err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.GetAvailable(ctx, in, out)
	if err != nil {
		log.Error().Err(err).Msg("failed to get available rooms")

		return nil, fmt.Errorf("failed to get available rooms: %w", err)
	}

	res = make([]roomDto.RoomResponse, len(rooms))
	for i, room := range rooms {
		res[i].FromModel(room)
	}

	return res, nil
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

func (s *serviceImpl) ensureRoom(ctx context.Context, id string) error {
	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}

	if !exist {
		return ErrRoomNotFound
	}

	return nil
}

func (s *serviceImpl) ensureAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) error {
	overlap, err := s.repo.HasOverlap(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check room availability: %w", err)
	}

	if overlap {
		return ErrRoomUnavailable
	}

	return nil
}

// translate keeps domain failures intact. A conflict raised by storage (the exclusion
// constraint or an exhausted serialization retry) means another stay took the room.
func (s *serviceImpl) translate(err error, msg string) error {
	if failure.IsConflict(err) {
		return ErrRoomUnavailable
	}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}
