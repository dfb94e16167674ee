package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Attendance=MockAttendanceService

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/infras/postgres"
	"guesthouse/internal/domains/attendance/model"
	"guesthouse/internal/domains/attendance/model/dto"
	"guesthouse/internal/domains/attendance/repository"
	staffModel "guesthouse/internal/domains/staff/model"
	staffRepo "guesthouse/internal/domains/staff/repository"
	"guesthouse/shared"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

// Badge prefixes are stripped in this order, so ATT:STAFF-X reads as X.
var codePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^ATT[:-]`),
	regexp.MustCompile(`(?i)^STAFF[:-]`),
}

var (
	ErrEmptyCode          = failure.BadRequestFromString("code is required")
	ErrStaffNotFound      = failure.NotFound("Staff not found")
	ErrAttendanceNotFound = failure.NotFound("attendance not found")
	ErrDuplicateScan      = failure.Conflict("Duplicate attendance for day, please retry")
	ErrDuplicateDay       = failure.Conflict("Attendance already recorded for this day")
	ErrInvalidRange       = failure.BadRequestFromString("checkOut must be after checkIn")
	ErrInvalidDate        = failure.BadRequestFromString("invalid date")
	ErrInvalidCheckIn     = failure.BadRequestFromString("invalid checkIn")
	ErrInvalidCheckOut    = failure.BadRequestFromString("invalid checkOut")
)

type Attendance interface {
	Scan(ctx context.Context, actor principal.Principal, code string) (dto.ScanResponse, error)
	Create(ctx context.Context, actor principal.Principal, req dto.CreateAttendanceRequest) (dto.AttendanceResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, query dto.AttendanceQuery) (dto.GetAttendanceResponse, error)
	Get(ctx context.Context, id string) (dto.AttendanceResponse, error)
	Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateAttendanceRequest) (dto.AttendanceResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

type serviceImpl struct {
	repo      repository.Attendance
	staffRepo staffRepo.Staff
	tx        postgres.Transactor
	publisher event.Publisher
	clock     calendar.Clock
	offset    int
	otel      otel.Otel
}

func New(repo repository.Attendance, staffRepo staffRepo.Staff, tx postgres.Transactor, publisher event.Publisher,
	cfg *config.Config, clock calendar.Clock, otel otel.Otel,
) Attendance {
	return &serviceImpl{
		repo:      repo,
		staffRepo: staffRepo,
		tx:        tx,
		publisher: publisher,
		clock:     clock,
		offset:    cfg.App.UTCOffsetMinutes,
		otel:      otel,
	}
}

// NormalizeCode trims a scanned badge and drops an ATT: or STAFF: style prefix.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)

	for _, prefix := range codePrefixes {
		code = prefix.ReplaceAllString(code, "")
	}

	return strings.TrimSpace(code)
}

// Scan toggles the staff member's attendance for the current local day:
// the first scan checks in, the second checks out, later scans change nothing.
func (s *serviceImpl) Scan(ctx context.Context, actor principal.Principal, code string) (res dto.ScanResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.Scan")
	defer scope.End()
	defer scope.TraceIfError(err)

	code = NormalizeCode(code)
	if code == constant.Empty {
		return res, ErrEmptyCode
	}

	staff, err := s.staffRepo.Get(ctx, shared.FilterByID(code, staffModel.FieldBarcode, staffModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff by barcode")

		return res, fmt.Errorf("failed to get staff by barcode: %w", err)
	}

	if staff.ID == constant.Empty {
		return res, ErrStaffNotFound
	}

	now := s.clock.Now().UTC()
	window := calendar.LocalDayWindow(now, s.offset)

	var (
		row    model.Attendance
		action string
	)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.Get(ctx, dayFilter(staff.ID, window))
		if err != nil {
			return fmt.Errorf("failed to get attendance for day: %w", err)
		}

		row = found

		switch {
		case row.ID == constant.Empty:
			row = dto.NewAttendance(actor.Actor(), staff.ID, window.DayStart, now, nil)
			action = model.ActionCheckIn

			if err := s.repo.Insert(ctx, row); err != nil {
				return fmt.Errorf("failed to insert attendance: %w", err)
			}
		case row.CheckedOut():
			action = model.ActionAlreadyCheckedOut
		default:
			action = model.ActionCheckOut
			row.CheckOut = &now

			fields := shared.TransformFields(dto.AttendanceFields{CheckOut: &now}, actor.Actor())
			if err := s.repo.Update(ctx, fields, shared.FilterByID(row.ID, model.FieldID, model.TableName)); err != nil {
				return fmt.Errorf("failed to set check out: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if failure.IsUniqueViolation(err) {
			return res, ErrDuplicateScan
		}

		return res, s.translate(err, "failed to record scan")
	}

	row.StaffName, row.StaffRole, row.StaffBarcode = staff.Name, staff.Role, staff.Barcode

	res.Action = action
	res.Attendance.FromModel(row)
	res.Staff = res.Attendance.Staff
	res.Day = dto.ScanDay{Key: window.DayKey, Start: window.DayStart, End: window.DayEnd}

	log.Info().Str("staff_id", staff.ID).Str("action", action).Str("day", window.DayKey).Msg("attendance scan")

	if action != model.ActionAlreadyCheckedOut {
		event.PublishAsync(ctx, s.publisher, event.New(event.TypeAttendanceScan, row.ID, actor.Actor()))
	}

	return res, nil
}

func dayFilter(staffID string, window calendar.DayWindow) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldStaffID, Operator: gDto.FilterOperatorEq, Value: staffID, Table: model.TableName},
			gDto.Filter{
				Field: model.FieldDate, ArgName: model.ArgDayStart, Operator: gDto.FilterOperatorGreaterEq,
				Value: window.DayStart, Table: model.TableName,
			},
			gDto.Filter{
				Field: model.FieldDate, ArgName: model.ArgDayEnd, Operator: gDto.FilterOperatorLess,
				Value: window.DayEnd, Table: model.TableName,
			},
		},
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor principal.Principal, req dto.CreateAttendanceRequest) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	window, err := calendar.ParseLocalDay(req.Date, s.offset)
	if err != nil {
		return res, ErrInvalidDate
	}

	checkIn, err := calendar.ParseInstant(req.CheckIn, s.offset)
	if err != nil {
		return res, ErrInvalidCheckIn
	}

	checkOut, err := s.optionalInstant(req.CheckOut)
	if err != nil {
		return res, err
	}

	if checkOut != nil && !checkOut.After(checkIn) {
		return res, ErrInvalidRange
	}

	staffID := req.StaffID

	exist, err := s.staffRepo.Exist(ctx, shared.FilterByID(staffID, staffModel.FieldID, staffModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check staff existence")

		return res, fmt.Errorf("failed to check staff existence: %w", err)
	}

	if !exist {
		return res, ErrStaffNotFound
	}

	row := dto.NewAttendance(actor.Actor(), staffID, window.DayStart, checkIn, checkOut)

	if err = s.repo.Insert(ctx, row); err != nil {
		if failure.IsUniqueViolation(err) {
			return res, ErrDuplicateDay
		}

		return res, s.translate(err, "failed to create attendance")
	}

	return s.Get(ctx, row.ID)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, query dto.AttendanceQuery) (res dto.GetAttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter, err := s.listFilter(query)
	if err != nil {
		return res, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count attendance")

		return res, fmt.Errorf("failed to count attendance: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendance")

		return res, fmt.Errorf("failed to get attendance: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// listFilter turns the query into filters. From and To are inclusive local days.
func (s *serviceImpl) listFilter(query dto.AttendanceQuery) (gDto.FilterGroup, error) {
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if query.StaffID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldStaffID, Operator: gDto.FilterOperatorEq, Value: query.StaffID, Table: model.TableName,
		})
	}

	if query.From != constant.Empty {
		window, err := calendar.ParseLocalDay(query.From, s.offset)
		if err != nil {
			return filter, failure.BadRequestFromString("invalid from")
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldDate, ArgName: model.ArgDayStart, Operator: gDto.FilterOperatorGreaterEq,
			Value: window.DayStart, Table: model.TableName,
		})
	}

	if query.To != constant.Empty {
		window, err := calendar.ParseLocalDay(query.To, s.offset)
		if err != nil {
			return filter, failure.BadRequestFromString("invalid to")
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldDate, ArgName: model.ArgDayEnd, Operator: gDto.FilterOperatorLess,
			Value: window.DayEnd, Table: model.TableName,
		})
	}

	return filter, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	row, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendance")

		return res, fmt.Errorf("failed to get attendance: %w", err)
	}

	if row.ID == constant.Empty {
		return res, ErrAttendanceNotFound
	}

	res.FromModel(row)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor principal.Principal, id string, req dto.UpdateAttendanceRequest) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	row, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendance")

		return res, fmt.Errorf("failed to get attendance: %w", err)
	}

	if row.ID == constant.Empty {
		return res, ErrAttendanceNotFound
	}

	var fields dto.AttendanceFields

	if req.CheckIn != constant.Empty {
		if fields.CheckIn, err = calendar.ParseInstant(req.CheckIn, s.offset); err != nil {
			return res, ErrInvalidCheckIn
		}

		row.CheckIn = fields.CheckIn
	}

	if fields.CheckOut, err = s.optionalInstant(req.CheckOut); err != nil {
		return res, err
	}

	if fields.CheckOut != nil {
		row.CheckOut = fields.CheckOut
	}

	if row.CheckOut != nil && !row.CheckOut.After(row.CheckIn) {
		return res, ErrInvalidRange
	}

	if err = s.repo.Update(ctx, shared.TransformFields(fields, actor.Actor()), filter); err != nil {
		return res, s.translate(err, "failed to update attendance")
	}

	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, actor principal.Principal, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".attendance.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if attendance exists")

		return fmt.Errorf("failed to check if attendance exists: %w", err)
	}

	if !exist {
		return ErrAttendanceNotFound
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Str("actor", actor.Actor()).Msg("failed to delete attendance")

		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	return nil
}

func (s *serviceImpl) optionalInstant(value string) (*time.Time, error) {
	if value == constant.Empty {
		return nil, nil //nolint:nilnil
	}

	instant, err := calendar.ParseInstant(value, s.offset)
	if err != nil {
		return nil, ErrInvalidCheckOut
	}

	return &instant, nil
}

func (s *serviceImpl) translate(err error, msg string) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}
