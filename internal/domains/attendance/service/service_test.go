package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	txMocks "guesthouse/infras/postgres/mocks"
	attendanceMocks "guesthouse/internal/domains/attendance/mocks"
	"guesthouse/internal/domains/attendance/model"
	"guesthouse/internal/domains/attendance/model/dto"
	"guesthouse/internal/domains/attendance/repository"
	"guesthouse/internal/domains/attendance/service"
	staffMocks "guesthouse/internal/domains/staff/mocks"
	staffModel "guesthouse/internal/domains/staff/model"
	"guesthouse/shared/calendar"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	scanner = principal.Scanner("gate-1")
	admin   = principal.Principal{UserID: "admin-1", Role: "admin", Source: principal.SourceToken}
	badge   = staffModel.Staff{ID: "staff-1", Name: "Neema", Role: "security", Barcode: "EMP-123456"}
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.UTCOffsetMinutes = 180

	return cfg
}

// memoryAttendance keeps rows in a map and matches the day filter the service builds.
type memoryAttendance struct {
	repository.Attendance
	rows map[string]model.Attendance
}

func (m *memoryAttendance) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Attendance, error) {
	var (
		staffID    string
		start, end time.Time
	)

	for _, f := range filter.Filters {
		flt := f.(gDto.Filter)

		switch flt.Operator {
		case gDto.FilterOperatorEq:
			staffID, _ = flt.Value.(string)
		case gDto.FilterOperatorGreaterEq:
			start, _ = flt.Value.(time.Time)
		case gDto.FilterOperatorLess:
			end, _ = flt.Value.(time.Time)
		}
	}

	for _, row := range m.rows {
		if row.StaffID == staffID && !row.Date.Before(start) && row.Date.Before(end) {
			return row, nil
		}
	}

	return model.Attendance{}, nil
}

func (m *memoryAttendance) Insert(_ context.Context, row model.Attendance) error {
	m.rows[row.ID] = row

	return nil
}

func (m *memoryAttendance) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	id, _ := filter.Filters[0].(gDto.Filter).Value.(string)
	row := m.rows[id]

	if out, ok := fields[model.FieldCheckOut].(*time.Time); ok {
		row.CheckOut = out
	}

	m.rows[id] = row

	return nil
}

type movingClock struct {
	now time.Time
}

func (c *movingClock) Now() time.Time {
	return c.now
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"  EMP-123456 ":     "EMP-123456",
		"ATT:EMP-123456":    "EMP-123456",
		"att-EMP-123456":    "EMP-123456",
		"STAFF:EMP-123456":  "EMP-123456",
		"staff- EMP-123456": "EMP-123456",
		"   ":               "",
		"ATT:":              "",
		"ATT:STAFF-EMP-77":  "EMP-77",
		"STAFF:ATT-EMP-77":  "ATT-EMP-77",
	}

	for in, want := range tests {
		assert.Equal(t, want, service.NormalizeCode(in), in)
	}
}

func TestAttendanceService_ScanDayCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	staff := staffMocks.NewMockStaff(ctrl)
	staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(badge, nil).Times(4)

	store := &memoryAttendance{rows: map[string]model.Attendance{}}
	clock := &movingClock{now: time.Date(2025, 3, 1, 5, 30, 0, 0, time.UTC)} // 08:30 local
	cfg := newConfig()
	svc := service.New(store, staff, txMocks.NewTransactor(), event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, clock, mocks.NewOtel())

	first, err := svc.Scan(context.Background(), scanner, "ATT:EMP-123456")
	require.NoError(t, err)
	assert.Equal(t, model.ActionCheckIn, first.Action)
	assert.Equal(t, "2025-03-01", first.Day.Key)
	assert.Equal(t, time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC), first.Attendance.Date)
	assert.Equal(t, "Neema", first.Staff.Name)

	clock.now = time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)

	second, err := svc.Scan(context.Background(), scanner, "EMP-123456")
	require.NoError(t, err)
	assert.Equal(t, model.ActionCheckOut, second.Action)
	require.NotNil(t, second.Attendance.CheckOut)
	assert.Equal(t, clock.now, *second.Attendance.CheckOut)

	clock.now = time.Date(2025, 3, 1, 20, 59, 0, 0, time.UTC) // 23:59 local, same day

	third, err := svc.Scan(context.Background(), scanner, "EMP-123456")
	require.NoError(t, err)
	assert.Equal(t, model.ActionAlreadyCheckedOut, third.Action)
	assert.Equal(t, second.Attendance.CheckOut, third.Attendance.CheckOut)
	assert.Len(t, store.rows, 1)

	clock.now = time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC) // midnight local, next day

	next, err := svc.Scan(context.Background(), scanner, "EMP-123456")
	require.NoError(t, err)
	assert.Equal(t, model.ActionCheckIn, next.Action)
	assert.Equal(t, "2025-03-02", next.Day.Key)
	assert.Len(t, store.rows, 2)
}

func TestAttendanceService_ScanErrors(t *testing.T) {
	fixed := calendar.NewFixed(time.Date(2025, 3, 1, 5, 30, 0, 0, time.UTC))

	tests := []struct {
		name      string
		code      string
		setupMock func(repo *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff)
		wantErr   error
	}{
		{
			name:      "empty after prefix strip",
			code:      " STAFF: ",
			setupMock: func(_ *attendanceMocks.MockAttendance, _ *staffMocks.MockStaff) {},
			wantErr:   service.ErrEmptyCode,
		},
		{
			name: "unknown badge",
			code: "EMP-000000",
			setupMock: func(_ *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff) {
				staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(staffModel.Staff{}, nil)
			},
			wantErr: service.ErrStaffNotFound,
		},
		{
			name: "concurrent first scan",
			code: "EMP-123456",
			setupMock: func(repo *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff) {
				staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(badge, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{}, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.FromDatabase(&pq.Error{Code: "23505"}))
			},
			wantErr: service.ErrDuplicateScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := attendanceMocks.NewMockAttendance(ctrl)
			staff := staffMocks.NewMockStaff(ctrl)
			tt.setupMock(repo, staff)

			cfg := newConfig()
			svc := service.New(repo, staff, txMocks.NewTransactor(), event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, fixed, mocks.NewOtel())

			_, err := svc.Scan(context.Background(), scanner, tt.code)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAttendanceService_Create(t *testing.T) {
	staffID := "8d0c7d1e-6f0a-4c55-9a43-2c1b8f3f9a10"

	tests := []struct {
		name      string
		req       dto.CreateAttendanceRequest
		setupMock func(repo *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff)
		wantCode  int
	}{
		{
			name:      "check out before check in",
			req:       dto.CreateAttendanceRequest{Date: "2025-03-01", CheckIn: "2025-03-01T09:00:00+03:00", CheckOut: "2025-03-01T08:00:00+03:00"},
			setupMock: func(_ *attendanceMocks.MockAttendance, _ *staffMocks.MockStaff) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "bad date",
			req:       dto.CreateAttendanceRequest{Date: "yesterday", CheckIn: "2025-03-01T09:00:00+03:00"},
			setupMock: func(_ *attendanceMocks.MockAttendance, _ *staffMocks.MockStaff) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown staff",
			req:  dto.CreateAttendanceRequest{Date: "2025-03-01", CheckIn: "2025-03-01T09:00:00+03:00"},
			setupMock: func(_ *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff) {
				staff.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "day already recorded",
			req:  dto.CreateAttendanceRequest{Date: "2025-03-01", CheckIn: "2025-03-01T09:00:00+03:00"},
			setupMock: func(repo *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff) {
				staff.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.FromDatabase(&pq.Error{Code: "23505"}))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "stores the local day start",
			req:  dto.CreateAttendanceRequest{Date: "2025-03-01", CheckIn: "2025-03-01T09:00:00+03:00", CheckOut: "2025-03-01T17:00:00+03:00"},
			setupMock: func(repo *attendanceMocks.MockAttendance, staff *staffMocks.MockStaff) {
				staff.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, row model.Attendance) error {
					assert.Equal(t, time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC), row.Date)
					assert.Equal(t, time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC), row.CheckIn)

					return nil
				})
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{ID: "att-1", StaffID: staffID}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := attendanceMocks.NewMockAttendance(ctrl)
			staff := staffMocks.NewMockStaff(ctrl)
			tt.setupMock(repo, staff)

			cfg := newConfig()
			svc := service.New(repo, staff, txMocks.NewTransactor(), event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, calendar.NewSystem(), mocks.NewOtel())

			tt.req.StaffID = staffID

			res, err := svc.Create(context.Background(), admin, tt.req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "att-1", res.ID)
		})
	}
}

func TestAttendanceService_GetAllRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := attendanceMocks.NewMockAttendance(ctrl)
	cfg := newConfig()
	svc := service.New(repo, staffMocks.NewMockStaff(ctrl), txMocks.NewTransactor(), event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, calendar.NewSystem(), mocks.NewOtel())

	repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		require.Len(t, filter.Filters, 3)

		from := filter.Filters[1].(gDto.Filter)
		to := filter.Filters[2].(gDto.Filter)
		assert.Equal(t, time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC), from.Value)
		assert.Equal(t, time.Date(2025, 3, 2, 21, 0, 0, 0, time.UTC), to.Value)

		return 0, nil
	})
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.GetAll(context.Background(), gDto.QueryParams{Limit: 10}, dto.AttendanceQuery{StaffID: "staff-1", From: "2025-03-01", To: "2025-03-02"})
	require.NoError(t, err)

	_, err = svc.GetAll(context.Background(), gDto.QueryParams{Limit: 10}, dto.AttendanceQuery{From: "soon"})
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestAttendanceService_UpdateKeepsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := attendanceMocks.NewMockAttendance(ctrl)
	cfg := newConfig()
	svc := service.New(repo, staffMocks.NewMockStaff(ctrl), txMocks.NewTransactor(), event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, calendar.NewSystem(), mocks.NewOtel())

	checkIn := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{ID: "att-1", CheckIn: checkIn}, nil)

	_, err := svc.Update(context.Background(), admin, "att-1", dto.UpdateAttendanceRequest{CheckOut: "2025-03-01T05:00:00Z"})
	require.ErrorIs(t, err, service.ErrInvalidRange)
}
