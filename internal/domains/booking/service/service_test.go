package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	txMocks "guesthouse/infras/postgres/mocks"
	bookingMocks "guesthouse/internal/domains/booking/mocks"
	"guesthouse/internal/domains/booking/model"
	"guesthouse/internal/domains/booking/model/dto"
	"guesthouse/internal/domains/booking/repository"
	"guesthouse/internal/domains/booking/service"
	guestMocks "guesthouse/internal/domains/guest/mocks"
	roomMocks "guesthouse/internal/domains/room/mocks"
	roomModel "guesthouse/internal/domains/room/model"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var actor = principal.Principal{UserID: "user-1", Role: "reception", Source: principal.SourceToken}

type deps struct {
	repo  *bookingMocks.MockBooking
	guest *guestMocks.MockGuest
	room  *roomMocks.MockRoom
	tx    *txMocks.Transactor
}

func newService(t *testing.T) (service.Booking, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:  bookingMocks.NewMockBooking(ctrl),
		guest: guestMocks.NewMockGuest(ctrl),
		room:  roomMocks.NewMockRoom(ctrl),
		tx:    txMocks.NewTransactor(),
	}

	cfg := &config.Config{}
	cfg.App.UTCOffsetMinutes = 180

	publisher := event.NewPublisher(cfg, nil, mocks.NewOtel())

	return service.New(d.repo, d.guest, d.room, d.tx, publisher, cfg, mocks.NewOtel()), d
}

func TestParseStay(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		wantErr  bool
	}{
		{name: "instants", checkIn: "2025-03-01T12:00:00Z", checkOut: "2025-03-03T10:00:00Z"},
		{name: "calendar days", checkIn: "2025-03-01", checkOut: "2025-03-02"},
		{name: "same instant", checkIn: "2025-03-01T12:00:00Z", checkOut: "2025-03-01T12:00:00Z", wantErr: true},
		{name: "inverted", checkIn: "2025-03-05", checkOut: "2025-03-01", wantErr: true},
		{name: "garbage", checkIn: "tomorrow", checkOut: "2025-03-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := service.ParseStay(tt.checkIn, tt.checkOut, 180)
			if tt.wantErr {
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.True(t, in.Before(out))
		})
	}
}

func TestBookingService_Create(t *testing.T) {
	req := dto.CreateBookingRequest{
		GuestID:  "guest-1",
		RoomID:   "room-1",
		CheckIn:  "2025-03-01T12:00:00Z",
		CheckOut: "2025-03-03T10:00:00Z",
	}

	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "inverted range is rejected before any lookup",
			req: dto.CreateBookingRequest{
				GuestID: "guest-1", RoomID: "room-1",
				CheckIn: "2025-03-03T10:00:00Z", CheckOut: "2025-03-01T12:00:00Z",
			},
			setupMock: func(deps) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown guest",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "unknown room",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.room.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "overlapping stay",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.room.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.repo.EXPECT().HasOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any(), "").Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "exclusion constraint on insert",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.room.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.repo.EXPECT().HasOverlap(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
				d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("record overlaps an existing one"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "repository error",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "created with joined room",
			req:  req,
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.room.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				d.repo.EXPECT().HasOverlap(gomock.Any(), "room-1", gomock.Any(), gomock.Any(), "").Return(false, nil)

				var stored model.Booking
				d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) error {
					assert.Equal(t, actor.UserID, b.CreatedBy)
					assert.True(t, b.CheckIn.Before(b.CheckOut))
					stored = b

					return nil
				})
				d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (model.Booking, error) {
					stored.RoomNumber = "101"
					stored.RoomPrice = decimal.NewFromInt(1000)

					return stored, nil
				})
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			res, err := svc.Create(context.Background(), actor, tt.req)
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "101", res.Room.Number)
			assert.Equal(t, 2, res.Nights)
			assert.True(t, decimal.NewFromInt(2000).Equal(res.AmountDue))
			assert.Nil(t, res.Payment)
			assert.Equal(t, 1, d.tx.Calls)
		})
	}
}

func TestBookingService_Update(t *testing.T) {
	current := model.Booking{
		ID:       "b-1",
		GuestID:  "guest-1",
		RoomID:   "room-1",
		CheckIn:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}

	t.Run("not found", func(t *testing.T) {
		svc, d := newService(t)
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := svc.Update(context.Background(), actor, "b-1", dto.UpdateBookingRequest{})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("patched range must stay ordered", func(t *testing.T) {
		svc, d := newService(t)
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

		_, err := svc.Update(context.Background(), actor, "b-1", dto.UpdateBookingRequest{CheckOut: "2025-02-28T10:00:00Z"})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("moving room re-checks overlap excluding itself", func(t *testing.T) {
		svc, d := newService(t)
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		d.room.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().HasOverlap(gomock.Any(), "room-2", current.CheckIn, current.CheckOut, "b-1").Return(true, nil)

		_, err := svc.Update(context.Background(), actor, "b-1", dto.UpdateBookingRequest{RoomID: "room-2"})
		assert.ErrorIs(t, err, service.ErrRoomUnavailable)
	})

	t.Run("extends stay", func(t *testing.T) {
		svc, d := newService(t)
		newCheckOut := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		d.repo.EXPECT().HasOverlap(gomock.Any(), "room-1", current.CheckIn, newCheckOut, "b-1").Return(false, nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, newCheckOut, fields[model.FieldCheckOut])
			assert.NotContains(t, fields, model.FieldRoomID)
			assert.NotContains(t, fields, model.FieldCheckIn)

			return nil
		})

		updated := current
		updated.CheckOut = newCheckOut
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil)

		res, err := svc.Update(context.Background(), actor, "b-1", dto.UpdateBookingRequest{CheckOut: "2025-03-04T10:00:00Z"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Nights)
	})
}

func TestBookingService_ListUnpaid(t *testing.T) {
	svc, d := newService(t)

	paid := "unpaid"
	paymentID := "p-1"

	d.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		where, _ := filter.GetWhereClause()
		assert.Contains(t, where, model.UnpaidCondition)
		assert.Contains(t, where, "bookings.room_id = :room_id")

		return 1, nil
	})
	d.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{
		{ID: "b-1", PaymentID: &paymentID, PaymentStatus: &paid},
	}, nil)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Operator: gDto.FilterOperatorEq, Value: "room-1", Table: model.TableName},
		},
	}

	res, err := svc.ListUnpaid(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, filter)
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "unpaid", res.Bookings[0].Payment.Status)
}

func TestBookingService_ListUnpaid_CountFails(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("connection reset"))

	_, err := svc.ListUnpaid(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestBookingService_FindAvailable(t *testing.T) {
	svc, d := newService(t)

	_, err := svc.FindAvailable(context.Background(), "2025-03-05", "2025-03-01")
	assert.ErrorIs(t, err, service.ErrInvalidRange)

	d.room.EXPECT().
		GetAvailable(gomock.Any(), time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)).
		Return([]roomModel.Room{{ID: "room-1", Number: "101"}}, nil)

	rooms, err := svc.FindAvailable(context.Background(), "2025-03-01", "2025-03-02")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].Number)
}

func TestBookingService_Delete(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), actor, "b-1"), service.ErrBookingNotFound)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), actor, "b-1"))
}

// memoryBookings is an in-memory store whose transactor serializes units of work,
// standing in for a SERIALIZABLE database.
type memoryBookings struct {
	repository.Booking
	mu       sync.Mutex
	bookings map[string]model.Booking
}

func (m *memoryBookings) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(ctx)
}

func (m *memoryBookings) HasOverlap(_ context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	for _, b := range m.bookings {
		if b.ID != excludeID && b.RoomID == roomID && b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true, nil
		}
	}

	return false, nil
}

func (m *memoryBookings) Insert(_ context.Context, b model.Booking) error {
	m.bookings[b.ID] = b

	return nil
}

func (m *memoryBookings) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, _ := filter.Filters[0].(gDto.Filter).Value.(string)

	return m.bookings[id], nil
}

func TestBookingService_ConcurrentCreateAllowsOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	guests := guestMocks.NewMockGuest(ctrl)
	rooms := roomMocks.NewMockRoom(ctrl)
	guests.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	store := &memoryBookings{bookings: map[string]model.Booking{}}
	cfg := &config.Config{}
	svc := service.New(store, guests, rooms, store, event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, mocks.NewOtel())

	const attempts = 10

	var (
		wg        sync.WaitGroup
		successes int
		conflicts int
		mu        sync.Mutex
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Create(context.Background(), actor, dto.CreateBookingRequest{
				GuestID: "guest-1", RoomID: "room-1",
				CheckIn: "2025-03-01T12:00:00Z", CheckOut: "2025-03-02T10:00:00Z",
			})

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				successes++
			} else if errors.Is(err, service.ErrRoomUnavailable) {
				conflicts++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, store.bookings, 1)
}
