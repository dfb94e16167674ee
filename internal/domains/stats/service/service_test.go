package service_test

import (
	"bytes"
	"context"
	"path"
	"strings"
	"testing"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	"guesthouse/infras/s3"
	s3Mocks "guesthouse/infras/s3/mocks"
	bookingMocks "guesthouse/internal/domains/booking/mocks"
	bookingModel "guesthouse/internal/domains/booking/model"
	guestMocks "guesthouse/internal/domains/guest/mocks"
	inventoryMocks "guesthouse/internal/domains/inventory/mocks"
	laundryMocks "guesthouse/internal/domains/laundry/mocks"
	paymentMocks "guesthouse/internal/domains/payment/mocks"
	roomMocks "guesthouse/internal/domains/room/mocks"
	staffMocks "guesthouse/internal/domains/staff/mocks"
	"guesthouse/internal/domains/stats/model"
	"guesthouse/internal/domains/stats/model/dto"
	"guesthouse/internal/domains/stats/service"
	"guesthouse/shared/cache"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

// 15:00 local at UTC+3, so today's window starts 2026-03-09T21:00Z.
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type deps struct {
	guests    *guestMocks.MockGuest
	bookings  *bookingMocks.MockBooking
	rooms     *roomMocks.MockRoom
	payments  *paymentMocks.MockPayment
	staff     *staffMocks.MockStaff
	inventory *inventoryMocks.MockInventory
	laundry   *laundryMocks.MockLaundry
	s3        *s3Mocks.MockS3
	redis     *miniredis.Miniredis
}

func newService(t *testing.T) (service.Stats, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		guests:    guestMocks.NewMockGuest(ctrl),
		bookings:  bookingMocks.NewMockBooking(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		payments:  paymentMocks.NewMockPayment(ctrl),
		staff:     staffMocks.NewMockStaff(ctrl),
		inventory: inventoryMocks.NewMockInventory(ctrl),
		laundry:   laundryMocks.NewMockLaundry(ctrl),
		s3:        s3Mocks.NewMockS3(ctrl),
		redis:     miniredis.RunT(t),
	}

	redisCache := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: d.redis.Addr()}), mocks.NewOtel())

	cfg := &config.Config{}
	cfg.App.UTCOffsetMinutes = 180
	cfg.Stats.CacheTTL = 30
	cfg.Stats.ExportFolder = "reports"

	src := service.Sources{
		Guests:    d.guests,
		Bookings:  d.bookings,
		Rooms:     d.rooms,
		Payments:  d.payments,
		Staff:     d.staff,
		Inventory: d.inventory,
		Laundry:   d.laundry,
	}

	return service.New(src, cfg, redisCache, d.s3, calendar.NewFixed(now), mocks.NewOtel()), d
}

func where(filter gDto.FilterGroup) (string, map[string]any) {
	return filter.GetWhereClause()
}

func instant(args map[string]any, key string) time.Time {
	at, _ := args[key].(time.Time)

	return at
}

// expectLifetime wires one full lifetime overview: 10 bookings, 3 occupying 6 rooms, two unpaid stays.
func expectLifetime(t *testing.T, d deps) {
	t.Helper()

	d.guests.EXPECT().Count(gomock.Any(), gomock.Any()).Return(12, nil)
	d.rooms.EXPECT().Count(gomock.Any(), gomock.Any()).Return(6, nil)
	d.payments.EXPECT().Count(gomock.Any(), gomock.Any()).Return(8, nil)
	d.staff.EXPECT().Count(gomock.Any(), gomock.Any()).Return(5, nil)
	d.laundry.EXPECT().Count(gomock.Any(), gomock.Any()).Return(4, nil)

	d.inventory.EXPECT().Count(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		if len(filter.Filters) == 0 {
			return 20, nil
		}

		return 2, nil
	})

	d.bookings.EXPECT().Count(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		if len(filter.Filters) == 0 {
			return 10, nil
		}

		_, args := where(filter)
		assert.True(t, now.Equal(instant(args, model.ArgAt)))

		return 3, nil
	})

	d.payments.EXPECT().Revenue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (decimal.Decimal, error) {
		clause, _ := where(filter)
		assert.NotContains(t, clause, constant.FieldCreatedAt)

		return decimal.NewFromInt(1500), nil
	})

	d.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]bookingModel.Booking{
		{CheckIn: now, CheckOut: now.Add(48 * time.Hour), RoomPrice: decimal.NewFromInt(100)},
		{CheckIn: now, CheckOut: now.Add(time.Hour), RoomPrice: decimal.NewFromInt(100)},
	}, nil)
}

func TestClampDays(t *testing.T) {
	tests := map[int]int{0: 1, -4: 1, 1: 1, 31: 31, 90: 31, 14: 14}

	for in, want := range tests {
		assert.Equal(t, want, service.ClampDays(in), "days=%d", in)
	}
}

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, 0, service.OccupancyRate(3, 0))
	assert.Equal(t, 50, service.OccupancyRate(3, 6))
	assert.Equal(t, 67, service.OccupancyRate(2, 3))
	assert.Equal(t, 100, service.OccupancyRate(4, 4))
}

func TestUnpaidTotal(t *testing.T) {
	total := service.UnpaidTotal([]bookingModel.Booking{
		{CheckIn: now, CheckOut: now.Add(72 * time.Hour), RoomPrice: decimal.RequireFromString("80.50")},
		{CheckIn: now, CheckOut: now, RoomPrice: decimal.NewFromInt(40)},
	})

	assert.True(t, decimal.RequireFromString("281.50").Equal(total), total.String())
}

func TestStatsService_OverviewLifetime(t *testing.T) {
	svc, d := newService(t)
	expectLifetime(t, d)

	res, err := svc.Overview(context.Background(), dto.OverviewQuery{})
	require.NoError(t, err)

	assert.True(t, res.Range.Lifetime)
	assert.Empty(t, res.Range.Start)
	assert.Equal(t, 12, res.Guests)
	assert.Equal(t, 10, res.Bookings)
	assert.Equal(t, 20, res.Inventory)
	assert.Equal(t, 2, res.LowStockCount)
	assert.Equal(t, 3, res.OccupiedRooms)
	assert.Equal(t, 50, res.OccupancyRate)
	assert.Equal(t, 10, res.Arrivals)
	assert.Equal(t, 10, res.Departures)
	assert.Equal(t, 2, res.UnpaidBookingsCount)
	assert.True(t, decimal.NewFromInt(300).Equal(res.UnpaidTotal))
	assert.True(t, decimal.NewFromInt(1500).Equal(res.Revenue))
}

func TestStatsService_OverviewServedFromCache(t *testing.T) {
	svc, d := newService(t)
	expectLifetime(t, d)

	first, err := svc.Overview(context.Background(), dto.OverviewQuery{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return d.redis.Exists(model.CacheOverview + ":lifetime")
	}, time.Second, 10*time.Millisecond)

	second, err := svc.Overview(context.Background(), dto.OverviewQuery{})
	require.NoError(t, err)
	assert.Equal(t, first.Bookings, second.Bookings)
	assert.True(t, first.Revenue.Equal(second.Revenue))
}

func TestStatsService_OverviewToday(t *testing.T) {
	svc, d := newService(t)

	dayStart := time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	d.guests.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	d.rooms.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	d.payments.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	d.staff.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	d.laundry.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	d.inventory.EXPECT().Count(gomock.Any(), gomock.Any()).Times(2).Return(0, nil)

	d.bookings.EXPECT().Count(gomock.Any(), gomock.Any()).Times(4).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		clause, args := where(filter)

		switch {
		case len(filter.Filters) == 0:
			return 9, nil
		case strings.Contains(clause, ":"+model.ArgAt):
			assert.True(t, dayEnd.Add(-time.Microsecond).Equal(instant(args, model.ArgAt)))

			return 1, nil
		case strings.Contains(clause, "bookings.check_in >="):
			assert.True(t, dayStart.Equal(instant(args, "check_in_from")))
			assert.True(t, dayEnd.Equal(instant(args, "check_in_to")))

			return 4, nil
		default:
			assert.Contains(t, clause, "bookings.check_out >=")

			return 2, nil
		}
	})

	d.payments.EXPECT().Revenue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (decimal.Decimal, error) {
		_, args := where(filter)
		assert.True(t, dayStart.Equal(instant(args, "created_at_from")))
		assert.Equal(t, "paid", args["status"])

		return decimal.NewFromInt(250), nil
	})

	d.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]bookingModel.Booking, error) {
			clause, args := where(filter)
			assert.Contains(t, clause, model.TouchesRangeCondition)
			assert.True(t, dayStart.Equal(instant(args, model.ArgRangeStart)))

			return nil, nil
		})

	res, err := svc.Overview(context.Background(), dto.OverviewQuery{Start: "2026-03-10"})
	require.NoError(t, err)

	assert.Equal(t, dto.Range{Start: "2026-03-10", End: "2026-03-10", IsToday: true}, res.Range)
	assert.Equal(t, 4, res.Arrivals)
	assert.Equal(t, 2, res.Departures)
	assert.Equal(t, 0, res.OccupancyRate)
	assert.True(t, decimal.Zero.Equal(res.UnpaidTotal))
}

func TestStatsService_OverviewRejectsBadRange(t *testing.T) {
	tests := []struct {
		name    string
		query   dto.OverviewQuery
		wantErr error
	}{
		{name: "start after end", query: dto.OverviewQuery{Start: "2026-03-12", End: "2026-03-11"}, wantErr: service.ErrInvalidRange},
		{name: "unparseable start", query: dto.OverviewQuery{Start: "tomorrow"}, wantErr: service.ErrInvalidDay},
		{name: "unparseable end", query: dto.OverviewQuery{End: "12/03/2026"}, wantErr: service.ErrInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)

			_, err := svc.Overview(context.Background(), tt.query)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// One paid payment of 500 yesterday and one booking checking in today.
func expectSeries(d deps) {
	todayStart := time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)
	yesterdayStart := todayStart.Add(-24 * time.Hour)

	d.payments.EXPECT().Revenue(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (decimal.Decimal, error) {
		_, args := where(filter)
		if instant(args, "created_at_from").Equal(yesterdayStart) {
			return decimal.NewFromInt(500), nil
		}

		return decimal.Zero, nil
	})

	d.bookings.EXPECT().Count(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		_, args := where(filter)
		if instant(args, "check_in_from").Equal(todayStart) {
			return 1, nil
		}

		return 0, nil
	})
}

func TestStatsService_Series(t *testing.T) {
	svc, d := newService(t)
	expectSeries(d)

	points, err := svc.Series(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, []string{"2026-03-08", "2026-03-09", "2026-03-10"}, []string{points[0].Date, points[1].Date, points[2].Date})
	assert.True(t, decimal.Zero.Equal(points[0].Revenue))
	assert.True(t, decimal.NewFromInt(500).Equal(points[1].Revenue))
	assert.GreaterOrEqual(t, points[2].CheckIns, 1)
	assert.Zero(t, points[1].CheckIns)
}

func TestStatsService_ExportSeries(t *testing.T) {
	svc, d := newService(t)
	expectSeries(d)
	expectLifetime(t, d)

	d.s3.EXPECT().PutObject(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, object s3.Object) (string, error) {
			assert.Equal(t, constant.ContentTypeXLSX, object.ContentType)
			assert.True(t, strings.HasPrefix(object.Key, "reports/stats-2026-03-10-3d-"))
			assert.True(t, strings.HasSuffix(object.Key, ".xlsx"))
			assert.Equal(t, path.Base(object.Key), object.Download)

			book, err := excelize.OpenReader(bytes.NewReader(object.Body))
			require.NoError(t, err)

			defer book.Close()

			rows, err := book.GetRows("Series")
			require.NoError(t, err)
			require.Len(t, rows, 4)
			assert.Equal(t, []string{"Date", "Revenue", "Check-ins"}, rows[0])
			assert.Equal(t, "2026-03-09", rows[2][0])
			assert.Equal(t, "500", rows[2][1])

			overview, err := book.GetRows("Overview")
			require.NoError(t, err)
			assert.Equal(t, []string{"Guests", "12"}, overview[1])

			return "https://cdn.example.com/reports/" + object.Download, nil
		})

	res, err := svc.ExportSeries(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "https://cdn.example.com/reports/stats-"))
}

func TestStatsService_Invalidate(t *testing.T) {
	svc, d := newService(t)

	require.NoError(t, d.redis.Set(model.CacheOverview+":lifetime", "{}"))
	require.NoError(t, d.redis.Set(model.CacheSeries+":2026-03-10:7", "[]"))
	require.NoError(t, d.redis.Set("guest:get:1", "{}"))

	require.NoError(t, svc.Invalidate(context.Background()))

	assert.False(t, d.redis.Exists(model.CacheOverview+":lifetime"))
	assert.False(t, d.redis.Exists(model.CacheSeries+":2026-03-10:7"))
	assert.True(t, d.redis.Exists("guest:get:1"))
}
