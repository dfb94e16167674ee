package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"math"
	"path"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/infras/s3"
	bookingModel "guesthouse/internal/domains/booking/model"
	bookingRepo "guesthouse/internal/domains/booking/repository"
	guestRepo "guesthouse/internal/domains/guest/repository"
	inventoryModel "guesthouse/internal/domains/inventory/model"
	inventoryRepo "guesthouse/internal/domains/inventory/repository"
	laundryRepo "guesthouse/internal/domains/laundry/repository"
	paymentModel "guesthouse/internal/domains/payment/model"
	paymentRepo "guesthouse/internal/domains/payment/repository"
	roomRepo "guesthouse/internal/domains/room/repository"
	staffRepo "guesthouse/internal/domains/staff/repository"
	"guesthouse/internal/domains/stats/model"
	"guesthouse/internal/domains/stats/model/dto"
	"guesthouse/shared"
	"guesthouse/shared/cache"
	"guesthouse/shared/calendar"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/failure"
	"guesthouse/shared/spreadsheet"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	cacheLifetime = "lifetime"

	seriesConcurrency = 8
)

var (
	ErrInvalidRange = failure.BadRequestFromString("start must not be after end")
	ErrInvalidDay   = failure.BadRequestFromString(calendar.ErrInvalidDay.Error())
)

// Sources are the repositories the reports read from.
type Sources struct {
	Guests    guestRepo.Guest
	Bookings  bookingRepo.Booking
	Rooms     roomRepo.Room
	Payments  paymentRepo.Payment
	Staff     staffRepo.Staff
	Inventory inventoryRepo.Inventory
	Laundry   laundryRepo.Laundry
}

type Stats interface {
	Overview(ctx context.Context, query dto.OverviewQuery) (dto.OverviewResponse, error)
	Series(ctx context.Context, days int) ([]dto.SeriesPoint, error)
	ExportSeries(ctx context.Context, days int) (dto.ExportResponse, error)
	Invalidate(ctx context.Context) error
}

type serviceImpl struct {
	src   Sources
	cfg   *config.Config
	cache cache.RedisCache
	s3    s3.S3
	clock calendar.Clock
	otel  otel.Otel
}

func New(src Sources, cfg *config.Config, cache cache.RedisCache, s3 s3.S3, clock calendar.Clock, otel otel.Otel) Stats {
	return &serviceImpl{
		src:   src,
		cfg:   cfg,
		cache: cache,
		s3:    s3,
		clock: clock,
		otel:  otel,
	}
}

type bounds struct {
	from time.Time
	to   time.Time
	last time.Time
}

func (s *serviceImpl) resolveRange(query dto.OverviewQuery) (dto.Range, bounds, error) {
	offset := s.cfg.App.UTCOffsetMinutes
	today := calendar.LocalDayWindow(s.clock.Now(), offset)

	if query.IsLifetime() {
		return dto.Range{Lifetime: true}, bounds{}, nil
	}

	start, end := today, today

	if query.Start != constant.Empty {
		window, err := calendar.ParseLocalDay(query.Start, offset)
		if err != nil {
			return dto.Range{}, bounds{}, ErrInvalidDay
		}

		start = window
	}

	if query.End != constant.Empty {
		window, err := calendar.ParseLocalDay(query.End, offset)
		if err != nil {
			return dto.Range{}, bounds{}, ErrInvalidDay
		}

		end = window
	}

	if start.DayStart.After(end.DayStart) {
		return dto.Range{}, bounds{}, ErrInvalidRange
	}

	rng := dto.Range{
		Start:   start.DayKey,
		End:     end.DayKey,
		IsToday: start.DayKey == today.DayKey && end.DayKey == today.DayKey,
	}

	return rng, bounds{from: start.DayStart, to: end.DayEnd, last: end.LastInstant()}, nil
}

// Overview gathers the dashboard figures, lifetime or bounded to a range of local days.
func (s *serviceImpl) Overview(ctx context.Context, query dto.OverviewQuery) (res dto.OverviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".stats.Overview")
	defer scope.End()
	defer scope.TraceIfError(err)

	rng, window, err := s.resolveRange(query)
	if err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(model.CacheOverview, cacheLifetime)
	if !rng.Lifetime {
		cacheKey = shared.BuildCacheKey(model.CacheOverview, rng.Start, rng.End)
	}

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for stats overview")

		return res, nil
	}

	res, err = s.overview(ctx, rng, window)
	if err != nil {
		return res, err
	}

	s.store(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) overview(ctx context.Context, rng dto.Range, window bounds) (res dto.OverviewResponse, err error) {
	res.Range = rng

	at := s.clock.Now()
	if !rng.Lifetime {
		at = window.last
	}

	var unpaid []bookingModel.Booking

	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int, name string, fn func(context.Context, gDto.FilterGroup) (int, error), filter gDto.FilterGroup) {
		g.Go(func() error {
			n, err := fn(gctx, filter)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", name, err)
			}

			*dst = n

			return nil
		})
	}

	count(&res.Guests, "guests", s.src.Guests.Count, gDto.FilterGroup{})
	count(&res.Bookings, "bookings", s.src.Bookings.Count, gDto.FilterGroup{})
	count(&res.Rooms, "rooms", s.src.Rooms.Count, gDto.FilterGroup{})
	count(&res.Payments, "payments", s.src.Payments.Count, gDto.FilterGroup{})
	count(&res.Staff, "staff", s.src.Staff.Count, gDto.FilterGroup{})
	count(&res.Inventory, "inventory", s.src.Inventory.Count, gDto.FilterGroup{})
	count(&res.Laundry, "laundry", s.src.Laundry.Count, gDto.FilterGroup{})
	count(&res.LowStockCount, "low stock items", s.src.Inventory.Count, lowStockFilter())
	count(&res.OccupiedRooms, "occupied rooms", s.src.Bookings.Count, occupiedFilter(at))

	if !rng.Lifetime {
		count(&res.Arrivals, "arrivals", s.src.Bookings.Count, betweenFilter(bookingModel.TableName, bookingModel.FieldCheckIn, window))
		count(&res.Departures, "departures", s.src.Bookings.Count, betweenFilter(bookingModel.TableName, bookingModel.FieldCheckOut, window))
	}

	g.Go(func() error {
		revenue, err := s.src.Payments.Revenue(gctx, revenueFilter(rng.Lifetime, window))
		if err != nil {
			return fmt.Errorf("failed to sum revenue: %w", err)
		}

		res.Revenue = revenue

		return nil
	})

	g.Go(func() error {
		rows, err := s.src.Bookings.GetAll(gctx, gDto.QueryParams{}, unpaidFilter(rng.Lifetime, window))
		if err != nil {
			return fmt.Errorf("failed to get unpaid bookings: %w", err)
		}

		unpaid = rows

		return nil
	})

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to build stats overview")

		return res, err
	}

	if rng.Lifetime {
		res.Arrivals = res.Bookings
		res.Departures = res.Bookings
	}

	res.OccupancyRate = OccupancyRate(res.OccupiedRooms, res.Rooms)
	res.UnpaidBookingsCount = len(unpaid)
	res.UnpaidTotal = UnpaidTotal(unpaid)

	return res, nil
}

// OccupancyRate is occupied over total rooms as a whole percentage.
func OccupancyRate(occupied, rooms int) int {
	if rooms <= 0 {
		return 0
	}

	return int(math.Round(float64(occupied) / float64(rooms) * 100))
}

// UnpaidTotal prices every stay at its room's nightly rate.
func UnpaidTotal(bookings []bookingModel.Booking) decimal.Decimal {
	total := decimal.Zero

	for _, b := range bookings {
		nights := decimal.NewFromInt(int64(calendar.NightCount(b.CheckIn, b.CheckOut)))
		total = total.Add(b.RoomPrice.Mul(nights))
	}

	return total
}

// ClampDays bounds a series length to [1, 31]. Callers apply the default of 7 for an absent value.
func ClampDays(days int) int {
	switch {
	case days < model.MinSeriesDays:
		return model.MinSeriesDays
	case days > model.MaxSeriesDays:
		return model.MaxSeriesDays
	}

	return days
}

// Series returns one point per local day, oldest first, ending today.
func (s *serviceImpl) Series(ctx context.Context, days int) (res []dto.SeriesPoint, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".stats.Series")
	defer scope.End()
	defer scope.TraceIfError(err)

	days = ClampDays(days)
	offset := s.cfg.App.UTCOffsetMinutes
	today := calendar.LocalDayWindow(s.clock.Now(), offset)

	cacheKey := shared.BuildCacheKey(model.CacheSeries, today.DayKey, days)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for stats series")

		return res, nil
	}

	res = make([]dto.SeriesPoint, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seriesConcurrency)

	for i := range days {
		back := days - 1 - i
		day := calendar.LocalDayWindow(today.DayStart.Add(-time.Duration(back)*24*time.Hour), offset)
		window := bounds{from: day.DayStart, to: day.DayEnd, last: day.LastInstant()}

		res[i].Date = day.DayKey

		g.Go(func() error {
			revenue, err := s.src.Payments.Revenue(gctx, revenueFilter(false, window))
			if err != nil {
				return fmt.Errorf("failed to sum revenue for %s: %w", day.DayKey, err)
			}

			res[i].Revenue = revenue

			return nil
		})

		g.Go(func() error {
			checkIns, err := s.src.Bookings.Count(gctx, betweenFilter(bookingModel.TableName, bookingModel.FieldCheckIn, window))
			if err != nil {
				return fmt.Errorf("failed to count check-ins for %s: %w", day.DayKey, err)
			}

			res[i].CheckIns = checkIns

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to build stats series")

		return nil, err
	}

	s.store(ctx, cacheKey, res)

	return res, nil
}

// ExportSeries renders the series and the lifetime overview into a workbook and uploads it.
func (s *serviceImpl) ExportSeries(ctx context.Context, days int) (res dto.ExportResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".stats.ExportSeries")
	defer scope.End()
	defer scope.TraceIfError(err)

	days = ClampDays(days)

	points, err := s.Series(ctx, days)
	if err != nil {
		return res, err
	}

	overview, err := s.Overview(ctx, dto.OverviewQuery{})
	if err != nil {
		return res, err
	}

	data, err := spreadsheet.Render(seriesSheet(points), overviewSheet(overview))
	if err != nil {
		log.Error().Err(err).Msg("failed to render stats workbook")

		return res, fmt.Errorf("failed to render stats workbook: %w", err)
	}

	now := s.clock.Now()
	today := calendar.LocalDayWindow(now, s.cfg.App.UTCOffsetMinutes)
	fileName := fmt.Sprintf("stats-%s-%dd-%d.xlsx", today.DayKey, days, now.Unix())

	url, err := s.s3.PutObject(ctx, s3.Object{
		Key:         path.Join(s.cfg.Stats.ExportFolder, fileName),
		ContentType: constant.ContentTypeXLSX,
		Body:        data,
		Download:    fileName,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to upload stats workbook")

		return res, fmt.Errorf("failed to upload stats workbook: %w", err)
	}

	res.URL = url

	return res, nil
}

func seriesSheet(points []dto.SeriesPoint) spreadsheet.Sheet {
	sheet := spreadsheet.Sheet{Name: "Series", Headers: []string{"Date", "Revenue", "Check-ins"}}

	for _, p := range points {
		sheet.Rows = append(sheet.Rows, []any{p.Date, p.Revenue.InexactFloat64(), p.CheckIns})
	}

	return sheet
}

func overviewSheet(o dto.OverviewResponse) spreadsheet.Sheet {
	return spreadsheet.Sheet{
		Name:    "Overview",
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Guests", o.Guests},
			{"Bookings", o.Bookings},
			{"Rooms", o.Rooms},
			{"Payments", o.Payments},
			{"Staff", o.Staff},
			{"Inventory items", o.Inventory},
			{"Laundry orders", o.Laundry},
			{"Revenue", o.Revenue.InexactFloat64()},
			{"Occupied rooms", o.OccupiedRooms},
			{"Occupancy rate (%)", o.OccupancyRate},
			{"Unpaid bookings", o.UnpaidBookingsCount},
			{"Unpaid total", o.UnpaidTotal.InexactFloat64()},
			{"Low stock items", o.LowStockCount},
		},
	}
}

// Invalidate drops every cached report.
func (s *serviceImpl) Invalidate(ctx context.Context) error {
	if err := s.cache.Clear(ctx, model.CachePrefix+"*"); err != nil {
		return fmt.Errorf("failed to clear stats cache: %w", err)
	}

	return nil
}

func (s *serviceImpl) store(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Stats.CacheTTL); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save stats to cache")
		}
	}()
}

func lowStockFilter() gDto.FilterGroup {
	return gDto.FilterGroup{Filters: []any{
		gDto.Filter{Operator: gDto.FilterPlainQuery, Value: inventoryModel.LowStockCondition},
	}}
}

func occupiedFilter(at time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{Filters: []any{
		gDto.Filter{Operator: gDto.FilterPlainQuery, Value: model.OccupiedCondition, Args: map[string]any{model.ArgAt: at}},
	}}
}

// betweenFilter matches rows whose field falls in [from, to).
func betweenFilter(table, field string, window bounds) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, ArgName: field + "_from", Operator: gDto.FilterOperatorGreaterEq, Value: window.from, Table: table},
			gDto.Filter{Field: field, ArgName: field + "_to", Operator: gDto.FilterOperatorLess, Value: window.to, Table: table},
		},
	}
}

func revenueFilter(lifetime bool, window bounds) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field: paymentModel.FieldStatus, Operator: gDto.FilterOperatorEq, Value: paymentModel.StatusPaid, Table: paymentModel.TableName,
			},
		},
	}

	if !lifetime {
		filter.Filters = append(filter.Filters, betweenFilter(paymentModel.TableName, constant.FieldCreatedAt, window))
	}

	return filter
}

func unpaidFilter(lifetime bool, window bounds) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Operator: gDto.FilterPlainQuery, Value: bookingModel.UnpaidCondition},
		},
	}

	if !lifetime {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value:    model.TouchesRangeCondition,
			Args:     map[string]any{model.ArgRangeStart: window.from, model.ArgRangeEnd: window.last},
		})
	}

	return filter
}
