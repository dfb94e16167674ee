package stats

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/stats/model"
	"guesthouse/internal/domains/stats/model/dto"
	"guesthouse/internal/domains/stats/service"
	"guesthouse/shared"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const (
	queryParamStart = "start"
	queryParamEnd   = "end"
	queryParamDays  = "days"
)

type Handler struct {
	service service.Stats
	otel    otel.Otel
}

func New(service service.Stats, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/stats", func(routerGroup chi.Router) {
		routerGroup.Get("/overview", handler.GetOverview)
		routerGroup.Get("/series", handler.GetSeries)
		routerGroup.Get("/series/export", handler.ExportSeries)
	})
}

// GetOverview returns the dashboard figures.
// @Summary Dashboard overview
// @Description Without start and end the figures cover the whole history. With either one the range is clamped to local days, the missing bound defaulting to today.
// @Tags Stats
// @Produce json
// @Param start query string false "First local day (YYYY-MM-DD)"
// @Param end query string false "Last local day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.OverviewResponse]
// @Failure 400 {object} response.Error
// @Router /v1/stats/overview [get]
// @Security BearerAuth
func (handler *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetOverview")
	defer scope.End()

	query := r.URL.Query()

	res, err := handler.service.Overview(ctx, dto.OverviewQuery{
		Start: query.Get(queryParamStart),
		End:   query.Get(queryParamEnd),
	})
	if err != nil {
		response.Fail(w, scope, err, "failed to get stats overview")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSeries returns daily revenue and check-ins, oldest first.
// @Summary Daily series
// @Tags Stats
// @Produce json
// @Param days query int false "Number of days ending today (1-31, default 7)"
// @Success 200 {object} response.Data[[]dto.SeriesPoint]
// @Failure 500 {object} response.Error
// @Router /v1/stats/series [get]
// @Security BearerAuth
func (handler *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetSeries")
	defer scope.End()

	days := shared.QueryIntOr(r.URL.Query(), queryParamDays, model.DefaultSeriesDays)

	res, err := handler.service.Series(ctx, days)
	if err != nil {
		response.Fail(w, scope, err, "failed to get stats series")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ExportSeries renders the series as a spreadsheet and returns its download URL.
// @Summary Export daily series
// @Tags Stats
// @Produce json
// @Param days query int false "Number of days ending today (1-31, default 7)"
// @Success 200 {object} response.Data[dto.ExportResponse]
// @Failure 500 {object} response.Error
// @Router /v1/stats/series/export [get]
// @Security BearerAuth
func (handler *Handler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "ExportSeries")
	defer scope.End()

	days := shared.QueryIntOr(r.URL.Query(), queryParamDays, model.DefaultSeriesDays)

	res, err := handler.service.ExportSeries(ctx, days)
	if err != nil {
		response.Fail(w, scope, err, "failed to export stats series")

		return
	}

	scope.AddEvent("Series exported to " + res.URL)

	response.WithJSON(w, http.StatusOK, res)
}
