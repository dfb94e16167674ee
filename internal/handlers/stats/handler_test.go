package stats_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	otelMocks "guesthouse/infras/otel/mocks"
	statsMocks "guesthouse/internal/domains/stats/mocks"
	"guesthouse/internal/domains/stats/model/dto"
	"guesthouse/internal/handlers/stats"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*chi.Mux, *statsMocks.MockStats) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := statsMocks.NewMockStats(ctrl)
	handler := stats.New(service, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router, service
}

func TestGetSeries_Days(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "absent defaults to a week", query: "", want: 7},
		{name: "explicit zero is passed through", query: "?days=0", want: 0},
		{name: "malformed defaults to a week", query: "?days=abc", want: 7},
		{name: "explicit value", query: "?days=14", want: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			service.EXPECT().Series(gomock.Any(), tt.want).Return([]dto.SeriesPoint{}, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/series"+tt.query, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestExportSeries_DefaultDays(t *testing.T) {
	router, service := newRouter(t)
	service.EXPECT().ExportSeries(gomock.Any(), 7).Return(dto.ExportResponse{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/series/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
