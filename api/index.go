package handler

import (
	"net/http"

	"guesthouse/config"
	"guesthouse/di"
	"guesthouse/shared/logger"

	"github.com/shopspring/decimal"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()

	logger.Configure(cfg)

	decimal.MarshalJSONWithoutQuotes = true

	handler := di.InitializeService()
	handler.ServeHTTP(w, r)
}
