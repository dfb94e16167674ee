package main

import (
	"guesthouse/config"
	"guesthouse/di"
	"guesthouse/shared/logger"

	"github.com/shopspring/decimal"
)

// @title						Guesthouse API
// @version					1.0
// @description				Back-office API for bookings, payments, laundry, attendance, inventory and reporting.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the access token.
// @securityDefinitions.apikey	ApiKeyAuth
// @in							header
// @name						X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.Configure(cfg)

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	http := di.InitializeService()
	http.Serve()
}
