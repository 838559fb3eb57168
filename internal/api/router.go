package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finance-dash/backend/internal/api/handlers"
	custommiddleware "github.com/finance-dash/backend/internal/api/middleware"
	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System      *service.SystemService
	Import      *service.ImportService
	Transaction *service.TransactionService
	Summary     *service.SummaryService
	Fx          *service.FxService
	Quote       *service.QuoteService
	Settings    *service.SettingsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		importHandler := handlers.NewImportHandler(services.Import)
		r.Post("/import", importHandler.Trigger)

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			r.Get("/", transactionHandler.AllTransactions)
			r.Get("/currencies", transactionHandler.Currencies)
			r.Route("/{key}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateNaturalKeyMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
			})
		})

		summaryHandler := handlers.NewSummaryHandler(services.Summary)
		r.Get("/summary", summaryHandler.Summary)

		r.Route("/fx", func(r chi.Router) {
			fxHandler := handlers.NewFxHandler(services.Fx)
			r.Get("/", fxHandler.Rates)
			r.Post("/refresh", fxHandler.RefreshRate)
		})

		r.Route("/quotes", func(r chi.Router) {
			quoteHandler := handlers.NewQuoteHandler(services.Quote)
			r.Route("/equity/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Post("/", quoteHandler.RefreshEquity)
			})
			r.Route("/crypto/{id}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateCoinIDMiddleware)
				r.Post("/", quoteHandler.RefreshCrypto)
			})
			r.Route("/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/", quoteHandler.History)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(services.Settings)
			r.Get("/display-currency", settingsHandler.GetDisplayCurrency)
			r.Put("/display-currency", settingsHandler.UpdateDisplayCurrency)
			r.Put("/provider-key", settingsHandler.SetProviderKey)
		})
	})

	return r
}
