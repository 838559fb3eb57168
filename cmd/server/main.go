package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finance-dash/backend/internal/alphavantage"
	"github.com/finance-dash/backend/internal/api"
	"github.com/finance-dash/backend/internal/coinranking"
	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/database"
	"github.com/finance-dash/backend/internal/fxrate"
	"github.com/finance-dash/backend/internal/normalize"
	"github.com/finance-dash/backend/internal/repository"
	"github.com/finance-dash/backend/internal/scheduler"
	"github.com/finance-dash/backend/internal/securestore"
	"github.com/finance-dash/backend/internal/service"
	"github.com/finance-dash/backend/internal/workbook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	fxRateRepo := repository.NewFxRateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Currency registry and credential store
	registry := currency.NewRegistry(cfg.Currency.Supported, cfg.Currency.Aliases)

	secrets, err := securestore.New(cfg.Providers.FernetSecret)
	if err != nil {
		log.Fatalf("Failed to initialize credential store: %v", err)
	}

	// Market-data provider clients
	alphaClient := alphavantage.NewFinanceClient(cfg.Providers.AlphaVantageEndpoint, cfg.Providers.Timeout)
	coinClient := coinranking.NewFinanceClient(cfg.Providers.CoinrankingHost, cfg.Providers.Timeout)

	// Create services
	systemService := service.NewSystemService(db)
	settingsService := service.NewSettingsService(
		settingRepo,
		registry,
		secrets,
		cfg.Currency.DisplayDefault,
		map[string]string{
			service.ProviderAlphaVantage: cfg.Providers.AlphaVantageKey,
			service.ProviderCoinranking:  cfg.Providers.CoinrankingKey,
		},
	)

	fxCache := fxrate.New(fxRateRepo, service.NewRateProvider(alphaClient, settingsService), cfg.Fx.RateTTL)
	if err := fxCache.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load exchange rates: %v", err)
	}

	importService := service.NewImportService(
		db,
		transactionRepo,
		workbook.NewXLSXReader(cfg.Import.WorkbookPath),
		normalize.NewNormalizer(registry),
		cfg.Import.Sheets,
	)
	transactionService := service.NewTransactionService(transactionRepo)
	summaryService := service.NewSummaryService(
		transactionRepo,
		settingsService,
		fxCache,
		registry,
		cfg.Fx.StalePolicy,
	)
	fxService := service.NewFxService(fxCache, registry, transactionRepo, settingsService)
	quoteService := service.NewQuoteService(alphaClient, coinClient, quoteRepo, settingsService)

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Import:      importService,
		Transaction: transactionService,
		Summary:     summaryService,
		Fx:          fxService,
		Quote:       quoteService,
		Settings:    settingsService,
	}, cfg)

	// Start the background FX refresh if enabled
	var fxScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		fxScheduler = scheduler.New(fxService, cfg.Scheduler.FxRefreshSpec)
		if err := fxScheduler.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		log.Printf("FX refresh scheduled: %s", cfg.Scheduler.FxRefreshSpec)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if fxScheduler != nil {
		fxScheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
