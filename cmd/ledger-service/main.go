package main

import (
	"fmt"
	"os"

	"github.com/nurpe/freelance-ledger/internal/auth"
	"github.com/nurpe/freelance-ledger/internal/config"
	"github.com/nurpe/freelance-ledger/internal/db"
	"github.com/nurpe/freelance-ledger/internal/excel"
	httphandler "github.com/nurpe/freelance-ledger/internal/http"
	"github.com/nurpe/freelance-ledger/internal/http/middleware"
	"github.com/nurpe/freelance-ledger/internal/logger"
	"github.com/nurpe/freelance-ledger/internal/pdf"
	"github.com/nurpe/freelance-ledger/internal/repository"
	"github.com/nurpe/freelance-ledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if cfg.Ledger.SeedDemo {
		if err := db.Seed(database, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo ledger")
		}
	}

	ledgerRepo := repository.NewLedgerRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)

	ledgerService := service.NewLedgerService(ledgerRepo)
	paymentService := service.NewPaymentService(ledgerRepo, pdf.NewGenerator())
	depositService := service.NewDepositService(ledgerRepo, cfg)
	analyticsService := service.NewAnalyticsService(analyticsRepo, excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(ledgerService, paymentService, depositService, analyticsService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
