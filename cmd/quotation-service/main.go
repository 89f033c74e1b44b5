package main

import (
	"fmt"
	"os"

	"github.com/decoraops/quotation-service/internal/assignment"
	"github.com/decoraops/quotation-service/internal/auth"
	"github.com/decoraops/quotation-service/internal/config"
	"github.com/decoraops/quotation-service/internal/db"
	"github.com/decoraops/quotation-service/internal/excel"
	"github.com/decoraops/quotation-service/internal/extraction"
	httphandler "github.com/decoraops/quotation-service/internal/http"
	"github.com/decoraops/quotation-service/internal/http/middleware"
	"github.com/decoraops/quotation-service/internal/logger"
	"github.com/decoraops/quotation-service/internal/pdf"
	"github.com/decoraops/quotation-service/internal/pricing"
	"github.com/decoraops/quotation-service/internal/repository"
	"github.com/decoraops/quotation-service/internal/service"
	"github.com/decoraops/quotation-service/internal/workflow"
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

	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	quotationRepo := repository.NewQuotationRepository(database)
	productRepo := repository.NewProductRepository(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	tokens := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.SessionTTL)
	workflows := workflow.NewManager()
	extractor := extraction.NewClient(cfg.Extraction.BaseURL, cfg.Extraction.Timeout, log)
	reconciler := pricing.NewReconciler(cfg.Pricing.MinorUnitExponent)
	assigner := assignment.NewAdapter(customerRepo, quotationRepo, log)

	authService := service.NewAuthService(userRepo, sessionRepo, tokens, workflows, log)
	quotationService := service.NewQuotationService(workflows, extractor, reconciler, assigner, quotationRepo, customerRepo, userRepo, pdfGenerator, excelGenerator, cfg, log)
	catalogService := service.NewCatalogService(customerRepo, productRepo, log)

	handler := httphandler.NewHandler(authService, quotationService, catalogService, log)
	authMiddleware := middleware.Auth(tokens, sessionRepo)
	optionalAuthMiddleware := middleware.OptionalAuth(tokens, sessionRepo)
	router := httphandler.NewRouter(handler, authMiddleware, optionalAuthMiddleware, cfg.HTTP.CORSOrigins, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting quotation service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
