package main

import (
	"fmt"
	"os"

	"github.com/JosineyAlves/adcloner-sub000/internal/delivery"
	"github.com/JosineyAlves/adcloner-sub000/internal/infrastructure"
	"github.com/JosineyAlves/adcloner-sub000/internal/usecase"
	"github.com/JosineyAlves/adcloner-sub000/pkg/config"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	m := metrics.New()

	graphClient := infrastructure.NewGraphClient(cfg.Graph, log, m)
	templateStore := infrastructure.NewTemplateRepository(log)

	extractor := usecase.NewExtractor(graphClient, log)
	pipeline := usecase.NewRecreationPipeline(graphClient, log, m)
	cloneService := usecase.NewCloneService(graphClient, extractor, pipeline, templateStore, log, m)
	importer := usecase.NewImporter(templateStore, log)

	handlers := delivery.NewHTTPHandlers(cloneService, importer, templateStore, cfg.Clone, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m)

	engine := router.SetupRoutes()

	log.WithField("port", cfg.Server.Port).Info("Starting campaign cloner server")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
