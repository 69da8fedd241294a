package main

import (
	"go.uber.org/zap"

	"spends-pipeline/internal/api"
	"spends-pipeline/internal/api/handler"
	"spends-pipeline/internal/config"
	"spends-pipeline/internal/store"
	"spends-pipeline/pkg/router"

	_ "spends-pipeline/docs"
)

// @title Spends Dashboard API
// @version 1.0
// @description Build and serve pre-aggregated spending dashboard documents.
// @BasePath /api/v1
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	if err := store.InitDB(cfg.DBPath); err != nil {
		logger.Fatal("open build store", zap.Error(err))
	}
	defer store.Close()

	handler.Init(cfg, logger)

	r := router.New(logger)
	api.RegisterRoutes(r)

	if err := r.Start(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
