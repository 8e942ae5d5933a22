package main

import (
	"os"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/odese/athenaeum/config"
	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/handler"
	"github.com/odese/athenaeum/internal/jsonlog"
	"github.com/odese/athenaeum/repository"
	"github.com/odese/athenaeum/repository/postgres"
	"github.com/odese/athenaeum/service"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

// @title Athenaeum API
// @version 1.0.0
// @description This is an API service for managing a library's catalog and borrowings.
// @BasePath /
func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration
	cfg, err := config.Decode()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Application layers
	repo := repository.New(db)
	if err := repo.SeedRoles(); err != nil {
		logger.PrintFatal(err, nil)
	}
	logger.PrintInfo("roles seeded", nil)

	// Other shared resources: waitgroup and in-memory cache
	var wg sync.WaitGroup
	cache := ttlcache.New(ttlcache.WithTTL[string, *data.User](30 * time.Minute))
	go cache.Start()

	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, cache, service)

	// Instantiate application
	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	// Start HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}
