package service

import (
	"sync"

	"github.com/odese/athenaeum/config"
	"github.com/odese/athenaeum/internal/jsonlog"
	"github.com/odese/athenaeum/repository"
)

type Service interface {
	books
	categories
	users
	tokens
	transactions
	failedValidation(map[string]string) error
}

// service defines the app's service layer.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
}

// New creates a new instance of Service. The shared WaitGroup tracks
// background goroutines so the server can wait for them during shutdown.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
	}
}
