package handler

import (
	"github.com/jellydator/ttlcache/v3"
	"github.com/odese/athenaeum/config"
	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/internal/jsonlog"
	"github.com/odese/athenaeum/service"
)

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	cache   *ttlcache.Cache[string, *data.User]
	service service.Service
}

// New creates a new instance of Handler. The cache holds recently
// authenticated users keyed by token plaintext so hot requests skip the
// token lookup query.
func New(cfg config.Config, logger *jsonlog.Logger, cache *ttlcache.Cache[string, *data.User], service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: service,
	}
}
