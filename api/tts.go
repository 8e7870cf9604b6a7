// Package handler is the serverless entrypoint. The platform routes /api/tts
// here and the same echo router used by cmd serves the request.
package handler

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/domain"
	"github.com/satriahrh/arunika/tts-relay/internal/api"
	"github.com/satriahrh/arunika/tts-relay/internal/config"
	"github.com/satriahrh/arunika/tts-relay/internal/logging"
)

var (
	initOnce sync.Once
	server   http.Handler
)

func setup() {
	cfg, cfgErr := config.FromEnv()

	level := cfg.LogLevel
	if cfgErr != nil {
		level = "info"
	}
	logger, err := logging.New(level, "")
	if err != nil {
		logger = zap.NewExample()
		logger.Error("failed to initialize logger", zap.Error(err))
	}

	if cfgErr != nil {
		logger.Error("invalid configuration", zap.Error(cfgErr))
		server = unavailable()
		return
	}

	e, err := api.NewServerFromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to build server", zap.Error(err))
		server = unavailable()
		return
	}
	server = e
}

// unavailable answers every request with the generic internal error
func unavailable() http.Handler {
	e := echo.New()
	e.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: domain.MessageInternalError})
	})
	return e
}

// Handler is the entry point for serverless functions
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(setup)
	server.ServeHTTP(w, r)
}
