package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/adapters/tts"
	"github.com/satriahrh/arunika/tts-relay/internal/config"
	"github.com/satriahrh/arunika/tts-relay/internal/websocket"
)

const serviceName = "tts-relay"

// NewServer creates the echo instance with middleware, error rendering and routes
func NewServer(relay *RelayHandler, streamer *websocket.Streamer, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Recovered from panic", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))

	InitRoutes(e, relay, streamer)
	return e
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, relay *RelayHandler, streamer *websocket.Streamer) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: serviceName,
		})
	})

	// Registered for every method so the relay itself answers 405
	e.Any("/api/tts", relay.Handle)

	if streamer != nil {
		e.GET("/ws/tts", streamer.Handle)
	}
}

// NewServerFromConfig wires the ElevenLabs adapter, relay and websocket streamer
// from process configuration. The API key is read from the environment per request.
func NewServerFromConfig(cfg config.Config, logger *zap.Logger) (*echo.Echo, error) {
	elevenLabs, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIBaseURL: cfg.ElevenLabsBaseURL,
		Timeout:    cfg.ElevenLabsTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs TTS: %w", err)
	}

	credential := config.EnvCredential(config.APIKeyEnv)
	relay := NewRelayHandler(elevenLabs, credential, logger)
	streamer := websocket.NewStreamer(elevenLabs, credential, logger)

	return NewServer(relay, streamer, logger), nil
}
