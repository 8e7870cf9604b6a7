package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/domain"
	"github.com/satriahrh/arunika/tts-relay/domain/repositories"
	"github.com/satriahrh/arunika/tts-relay/internal/config"
)

const (
	messageTypeAudioEnd = "audio_end"
	messageTypeError    = "error"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Streamer serves synthesis over a websocket. Each text frame is answered with
// binary audio frames followed by an audio_end message, or a single error message.
type Streamer struct {
	tts        repositories.TextToSpeech
	credential config.CredentialFunc
	logger     *zap.Logger
}

// NewStreamer creates a new websocket streamer
func NewStreamer(tts repositories.TextToSpeech, credential config.CredentialFunc, logger *zap.Logger) *Streamer {
	return &Streamer{
		tts:        tts,
		credential: credential,
		logger:     logger,
	}
}

// Handle upgrades the connection and serves text frames until the client disconnects
func (s *Streamer) Handle(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written an HTTP error response
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	logger := s.logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	logger.Info("WebSocket stream connected", zap.String("remote_addr", c.RealIP()))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket stream closed unexpectedly", zap.Error(err))
			}
			logger.Info("WebSocket stream disconnected")
			return nil
		}

		if messageType != websocket.TextMessage {
			if err := s.writeError(conn, domain.MessageTextRequired); err != nil {
				return nil
			}
			continue
		}

		if err := s.synthesize(c, conn, logger, data); err != nil {
			logger.Warn("Failed to write to WebSocket", zap.Error(err))
			return nil
		}
	}
}

// synthesize answers one text frame. Only connection write failures are returned.
func (s *Streamer) synthesize(c echo.Context, conn *websocket.Conn, logger *zap.Logger, data []byte) error {
	var msg domain.StreamTextMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Text == "" {
		logger.Warn("Rejected stream message without text")
		return s.writeError(conn, domain.MessageTextRequired)
	}

	apiKey := s.credential()
	if apiKey == "" {
		logger.Error("ElevenLabs API key is not configured on the server")
		return s.writeError(conn, domain.MessageAPIKeyMissing)
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	audioChan, err := s.tts.Stream(ctx, apiKey, msg.Text)
	if err != nil {
		var upstreamErr *repositories.UpstreamError
		if errors.As(err, &upstreamErr) {
			logger.Error("ElevenLabs API error",
				zap.Int("statusCode", upstreamErr.StatusCode),
				zap.String("response", upstreamErr.Body))
			return s.writeError(conn, domain.MessageUpstreamError)
		}
		logger.Error("ElevenLabs API call failed", zap.Error(err))
		return s.writeError(conn, domain.MessageInternalError)
	}

	totalBytes := 0
	var streamErr error
	for chunk := range audioChan {
		if chunk.Err != nil {
			streamErr = chunk.Err
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk.Data); err != nil {
			// Stop the upstream read, then drain so the producer goroutine can finish
			cancel()
			for range audioChan {
			}
			return err
		}
		totalBytes += len(chunk.Data)
	}
	if streamErr == nil {
		streamErr = ctx.Err()
	}

	if streamErr != nil {
		logger.Error("Audio stream interrupted",
			zap.Int("bytes", totalBytes),
			zap.Error(streamErr))
		return s.writeError(conn, domain.MessageInternalError)
	}

	logger.Info("Audio streamed", zap.Int("bytes", totalBytes))
	return conn.WriteJSON(domain.StreamEndMessage{Type: messageTypeAudioEnd, Bytes: totalBytes})
}

func (s *Streamer) writeError(conn *websocket.Conn, message string) error {
	return conn.WriteJSON(domain.StreamErrorMessage{Type: messageTypeError, Message: message})
}
