package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/domain"
	"github.com/satriahrh/arunika/tts-relay/domain/repositories"
	"github.com/satriahrh/arunika/tts-relay/internal/config"
)

const relayChunkSize = 32 << 10

// RelayHandler forwards text to the speech service and relays the audio back
type RelayHandler struct {
	tts        repositories.TextToSpeech
	credential config.CredentialFunc
	logger     *zap.Logger
}

// NewRelayHandler creates a new relay handler
func NewRelayHandler(tts repositories.TextToSpeech, credential config.CredentialFunc, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{
		tts:        tts,
		credential: credential,
		logger:     logger,
	}
}

// Handle serves a single synthesis request. Every failure is rendered here as a
// JSON message; only the success path writes audio.
func (h *RelayHandler) Handle(c echo.Context) error {
	req := c.Request()
	logger := h.logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))

	logger.Info("TTS relay started", zap.String("method", req.Method))

	if req.Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, MessageResponse{Message: domain.MessageMethodNotAllowed})
	}

	var body TTSRequest
	if err := c.Bind(&body); err != nil {
		logger.Warn("Rejected request with unreadable body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: domain.MessageTextRequired})
	}
	if body.Text == "" {
		logger.Warn("Rejected request without text")
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: domain.MessageTextRequired})
	}
	logger.Info("Received text", zap.String("text", body.Text))

	apiKey := h.credential()
	if apiKey == "" {
		logger.Error("ElevenLabs API key is not configured on the server")
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: domain.MessageAPIKeyMissing})
	}
	logger.Info("API key found")

	logger.Info("Calling ElevenLabs API")
	audio, err := h.tts.Synthesize(req.Context(), apiKey, body.Text)
	if err != nil {
		var upstreamErr *repositories.UpstreamError
		if errors.As(err, &upstreamErr) {
			logger.Error("ElevenLabs API error",
				zap.Int("statusCode", upstreamErr.StatusCode),
				zap.String("response", upstreamErr.Body))
			return c.JSON(upstreamErr.StatusCode, MessageResponse{Message: domain.MessageUpstreamError})
		}

		logger.Error("ElevenLabs API call failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: domain.MessageInternalError})
	}
	defer audio.Body.Close()

	logger.Info("Relaying audio stream to client", zap.String("upstreamContentType", audio.ContentType))

	n, err := relayAudio(c.Response(), audio.Body)
	if err != nil {
		// Headers are already sent, so the client only sees a truncated body
		logger.Error("Audio relay interrupted", zap.Int64("bytes", n), zap.Error(err))
		return nil
	}

	logger.Info("Audio relayed", zap.Int64("bytes", n))
	return nil
}

// relayAudio copies body to the response as audio/mpeg, flushing after every chunk
func relayAudio(res *echo.Response, body io.Reader) (int64, error) {
	res.Header().Set(echo.HeaderContentType, domain.AudioContentType)
	res.WriteHeader(http.StatusOK)

	flusher, _ := res.Writer.(http.Flusher)
	buffer := make([]byte, relayChunkSize)
	var total int64

	for {
		n, err := body.Read(buffer)
		if n > 0 {
			if _, werr := res.Write(buffer[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			if flusher != nil {
				flusher.Flush()
			}
		}

		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
