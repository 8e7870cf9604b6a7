package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/domain"
	"github.com/satriahrh/arunika/tts-relay/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	defaultVoiceID    = "21m00Tcm4TlvDq8ikWAM"   // Rachel voice
	defaultModelID    = "eleven_multilingual_v2" // Default model ID
	defaultChunkSize  = 4096                     // Size of audio chunks to stream
	defaultStability  = 0.5                      // Default voice stability
	defaultClarity    = 0.75                     // Default voice clarity/similarity_boost
	defaultTimeout    = 60 * time.Second

	maxErrorBodySize = 64 << 10
)

var (
	// ErrMissingAPIKey is returned when a synthesis is attempted without a credential
	ErrMissingAPIKey = errors.New("eleven labs API key is required")
	// ErrEmptyText is returned when there is nothing to synthesize
	ErrEmptyText = errors.New("text cannot be empty")
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter.
// Every field is optional; zero values fall back to the defaults above.
// The API key is not part of the config because it is resolved per call.
type ElevenLabsConfig struct {
	APIBaseURL string
	VoiceID    string
	ModelID    string
	ChunkSize  int
	Stability  float64 // between 0 and 1
	Clarity    float64 // similarity boost, between 0 and 1
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ElevenLabsTTS implements TextToSpeech interface using Eleven Labs API
type ElevenLabsTTS struct {
	apiBaseURL string
	voiceID    string
	modelID    string
	chunkSize  int
	stability  float64
	clarity    float64
	client     *http.Client
	logger     *zap.Logger
}

// Ensure ElevenLabsTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*ElevenLabsTTS)(nil)

// ElevenLabsVoiceSettings represents voice settings for Eleven Labs API
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsRequest represents the request payload for Eleven Labs TTS API
type ElevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings ElevenLabsVoiceSettings `json:"voice_settings"`
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.Stability < 0 || config.Stability > 1 {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}

	if config.Clarity < 0 || config.Clarity > 1 {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}

	if config.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}

	chunkSize := config.ChunkSize
	if chunkSize == 0 {
		chunkSize = defaultChunkSize
	}

	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}

	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger.Info("Eleven Labs TTS configured",
		zap.String("apiBaseURL", apiBaseURL),
		zap.String("voiceID", voiceID),
		zap.String("modelID", modelID),
		zap.Float64("stability", stability),
		zap.Float64("clarity", clarity),
		zap.Duration("timeout", client.Timeout))

	return &ElevenLabsTTS{
		apiBaseURL: apiBaseURL,
		voiceID:    voiceID,
		modelID:    modelID,
		chunkSize:  chunkSize,
		stability:  stability,
		clarity:    clarity,
		client:     client,
		logger:     logger,
	}, nil
}

// Synthesize sends text to the Eleven Labs API. On success the response body is
// returned unread so the caller can relay it incrementally. A non-2xx response is
// reported as *repositories.UpstreamError carrying the upstream status and body.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, apiKey, text string) (*repositories.Audio, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	requestBody, err := json.Marshal(ElevenLabsRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.apiBaseURL, e.voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", domain.AudioContentType)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", apiKey)

	e.logger.Debug("Sending request to Eleven Labs API",
		zap.String("url", url),
		zap.String("modelID", e.modelID))

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	e.logger.Info("Received response from Eleven Labs API",
		zap.Int("statusCode", resp.StatusCode),
		zap.String("contentType", resp.Header.Get("Content-Type")),
		zap.String("contentLength", resp.Header.Get("Content-Length")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &repositories.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(errorBody),
		}
	}

	return &repositories.Audio{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// Stream synthesizes text and streams the audio in chunks. Errors up to and
// including the upstream status are returned directly. A read failure or
// context cancellation once streaming has begun is delivered as a final chunk
// with Err set; callers should keep receiving until the channel is closed.
func (e *ElevenLabsTTS) Stream(ctx context.Context, apiKey, text string) (<-chan repositories.AudioChunk, error) {
	audio, err := e.Synthesize(ctx, apiKey, text)
	if err != nil {
		return nil, err
	}

	audioChan := make(chan repositories.AudioChunk, 10)

	go func() {
		defer close(audioChan)
		defer audio.Body.Close()

		buffer := make([]byte, e.chunkSize)
		totalBytes := 0
		chunkCount := 0

		// The error chunk is dropped only if the buffer is full and the
		// consumer has gone away with the context.
		fail := func(err error) {
			select {
			case audioChan <- repositories.AudioChunk{Err: err}:
				return
			default:
			}
			select {
			case audioChan <- repositories.AudioChunk{Err: err}:
			case <-ctx.Done():
			}
		}

		for {
			n, err := audio.Body.Read(buffer)
			if n > 0 {
				totalBytes += n
				chunkCount++

				chunk := make([]byte, n)
				copy(chunk, buffer[:n])

				select {
				case audioChan <- repositories.AudioChunk{Data: chunk}:
				case <-ctx.Done():
					e.logger.Warn("Context cancelled while sending audio chunk",
						zap.Int("totalBytes", totalBytes))
					fail(ctx.Err())
					return
				}
			}

			if err == io.EOF {
				e.logger.Info("Finished streaming audio data",
					zap.Int("totalChunks", chunkCount),
					zap.Int("totalBytes", totalBytes))
				return
			}

			if err != nil {
				e.logger.Error("Error reading response body",
					zap.Int("totalBytes", totalBytes),
					zap.Error(err))
				fail(fmt.Errorf("audio stream interrupted after %d bytes: %w", totalBytes, err))
				return
			}
		}
	}()

	return audioChan, nil
}
