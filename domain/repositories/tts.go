package repositories

import (
	"context"
	"fmt"
	"io"
)

// Audio is a synthesized audio stream. Callers must close Body.
type Audio struct {
	ContentType string
	Body        io.ReadCloser
}

// TextToSpeech abstracts text-to-speech services
type TextToSpeech interface {
	// Synthesize issues a single synthesis call and returns the upstream body unread
	Synthesize(ctx context.Context, apiKey, text string) (*Audio, error)
	// Stream synthesizes text and delivers the audio as chunks on the returned channel.
	// The channel is always closed; a chunk with Err set is the last one sent.
	Stream(ctx context.Context, apiKey, text string) (<-chan AudioChunk, error)
}

// AudioChunk is one piece of a streamed synthesis. Err is set when the stream
// ended before the upstream body was fully read.
type AudioChunk struct {
	Data []byte
	Err  error
}

// UpstreamError is returned when the speech service answers with a non-success status
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
