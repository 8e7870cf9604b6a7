package domain

// Caller-facing messages. Server-side failures stay generic; details are only logged.
const (
	MessageMethodNotAllowed = "Method not allowed"
	MessageTextRequired     = "Text is required"
	MessageAPIKeyMissing    = "API key not configured on the server."
	MessageUpstreamError    = "Error from ElevenLabs API"
	MessageInternalError    = "Internal server error"
)

// AudioContentType is the media type of relayed audio
const AudioContentType = "audio/mpeg"

// StreamTextMessage represents an incoming text frame on the websocket stream
type StreamTextMessage struct {
	Text string `json:"text"`
}

// StreamEndMessage is sent after the last audio frame of a synthesis
type StreamEndMessage struct {
	Type  string `json:"type"`
	Bytes int    `json:"bytes"`
}

// StreamErrorMessage is sent when a synthesis could not be streamed
type StreamErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
