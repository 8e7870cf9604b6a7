package api

// TTSRequest represents the request payload for speech synthesis
type TTSRequest struct {
	Text string `json:"text" form:"text"`
}

// MessageResponse is the body of every non-audio response
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
