package models

// ChatRequest is one advisory chat turn.
type ChatRequest struct {
	APIKey        string `json:"api_key"`
	Message       string `json:"message"`
	SessionID     string `json:"session_id"`
	EarNumContext string `json:"ear_num_context,omitempty"`
}

// ChatReply is the rendered advisory answer.
type ChatReply struct {
	HTML string `json:"reply_html"`
}

// Recommendation is a rendered feeding recommendation.
type Recommendation struct {
	HTML string `json:"recommendation_html"`
}
