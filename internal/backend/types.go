package backend

import "LegalChat/internal/session"

// ChatRequest represents the request body for the chat endpoint
type ChatRequest struct {
	Message     string            `json:"message"`
	ChatHistory []session.Message `json:"chat_history"`
}

// ChatResponse represents the response from the chat endpoint
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}
