package web

import (
	"errors"
	"net/http"

	"shopify-ai-advisor/internal/domain"
)

// User-safe error messages. Raw provider and infrastructure errors never
// reach the client; they are logged server-side with full detail.
const (
	msgInvalidRequest  = "Invalid request."
	msgSessionNotFound = "Chat session not found or expired."
	msgLLMSafety       = "The AI could not provide a response due to safety guidelines. Please try rephrasing your request."
	msgLLMAuth         = "There's an issue with the AI service configuration or authentication on the server."
	msgLLMTimeout      = "The AI service took too long to respond. Please try again in a moment."
	msgLLMUnknown      = "An error occurred while processing your request with the AI service. Please try again later."
	msgInternal        = "An unexpected error occurred. Please try again later."
)

// classify maps an internal failure to an HTTP status and a user-safe
// message.
func classify(err error) (int, string) {
	var llmErr *domain.LLMError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, msgInvalidRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgSessionNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "You are sending messages too quickly. Please wait a moment and try again."
	case errors.As(err, &llmErr):
		switch llmErr.Cause {
		case domain.LLMCauseSafety:
			return http.StatusInternalServerError, msgLLMSafety
		case domain.LLMCauseAuth:
			return http.StatusInternalServerError, msgLLMAuth
		case domain.LLMCauseTimeout:
			return http.StatusInternalServerError, msgLLMTimeout
		default:
			return http.StatusInternalServerError, msgLLMUnknown
		}
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
