package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"shopify-ai-advisor/internal/domain"
)

// classifyProviderError maps a raw provider failure to an LLMError with a
// user-safe cause. The raw error is preserved for server-side logs only.
func classifyProviderError(err error) *domain.LLMError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewLLMError(domain.LLMCauseTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewLLMError(domain.LLMCauseAuth, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "safety") || strings.Contains(msg, "content_filter"):
		return domain.NewLLMError(domain.LLMCauseSafety, err)
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "unauthorized"):
		return domain.NewLLMError(domain.LLMCauseAuth, err)
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		return domain.NewLLMError(domain.LLMCauseTimeout, err)
	}
	return domain.NewLLMError(domain.LLMCauseUnknown, err)
}
