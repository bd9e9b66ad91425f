package ai

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"google.golang.org/genai"

	"shopify-ai-advisor/internal/domain"
)

func TestClassifyProviderError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.LLMCause
	}{
		{"nil deadline", context.DeadlineExceeded, domain.LLMCauseTimeout},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), domain.LLMCauseTimeout},
		{"api 401", genai.APIError{Code: 401, Message: "bad key"}, domain.LLMCauseAuth},
		{"api 403", genai.APIError{Code: 403, Message: "forbidden"}, domain.LLMCauseAuth},
		{"safety text", errors.New("response blocked by SAFETY settings"), domain.LLMCauseSafety},
		{"content filter text", errors.New("content_filter triggered"), domain.LLMCauseSafety},
		{"api key text", errors.New("API key not valid"), domain.LLMCauseAuth},
		{"permission text", errors.New("permission denied for model"), domain.LLMCauseAuth},
		{"timeout text", errors.New("request timeout"), domain.LLMCauseTimeout},
		{"anything else", errors.New("connection reset by peer"), domain.LLMCauseUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyProviderError(tc.err)
			if got == nil {
				t.Fatal("expected an LLMError")
			}
			if got.Cause != tc.want {
				t.Fatalf("cause: got %q, want %q", got.Cause, tc.want)
			}
			if !errors.Is(got, tc.err) && !reflect.DeepEqual(got.Err, tc.err) {
				t.Error("original error must stay reachable for server-side logs")
			}
		})
	}
}

func TestClassifyProviderErrorNil(t *testing.T) {
	if got := classifyProviderError(nil); got != nil {
		t.Fatalf("nil in, nil out; got %v", got)
	}
}
