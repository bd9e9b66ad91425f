package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmbedding       = errors.New("embedding failed")
	ErrRetrieval       = errors.New("retrieval failed")
	ErrRateLimited     = errors.New("rate limited")
)

// LLMCause narrows an LLM failure to the small set of categories the client
// is allowed to learn about. Raw provider errors stay server-side.
type LLMCause string

const (
	LLMCauseSafety  LLMCause = "safety"
	LLMCauseAuth    LLMCause = "auth"
	LLMCauseTimeout LLMCause = "timeout"
	LLMCauseUnknown LLMCause = "unknown"
)

// LLMError wraps a chat-completion failure with its classified cause.
type LLMError struct {
	Cause LLMCause
	Err   error
}

func NewLLMError(cause LLMCause, err error) *LLMError {
	return &LLMError{Cause: cause, Err: err}
}

func (e *LLMError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("llm error (%s)", e.Cause)
	}
	return fmt.Sprintf("llm error (%s): %v", e.Cause, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }
