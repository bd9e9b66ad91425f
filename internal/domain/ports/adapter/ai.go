package adapter

import (
	"context"

	"shopify-ai-advisor/internal/domain/model"
)

// ChatModelAdapter abstracts the chat-completion provider. StartConversation
// binds the system instruction to the returned handle for its whole lifetime.
type ChatModelAdapter interface {
	StartConversation(ctx context.Context, systemInstruction string) (model.Conversation, error)
}

// EmbeddingAdapter turns free text into a fixed-size vector. Implementations
// reject empty or whitespace-only input before calling out.
type EmbeddingAdapter interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
