package ai

import (
	"context"

	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/adapter"
)

// CallLimiter bounds concurrent outbound AI calls across chat and embedding
// traffic with one shared semaphore.
type CallLimiter struct {
	sem chan struct{}
}

func NewCallLimiter(maxConcurrent int) *CallLimiter {
	if maxConcurrent <= 0 {
		return nil
	}
	return &CallLimiter{sem: make(chan struct{}, maxConcurrent)}
}

func (l *CallLimiter) acquire() func() {
	l.sem <- struct{}{}
	return func() { <-l.sem }
}

// Compile-time checks
var (
	_ adapter.ChatModelAdapter = (*limitedChatModel)(nil)
	_ adapter.EmbeddingAdapter = (*limitedEmbedder)(nil)
)

type limitedChatModel struct {
	inner adapter.ChatModelAdapter
	lim   *CallLimiter
}

// LimitChatModel returns inner unchanged when lim is nil.
func LimitChatModel(inner adapter.ChatModelAdapter, lim *CallLimiter) adapter.ChatModelAdapter {
	if lim == nil {
		return inner
	}
	return &limitedChatModel{inner: inner, lim: lim}
}

func (l *limitedChatModel) StartConversation(ctx context.Context, systemInstruction string) (model.Conversation, error) {
	conv, err := l.inner.StartConversation(ctx, systemInstruction)
	if err != nil {
		return nil, err
	}
	return &limitedConversation{inner: conv, lim: l.lim}, nil
}

type limitedConversation struct {
	inner model.Conversation
	lim   *CallLimiter
}

func (l *limitedConversation) Send(ctx context.Context, history []model.Turn, message string) (string, error) {
	release := l.lim.acquire()
	defer release()
	return l.inner.Send(ctx, history, message)
}

type limitedEmbedder struct {
	inner adapter.EmbeddingAdapter
	lim   *CallLimiter
}

// LimitEmbedder returns inner unchanged when lim is nil.
func LimitEmbedder(inner adapter.EmbeddingAdapter, lim *CallLimiter) adapter.EmbeddingAdapter {
	if lim == nil {
		return inner
	}
	return &limitedEmbedder{inner: inner, lim: lim}
}

func (l *limitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	release := l.lim.acquire()
	defer release()
	return l.inner.Embed(ctx, text)
}
