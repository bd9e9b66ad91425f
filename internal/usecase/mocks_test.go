package usecase

import (
	"context"
	"sync"

	"shopify-ai-advisor/internal/domain/model"
)

// fakeChatModel hands out fakeConversations and records the system
// instruction each one was created with.
type fakeChatModel struct {
	mu           sync.Mutex
	instructions []string
	startErr     error
	conv         *fakeConversation
}

func (f *fakeChatModel) StartConversation(ctx context.Context, systemInstruction string) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.instructions = append(f.instructions, systemInstruction)
	if f.conv == nil {
		f.conv = &fakeConversation{reply: "fake reply"}
	}
	return f.conv, nil
}

type sentCall struct {
	history []model.Turn
	message string
}

// fakeConversation records every Send and replies with a fixed string, a
// scripted function, or an injected error.
type fakeConversation struct {
	mu      sync.Mutex
	calls   []sentCall
	reply   string
	replyFn func(history []model.Turn, message string) (string, error)
	err     error
}

func (f *fakeConversation) Send(ctx context.Context, history []model.Turn, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{history: history, message: message})
	if f.err != nil {
		return "", f.err
	}
	if f.replyFn != nil {
		return f.replyFn(history, message)
	}
	return f.reply, nil
}

func (f *fakeConversation) lastCall() sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeConversation) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeContentRepo struct {
	mu        sync.Mutex
	products  []model.RetrievedItem
	articles  []model.RetrievedItem
	prodErr   error
	artErr    error
	prodCalls int
	artCalls  int
}

func (f *fakeContentRepo) MatchProducts(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prodCalls++
	if f.prodErr != nil {
		return nil, f.prodErr
	}
	return f.products, nil
}

func (f *fakeContentRepo) MatchArticles(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artCalls++
	if f.artErr != nil {
		return nil, f.artErr
	}
	return f.articles, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	records []*model.InteractionRecord
	err     error
}

func (f *fakeLogRepo) Append(ctx context.Context, rec *model.InteractionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeLogRepo) all() []*model.InteractionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.InteractionRecord, len(f.records))
	copy(out, f.records)
	return out
}

// syncRunner executes submitted tasks inline so tests can assert on log
// records without racing the worker pool.
type syncRunner struct{}

func (syncRunner) Submit(task func(ctx context.Context) error) error {
	return task(context.Background())
}
