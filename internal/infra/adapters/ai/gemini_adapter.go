package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/adapter"
	"shopify-ai-advisor/internal/infra/metrics"
)

var (
	_ adapter.ChatModelAdapter = (*GeminiAdapter)(nil)
	_ adapter.EmbeddingAdapter = (*GeminiAdapter)(nil)
)

// GeminiAdapter serves both the chat and the embedding port using the
// official SDK.
type GeminiAdapter struct {
	client     *genai.Client
	chatModel  string
	embedModel string
	maxOut     int32
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, chatModel, embedModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:     c,
		chatModel:  chatModel,
		embedModel: embedModel,
		maxOut:     int32(maxOut),
	}, nil
}

func (g *GeminiAdapter) StartConversation(ctx context.Context, systemInstruction string) (model.Conversation, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, errors.New("gemini: empty system instruction")
	}
	return &geminiConversation{g: g, system: systemInstruction}, nil
}

func (g *GeminiAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}
	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: text}}},
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: response carried no usable vector", domain.ErrEmbedding)
	}
	return resp.Embeddings[0].Values, nil
}

// geminiConversation is the model handle bound to one session. It keeps only
// the fixed system instruction; history is owned by the session and passed
// explicitly on every send, so the SDK chat is rebuilt per call.
type geminiConversation struct {
	g      *GeminiAdapter
	system string
}

func (c *geminiConversation) Send(ctx context.Context, history []model.Turn, message string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: c.g.maxOut,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.system}},
		},
	}

	start := time.Now()
	chat, err := c.g.client.Chats.Create(ctx, c.g.chatModel, cfg, toGenAIHistory(history))
	if err != nil {
		return "", c.fail(err, start)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", c.fail(err, start)
	}
	metrics.ObserveLLMCall("gemini", time.Since(start).Milliseconds(), true)

	text, blocked := extractGeminiText(resp)
	if blocked {
		lerr := domain.NewLLMError(domain.LLMCauseSafety, errors.New("gemini: response blocked by safety filters"))
		metrics.IncLLMFailure("gemini", string(domain.LLMCauseSafety))
		return "", lerr
	}
	if text == "" {
		lerr := domain.NewLLMError(domain.LLMCauseUnknown, errors.New("gemini: empty response"))
		metrics.IncLLMFailure("gemini", string(domain.LLMCauseUnknown))
		return "", lerr
	}
	return text, nil
}

func (c *geminiConversation) fail(err error, start time.Time) error {
	metrics.ObserveLLMCall("gemini", time.Since(start).Milliseconds(), false)
	lerr := classifyProviderError(err)
	metrics.IncLLMFailure("gemini", string(lerr.Cause))
	return lerr
}

func extractGeminiText(resp *genai.GenerateContentResponse) (text string, blocked bool) {
	if resp == nil {
		return "", false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason == genai.BlockedReasonSafety {
		return "", true
	}
	if len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", true
	}
	if cand.Content == nil {
		return "", false
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), false
}

func toGenAIHistory(turns []model.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == model.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	return out
}
