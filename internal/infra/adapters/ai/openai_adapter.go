package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/adapter"
	"shopify-ai-advisor/internal/infra/metrics"
)

var (
	_ adapter.ChatModelAdapter = (*OpenAIAdapter)(nil)
	_ adapter.EmbeddingAdapter = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter serves the chat and embedding ports through the official SDK.
// Also works against OpenAI-compatible gateways via a custom base URL.
type OpenAIAdapter struct {
	client     openai.Client
	chatModel  string
	embedModel string
	maxOut     int64
}

func NewOpenAIAdapter(apiKey, baseURL, chatModel, embedModel string, maxOut int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(opts...),
		chatModel:  chatModel,
		embedModel: embedModel,
		maxOut:     int64(maxOut),
	}, nil
}

func (o *OpenAIAdapter) StartConversation(ctx context.Context, systemInstruction string) (model.Conversation, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, errors.New("openai: empty system instruction")
	}
	return &openaiConversation{o: o, system: systemInstruction}, nil
}

func (o *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(o.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: response carried no usable vector", domain.ErrEmbedding)
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

type openaiConversation struct {
	o      *OpenAIAdapter
	system string
}

func (c *openaiConversation) Send(ctx context.Context, history []model.Turn, message string) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(c.system))
	for _, t := range history {
		if t.Role == model.RoleModel {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	start := time.Now()
	resp, err := c.o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.o.chatModel),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(c.o.maxOut),
	})
	if err != nil {
		metrics.ObserveLLMCall("openai", time.Since(start).Milliseconds(), false)
		lerr := classifyOpenAIError(err)
		metrics.IncLLMFailure("openai", string(lerr.Cause))
		return "", lerr
	}
	metrics.ObserveLLMCall("openai", time.Since(start).Milliseconds(), true)

	if len(resp.Choices) == 0 {
		lerr := domain.NewLLMError(domain.LLMCauseUnknown, errors.New("openai: no choices"))
		metrics.IncLLMFailure("openai", string(domain.LLMCauseUnknown))
		return "", lerr
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		lerr := domain.NewLLMError(domain.LLMCauseSafety, errors.New("openai: response blocked by content filter"))
		metrics.IncLLMFailure("openai", string(domain.LLMCauseSafety))
		return "", lerr
	}
	return choice.Message.Content, nil
}

func classifyOpenAIError(err error) *domain.LLMError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewLLMError(domain.LLMCauseAuth, err)
		}
	}
	return classifyProviderError(err)
}
