package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/adapter"
	"shopify-ai-advisor/internal/domain/ports/repository"
	"shopify-ai-advisor/internal/infra/logging"
	"shopify-ai-advisor/internal/infra/metrics"
)

// Compile-time check
var _ AdvisorUseCase = (*advisorUC)(nil)

// AdvisorUseCase is the request-facing facade over the conversation pipeline:
// session lifecycle, semantic retrieval, prompt grounding, and history growth.
type AdvisorUseCase interface {
	Initialize(ctx context.Context, storeName, storeDomain string) (text, sessionID string, err error)
	SendMessage(ctx context.Context, sessionID, userMessage string) (reply string, err error)
	EndSession(ctx context.Context, sessionID string) error
}

// TaskRunner detaches best-effort work (interaction logging) from the
// response path. Implemented by the worker pool.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

// Options carries the tunables the orchestrator needs per turn.
type Options struct {
	MatchThreshold     float64
	MaxContextItems    int // per kind
	MaxHistoryPairs    int
	ChatTimeout        time.Duration
	RetrievalTimeout   time.Duration
	ContextTokenBudget int // 0 disables the budget
	Dev                bool
}

type advisorUC struct {
	sessions repository.SessionStore
	chat     adapter.ChatModelAdapter
	embedder adapter.EmbeddingAdapter
	content  repository.ContentRepository
	logs     repository.InteractionLogRepository
	runner   TaskRunner
	counter  model.TokenCounter // nil when no token budget is configured
	opts     Options
	log      *zerolog.Logger
}

func NewAdvisorUseCase(
	sessions repository.SessionStore,
	chat adapter.ChatModelAdapter,
	embedder adapter.EmbeddingAdapter,
	content repository.ContentRepository,
	logs repository.InteractionLogRepository,
	runner TaskRunner,
	counter model.TokenCounter,
	opts Options,
	logger *zerolog.Logger,
) *advisorUC {
	l := logger.With().Str("component", "AdvisorUC").Logger()
	return &advisorUC{
		sessions: sessions,
		chat:     chat,
		embedder: embedder,
		content:  content,
		logs:     logs,
		runner:   runner,
		counter:  counter,
		opts:     opts,
		log:      &l,
	}
}

func (u *advisorUC) Initialize(ctx context.Context, storeName, storeDomain string) (string, string, error) {
	storeName = strings.TrimSpace(storeName)
	storeDomain = strings.TrimSpace(storeDomain)
	if storeName == "" || storeDomain == "" {
		return "", "", domain.ErrInvalidArgument
	}

	conv, err := u.chat.StartConversation(ctx, systemInstruction(storeName, storeDomain))
	if err != nil {
		return "", "", err
	}
	s := model.NewSession(newSessionID(), storeName, storeDomain, conv)

	// Kick off with the named bootstrap turn so the model produces the
	// welcome reply before the widget shows anything.
	chatCtx, cancel := context.WithTimeout(ctx, u.opts.ChatTimeout)
	defer cancel()
	welcome, err := conv.Send(chatCtx, nil, BootstrapMessage)
	if err != nil {
		return "", "", err
	}

	s.AddTurn(model.RoleUser, BootstrapMessage)
	s.AddTurn(model.RoleModel, welcome)
	if err := u.sessions.Create(ctx, s); err != nil {
		return "", "", err
	}
	metrics.SetActiveSessions(u.sessions.Count())

	u.logInteraction(s.ID, BootstrapMessage, welcomeContextSummary, welcome)
	logging.With(logging.WithSessID(ctx, s.ID), u.log).Info().
		Str("store", storeName).Msg("session initialized")
	return welcome, s.ID, nil
}

func (u *advisorUC) SendMessage(ctx context.Context, sessionID, userMessage string) (string, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", domain.ErrInvalidArgument
	}
	ctx = logging.WithSessID(ctx, sessionID)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "AdvisorUC.SendMessage")()

	var reply string
	err := u.sessions.With(ctx, sessionID, func(s *model.Session) error {
		contextBlock := u.buildContext(ctx, userMessage)
		prompt := composeGroundedMessage(contextBlock, userMessage)
		history := s.HistoryView()

		chatCtx, cancel := context.WithTimeout(ctx, u.opts.ChatTimeout)
		defer cancel()
		text, err := s.Conversation.Send(chatCtx, history, prompt)
		if err != nil {
			// No turns are appended for a response that never happened;
			// the history keeps its user/model alternation intact.
			return err
		}

		s.AddTurn(model.RoleUser, userMessage)
		s.AddTurn(model.RoleModel, text)
		s.TrimHistory(u.opts.MaxHistoryPairs)

		u.logInteraction(s.ID, userMessage, contextBlock, text)
		reply = text
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("query", logging.Redact(userMessage, u.opts.Dev)).Msg("send message failed")
		return "", err
	}
	return reply, nil
}

func (u *advisorUC) EndSession(ctx context.Context, sessionID string) error {
	if err := u.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.SetActiveSessions(u.sessions.Count())
	logging.With(logging.WithSessID(ctx, sessionID), u.log).Info().Msg("session ended")
	return nil
}

// buildContext runs the retrieval half of the turn: embed, then match
// products and articles as independent failure domains. Every failure
// degrades; this method never aborts the turn.
func (u *advisorUC) buildContext(ctx context.Context, userMessage string) string {
	log := logging.With(ctx, u.log)

	embedCtx, cancel := context.WithTimeout(ctx, u.opts.ChatTimeout)
	defer cancel()
	embedding, err := u.embedder.Embed(embedCtx, userMessage)
	if err != nil {
		metrics.IncEmbeddingFailure()
		log.Warn().Err(err).Msg("embedding failed; continuing without semantic context")
		return model.EmbeddingUnavailableContext
	}

	var products, articles []model.RetrievedItem

	prodCtx, cancelProd := context.WithTimeout(ctx, u.opts.RetrievalTimeout)
	defer cancelProd()
	products, err = u.content.MatchProducts(prodCtx, embedding, u.opts.MatchThreshold, u.opts.MaxContextItems)
	if err != nil {
		metrics.IncRetrievalFailure(string(model.KindProduct))
		log.Warn().Err(err).Msg("product retrieval failed; continuing")
		products = nil
	} else {
		metrics.AddRetrievedItems(string(model.KindProduct), len(products))
	}

	artCtx, cancelArt := context.WithTimeout(ctx, u.opts.RetrievalTimeout)
	defer cancelArt()
	articles, err = u.content.MatchArticles(artCtx, embedding, u.opts.MatchThreshold, u.opts.MaxContextItems)
	if err != nil {
		metrics.IncRetrievalFailure(string(model.KindArticle))
		log.Warn().Err(err).Msg("article retrieval failed; continuing")
		articles = nil
	} else {
		metrics.AddRetrievedItems(string(model.KindArticle), len(articles))
	}

	return model.AssembleContext(products, articles, u.opts.MaxContextItems, u.counter, u.opts.ContextTokenBudget)
}

// logInteraction submits the audit record to the worker pool and forgets it.
// A full queue or a failed insert never reaches the caller.
func (u *advisorUC) logInteraction(sessionID, userQuery, contextSummary, aiResponse string) {
	rec := &model.InteractionRecord{
		SessionID:      sessionID,
		UserQuery:      userQuery,
		ContextSummary: contextSummary,
		AIResponse:     aiResponse,
		CreatedAt:      time.Now(),
	}
	err := u.runner.Submit(func(ctx context.Context) error {
		if err := u.logs.Append(ctx, rec); err != nil {
			metrics.IncInteractionLogFailure()
			u.log.Warn().Err(err).Str("session_id", rec.SessionID).Msg("interaction log write failed")
		}
		return nil
	})
	if err != nil {
		metrics.IncInteractionLogFailure()
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("interaction log submit failed")
	}
}

// newSessionID builds an unguessable id: millisecond timestamp plus a random
// suffix. Ids are never reused; a deleted id stays invalid forever.
func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
