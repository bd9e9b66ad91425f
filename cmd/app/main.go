package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-ai-advisor/internal/config"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/adapter"
	aiAdapters "shopify-ai-advisor/internal/infra/adapters/ai"
	pg "shopify-ai-advisor/internal/infra/db/postgres"
	"shopify-ai-advisor/internal/infra/logging"
	"shopify-ai-advisor/internal/infra/memstore"
	"shopify-ai-advisor/internal/infra/metrics"
	red "shopify-ai-advisor/internal/infra/redis"
	"shopify-ai-advisor/internal/infra/sched"
	"shopify-ai-advisor/internal/infra/security"
	"shopify-ai-advisor/internal/infra/tokenizer"
	"shopify-ai-advisor/internal/infra/web"
	"shopify-ai-advisor/internal/infra/worker"
	"shopify-ai-advisor/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (console logs, unredacted queries)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres (content store + interaction log) ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional, rate limiting only) ----
	var limiter web.RateLimiter
	if cfg.RateLimit.PerSession > 0 {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	}

	// ---- Encryption (optional, interaction log at rest) ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
	}

	// ---- AI adapters ----
	var (
		chatModel adapter.ChatModelAdapter
		embedder  adapter.EmbeddingAdapter
	)
	switch cfg.AI.Provider {
	case "gemini":
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.ChatModel, cfg.AI.EmbeddingModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		chatModel, embedder = g, g
	case "openai":
		o, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIURL, cfg.AI.ChatModel, cfg.AI.EmbeddingModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		chatModel, embedder = o, o
	}
	logger.Info().Str("provider", cfg.AI.Provider).Str("chat_model", cfg.AI.ChatModel).
		Str("embedding_model", cfg.AI.EmbeddingModel).Msg("AI adapter ready")

	callLimiter := aiAdapters.NewCallLimiter(cfg.AI.ConcurrentLimit)
	chatModel = aiAdapters.LimitChatModel(chatModel, callLimiter)
	embedder = aiAdapters.LimitEmbedder(embedder, callLimiter)

	// ---- Token counter (optional, context budget) ----
	var counter model.TokenCounter
	if cfg.Retrieval.ContextTokenBudget > 0 {
		tc, err := tokenizer.New(cfg.Retrieval.TokenEncoding)
		if err != nil {
			logger.Fatal().Err(err).Msg("tokenizer")
		}
		counter = tc
	}

	// ---- Repositories ----
	sessions := memstore.NewSessionStore()
	contentRepo := pg.NewContentRepo(pool)
	logRepo := pg.NewInteractionLogRepo(pool, encSvc)

	// ---- Worker pool (fire-and-forget logging) ----
	pool4 := worker.NewPool(4, logger)
	pool4.Start(ctx)
	defer pool4.Stop()

	// ---- Use case ----
	advisor := usecase.NewAdvisorUseCase(
		sessions, chatModel, embedder, contentRepo, logRepo, pool4, counter,
		usecase.Options{
			MatchThreshold:     cfg.Retrieval.Threshold,
			MaxContextItems:    cfg.Retrieval.MaxContextItems,
			MaxHistoryPairs:    cfg.Session.MaxHistoryTurns,
			ChatTimeout:        cfg.AI.Timeout,
			RetrievalTimeout:   cfg.Retrieval.Timeout,
			ContextTokenBudget: cfg.Retrieval.ContextTokenBudget,
			Dev:                cfg.Runtime.Dev,
		},
		logger,
	)

	// ---- Session reaper (optional) ----
	if cfg.Session.TTL > 0 {
		reaper := sched.NewSessionReaper(cfg.Session.ReapInterval, cfg.Session.TTL, sessions, logger)
		go func() { _ = reaper.Run(ctx) }()
	}

	// ---- HTTP server ----
	srv := web.NewServer(advisor, limiter, cfg.RateLimit.PerSession, cfg.RateLimit.Window, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
