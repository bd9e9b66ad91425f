package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // gemini | openai
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIURL       string        `yaml:"openai_url"`
	ChatModel       string        `yaml:"chat_model"`
	EmbeddingModel  string        `yaml:"embedding_model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	Timeout         time.Duration `yaml:"timeout"`          // per chat/embedding call
}

type RetrievalConfig struct {
	Threshold          float64       `yaml:"threshold"`
	MaxContextItems    int           `yaml:"max_context_items"` // per kind
	Timeout            time.Duration `yaml:"timeout"`           // per match call
	ContextTokenBudget int           `yaml:"context_token_budget"` // 0 = unbounded
	TokenEncoding      string        `yaml:"token_encoding"`
}

type SessionConfig struct {
	MaxHistoryTurns int           `yaml:"max_history_turns"` // pairs retained per session
	TTL             time.Duration `yaml:"ttl"`               // 0 = sessions never expire
	ReapInterval    time.Duration `yaml:"reap_interval"`
}

type RateLimitConfig struct {
	PerSession int           `yaml:"per_session"` // sendMessage calls per window, 0 = off
	Window     time.Duration `yaml:"window"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // encrypts logged queries/responses when set
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	if cfg.AI.ChatModel == "" {
		switch cfg.AI.Provider {
		case "openai":
			cfg.AI.ChatModel = "gpt-4o-mini"
		default:
			cfg.AI.ChatModel = "gemini-2.5-flash"
		}
	}
	if cfg.AI.EmbeddingModel == "" {
		switch cfg.AI.Provider {
		case "openai":
			cfg.AI.EmbeddingModel = "text-embedding-3-small"
		default:
			cfg.AI.EmbeddingModel = "text-embedding-004"
		}
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1024
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.Retrieval.Threshold <= 0 {
		cfg.Retrieval.Threshold = 0.75
	}
	if cfg.Retrieval.MaxContextItems <= 0 {
		cfg.Retrieval.MaxContextItems = 3
	}
	if cfg.Retrieval.Timeout <= 0 {
		cfg.Retrieval.Timeout = 5 * time.Second
	}
	if cfg.Retrieval.TokenEncoding == "" {
		cfg.Retrieval.TokenEncoding = "cl100k_base"
	}
	if cfg.Session.MaxHistoryTurns <= 0 {
		cfg.Session.MaxHistoryTurns = 10
	}
	if cfg.Session.ReapInterval <= 0 {
		cfg.Session.ReapInterval = 5 * time.Minute
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}

	// Minimal validation; a broken config fails the process at start.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	switch cfg.AI.Provider {
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return nil, errors.New("ai.gemini_key is required for provider gemini")
		}
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, errors.New("ai.openai_key is required for provider openai")
		}
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}
	if cfg.RateLimit.PerSession > 0 && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required when rate_limit.per_session is set")
	}
	if k := cfg.Security.EncryptionKey; k != "" {
		if n := len(k); n != 16 && n != 24 && n != 32 {
			return nil, fmt.Errorf("security.encryption_key must be 16, 24, or 32 bytes; got %d", n)
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
