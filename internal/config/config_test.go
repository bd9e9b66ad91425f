package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
database:
  url: "postgres://localhost/advisor"
ai:
  provider: gemini
  gemini_key: "test-key"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port: %d", cfg.Server.Port)
	}
	if cfg.AI.ChatModel != "gemini-2.5-flash" {
		t.Errorf("chat model: %q", cfg.AI.ChatModel)
	}
	if cfg.AI.EmbeddingModel != "text-embedding-004" {
		t.Errorf("embedding model: %q", cfg.AI.EmbeddingModel)
	}
	if cfg.Retrieval.Threshold != 0.75 {
		t.Errorf("threshold: %v", cfg.Retrieval.Threshold)
	}
	if cfg.Retrieval.MaxContextItems != 3 {
		t.Errorf("max context items: %d", cfg.Retrieval.MaxContextItems)
	}
	if cfg.Session.MaxHistoryTurns != 10 {
		t.Errorf("max history turns: %d", cfg.Session.MaxHistoryTurns)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("ai timeout: %v", cfg.AI.Timeout)
	}
	if cfg.Runtime.Dev {
		t.Error("dev must default off")
	}
}

func TestLoadConfigOpenAIDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
database:
  url: "postgres://localhost/advisor"
ai:
  provider: openai
  openai_key: "test-key"
`), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.ChatModel != "gpt-4o-mini" {
		t.Errorf("chat model: %q", cfg.AI.ChatModel)
	}
	if cfg.AI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("embedding model: %q", cfg.AI.EmbeddingModel)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag must carry through")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"missing database url",
			`ai: {provider: gemini, gemini_key: k}`,
			"database.url",
		},
		{
			"missing provider key",
			`database: {url: "postgres://x"}` + "\n" + `ai: {provider: gemini}`,
			"gemini_key",
		},
		{
			"unknown provider",
			`database: {url: "postgres://x"}` + "\n" + `ai: {provider: cohere, gemini_key: k}`,
			"unknown ai.provider",
		},
		{
			"rate limit without redis",
			minimalConfig + "\n" + `rate_limit: {per_session: 5}`,
			"redis.url",
		},
		{
			"bad encryption key length",
			minimalConfig + "\n" + `security: {encryption_key: "tooshort"}`,
			"encryption_key",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.yaml), false)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
