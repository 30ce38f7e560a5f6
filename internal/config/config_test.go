package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"listing-directory/internal/submission/domain"
)

var allKeys = []string{
	"LISTEN_ADDR", "APP_ENV", "SUBMIT_PATH", "LIST_PATH", "CATALOG_PATH",
	"SUBMIT_CONCURRENCY", "SUBMIT_ACQUIRE_TIMEOUT", "LIST_CACHE_TTL",
	"GITHUB_TOKEN", "GITHUB_OWNER", "GITHUB_REPO", "GITHUB_BRANCH", "GITHUB_API_URL",
	"LISTINGS_PATH", "GITHUB_RPS", "GITHUB_MAX_WAIT", "GITHUB_TIMEOUT",
	"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "RATE_LIMIT_BACKEND", "RATE_KEY_HEADER", "TRUST_XFF",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RATE_LIMIT_PREFIX",
	"LIST_RATE_LIMIT_MAX", "LIST_RATE_LIMIT_WINDOW",
	"NATS_URL", "NATS_SUBJECT",
}

// clearEnv garante que o ambiente da máquina não vaze para o teste.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestRead_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.Max != 10 || cfg.RateLimit.Window != time.Hour {
		t.Fatalf("expected 10 per 1h, got %d per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Backend != BackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.RateLimit.Backend)
	}
	if cfg.SubmitPath != "/api/listings/submit" || cfg.ListPath != "/api/listings" {
		t.Fatalf("unexpected paths %q %q", cfg.SubmitPath, cfg.ListPath)
	}
	if cfg.SubmitConcurrency != 1 {
		t.Fatalf("expected submit concurrency 1, got %d", cfg.SubmitConcurrency)
	}
	if cfg.Development() {
		t.Fatalf("expected production by default")
	}
	if cfg.NATSEnabled() {
		t.Fatalf("expected nats disabled without NATS_URL")
	}
	if cfg.RateLimit.ListMax != 60 || cfg.RateLimit.ListWindow != time.Minute {
		t.Fatalf("expected list limit 60 per 1m, got %d per %s", cfg.RateLimit.ListMax, cfg.RateLimit.ListWindow)
	}
	if cfg.ListCacheTTL != 30*time.Second || cfg.GitHub.MaxWait != 5*time.Second {
		t.Fatalf("unexpected list cache ttl %s / github max wait %s", cfg.ListCacheTTL, cfg.GitHub.MaxWait)
	}
}

func TestRead_KeyHeaderDefaultsToPlatformClientIP(t *testing.T) {
	clearEnv(t)

	cfg, err := Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.KeyHeader != DefaultKeyHeader {
		t.Fatalf("expected %q, got %q", DefaultKeyHeader, cfg.RateLimit.KeyHeader)
	}

	t.Setenv("RATE_KEY_HEADER", "none")
	cfg, err = Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.KeyHeader != "" {
		t.Fatalf("expected none to disable the header, got %q", cfg.RateLimit.KeyHeader)
	}

	t.Setenv("RATE_KEY_HEADER", "X-Real-Ip")
	cfg, _ = Read()
	if cfg.RateLimit.KeyHeader != "X-Real-Ip" {
		t.Fatalf("expected custom header, got %q", cfg.RateLimit.KeyHeader)
	}
}

func TestRead_WindowInMilliseconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_WINDOW", "3600000")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.Window != time.Hour {
		t.Fatalf("expected 1h, got %s", cfg.RateLimit.Window)
	}
}

func TestRequireStore_NamesMissingVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_x")
	t.Setenv("GITHUB_REPO", "directory")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = cfg.RequireStore()
	if domain.KindOf(err) != domain.KindConfigurationIncomplete {
		t.Fatalf("expected configuration_incomplete, got %v", err)
	}
	e, _ := domain.AsError(err)
	if e.Reason != "missing GITHUB_OWNER, LISTINGS_PATH" {
		t.Fatalf("unexpected reason %q", e.Reason)
	}
}

func TestRequireStore_Complete(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_x")
	t.Setenv("GITHUB_OWNER", "someone")
	t.Setenv("GITHUB_REPO", "directory")
	t.Setenv("LISTINGS_PATH", "/data/listings.json")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireStore(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GitHub.Path != "data/listings.json" {
		t.Fatalf("expected leading slash trimmed, got %q", cfg.GitHub.Path)
	}
}

func TestRead_RedisBackendNeedsAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_BACKEND", "redis")

	_, err := Read()
	if domain.KindOf(err) != domain.KindConfigurationIncomplete {
		t.Fatalf("expected configuration_incomplete, got %v", err)
	}
}

func TestRead_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RATE_LIMIT_MAX":     "0",
		"RATE_LIMIT_BACKEND": "etcd",
		"SUBMIT_PATH":        "api/submit",
		"LIST_PATH":          "/api/listings/submit",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			if _, err := Read(); err == nil {
				t.Fatalf("expected error for %s=%q", k, v)
			}
		})
	}
}

func TestLoad_ReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{"GITHUB_OWNER", "RATE_LIMIT_MAX"} {
		// godotenv só preenche variáveis ausentes
		_ = os.Unsetenv(k)
	}
	t.Setenv("APP_ENV", "development")

	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	body := "GITHUB_OWNER=from-file\nRATE_LIMIT_MAX=3\nAPP_ENV=production\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("GITHUB_OWNER")
		_ = os.Unsetenv("RATE_LIMIT_MAX")
	})

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GitHub.Owner != "from-file" || cfg.RateLimit.Max != 3 {
		t.Fatalf("expected values from .env, got owner=%q max=%d", cfg.GitHub.Owner, cfg.RateLimit.Max)
	}
	if !cfg.Development() {
		t.Fatalf("expected environment to win over .env")
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
