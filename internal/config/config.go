// Package config lê a configuração do processo a partir do ambiente.
//
// Um arquivo .env no diretório atual é carregado antes, se existir; variáveis
// já definidas no ambiente têm precedência sobre ele.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"listing-directory/internal/submission/domain"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	// DefaultKeyHeader é o header com o IP do cliente que a plataforma de
	// hospedagem (Netlify) injeta. Fora dela, configure RATE_KEY_HEADER com o
	// header do seu proxy ou "none" para usar o endereço da conexão: um header
	// que o próprio cliente pode enviar deixa ele escolher o seu bucket.
	DefaultKeyHeader = "X-Nf-Client-Connection-Ip"
)

type GitHub struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string
	APIURL  string
	Path    string
	RPS     float64
	MaxWait time.Duration
	Timeout time.Duration
}

type RateLimit struct {
	Max       int
	Window    time.Duration
	Backend   string
	KeyHeader string
	TrustXFF  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ListMax    int
	ListWindow time.Duration
}

type Config struct {
	ListenAddr  string
	Environment string
	SubmitPath  string
	ListPath    string
	CatalogPath string

	SubmitConcurrency int
	SubmitTimeout     time.Duration
	ListCacheTTL      time.Duration

	GitHub    GitHub
	RateLimit RateLimit

	NATSURL     string
	NATSSubject string
}

func (c Config) Development() bool { return c.Environment == "development" }

// Load carrega .env (opcional) e lê o ambiente.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Read()
}

// Read lê apenas o ambiente já carregado.
func Read() (Config, error) {
	cfg := Config{}
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.Environment = getenvDefault("APP_ENV", "production")
	cfg.SubmitPath = getenvDefault("SUBMIT_PATH", "/api/listings/submit")
	cfg.ListPath = getenvDefault("LIST_PATH", "/api/listings")
	cfg.CatalogPath = getenvDefault("CATALOG_PATH", "")
	cfg.SubmitConcurrency = getenvIntDefault("SUBMIT_CONCURRENCY", 1)
	cfg.SubmitTimeout = getenvDurationDefault("SUBMIT_ACQUIRE_TIMEOUT", 10*time.Second)
	cfg.ListCacheTTL = getenvDurationDefault("LIST_CACHE_TTL", 30*time.Second)

	cfg.GitHub = GitHub{
		Token:   getenvDefault("GITHUB_TOKEN", ""),
		Owner:   getenvDefault("GITHUB_OWNER", ""),
		Repo:    getenvDefault("GITHUB_REPO", ""),
		Branch:  getenvDefault("GITHUB_BRANCH", ""),
		APIURL:  getenvDefault("GITHUB_API_URL", "https://api.github.com"),
		Path:    strings.TrimPrefix(getenvDefault("LISTINGS_PATH", ""), "/"),
		RPS:     getenvFloatDefault("GITHUB_RPS", 5),
		MaxWait: getenvDurationDefault("GITHUB_MAX_WAIT", 5*time.Second),
		Timeout: getenvDurationDefault("GITHUB_TIMEOUT", 15*time.Second),
	}

	cfg.RateLimit = RateLimit{
		Max:           getenvIntDefault("RATE_LIMIT_MAX", 10),
		Window:        getenvDurationDefault("RATE_LIMIT_WINDOW", time.Hour),
		Backend:       strings.ToLower(getenvDefault("RATE_LIMIT_BACKEND", BackendMemory)),
		KeyHeader:     keyHeader(getenvDefault("RATE_KEY_HEADER", DefaultKeyHeader)),
		TrustXFF:      getenvBoolDefault("TRUST_XFF", false),
		RedisAddr:     getenvDefault("REDIS_ADDR", ""),
		RedisPassword: getenvDefault("REDIS_PASSWORD", ""),
		RedisDB:       getenvIntDefault("REDIS_DB", 0),
		RedisPrefix:   getenvDefault("RATE_LIMIT_PREFIX", "ratelimit:window"),
		ListMax:       getenvIntDefault("LIST_RATE_LIMIT_MAX", 60),
		ListWindow:    getenvDurationDefault("LIST_RATE_LIMIT_WINDOW", time.Minute),
	}

	cfg.NATSURL = getenvDefault("NATS_URL", "")
	cfg.NATSSubject = getenvDefault("NATS_SUBJECT", "listings.accepted")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireStore confere as credenciais do armazenamento remoto. Fica fora de
// Read porque o binário de desenvolvimento roda sem elas.
func (c Config) RequireStore() error {
	var missing []string
	for _, kv := range []struct{ k, v string }{
		{"GITHUB_TOKEN", c.GitHub.Token},
		{"GITHUB_OWNER", c.GitHub.Owner},
		{"GITHUB_REPO", c.GitHub.Repo},
		{"LISTINGS_PATH", c.GitHub.Path},
	} {
		if kv.v == "" {
			missing = append(missing, kv.k)
		}
	}
	if len(missing) > 0 {
		return domain.ConfigurationIncomplete(missing...)
	}
	return nil
}

func (c Config) validate() error {
	if c.RateLimit.Max <= 0 {
		return errors.New("RATE_LIMIT_MAX must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be > 0")
	}
	switch c.RateLimit.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RateLimit.RedisAddr == "" {
			return domain.ConfigurationIncomplete("REDIS_ADDR")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q", BackendMemory, BackendRedis)
	}
	if c.RateLimit.ListMax <= 0 || c.RateLimit.ListWindow <= 0 {
		return errors.New("LIST_RATE_LIMIT_MAX and LIST_RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ListCacheTTL < 0 {
		return errors.New("LIST_CACHE_TTL must be >= 0")
	}
	if c.SubmitConcurrency < 0 {
		return errors.New("SUBMIT_CONCURRENCY must be >= 0")
	}
	if c.GitHub.RPS < 0 {
		return errors.New("GITHUB_RPS must be >= 0")
	}
	if !strings.HasPrefix(c.SubmitPath, "/") || !strings.HasPrefix(c.ListPath, "/") {
		return errors.New("SUBMIT_PATH and LIST_PATH must start with /")
	}
	if c.SubmitPath == c.ListPath {
		return errors.New("SUBMIT_PATH and LIST_PATH must differ")
	}
	return nil
}

// keyHeader trata "none" como "sem header": a chave vira o endereço da conexão.
func keyHeader(v string) string {
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

// NATSEnabled informa se eventos devem ser publicados.
func (c Config) NATSEnabled() bool { return c.NATSURL != "" }
