package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listing-directory/internal/config"
	"listing-directory/internal/contents/github"
	"listing-directory/internal/listing"
	"listing-directory/internal/listingstore"
	"listing-directory/internal/metrics"
	"listing-directory/internal/notify"
	"listing-directory/internal/ratelimit"
	rldomain "listing-directory/internal/ratelimit/domain"
	"listing-directory/internal/ratelimit/infra"
	"listing-directory/internal/submission"
	"listing-directory/internal/submission/application"
	"listing-directory/internal/submission/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(zap.NewExample(), "config error", err)
	}
	if err := cfg.RequireStore(); err != nil {
		fatal(zap.NewExample(), "config error", err)
	}

	log, err := newLogger(cfg.Development())
	if err != nil {
		fatal(zap.NewExample(), "logger error", err)
	}
	defer func() { _ = log.Sync() }()

	metrics.Init("listingd", version, cfg.Environment)

	catalog := listing.DefaultCatalog()
	if cfg.CatalogPath != "" {
		if catalog, err = listing.LoadCatalog(cfg.CatalogPath); err != nil {
			fatal(log, "catalog error", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	window, closeWindow := newWindowStore(ctx, cfg.RateLimit, log)
	defer closeWindow()

	var publisher domain.Publisher = notify.Noop{}
	if cfg.NATSEnabled() {
		nc, err := notify.Connect(cfg.NATSURL, "listingd")
		if err != nil {
			fatal(log, "nats connect error", err)
		}
		defer nc.Close()
		publisher = notify.NewNATSPublisher(nc, cfg.NATSSubject)
	}

	gh := github.New(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token,
		github.WithBaseURL(cfg.GitHub.APIURL),
		github.WithBranch(cfg.GitHub.Branch),
		github.WithTimeout(cfg.GitHub.Timeout),
		github.WithRPS(cfg.GitHub.RPS),
		github.WithMaxWait(cfg.GitHub.MaxWait),
		github.WithUserAgent("listingd/"+version),
	)

	store := listingstore.New(gh, cfg.GitHub.Path)
	svc := &application.Service{
		Store:     store,
		Validator: listing.NewValidator(catalog),
		Publisher: publisher,
		Log:       log,
		ListTTL:   cfg.ListCacheTTL,
	}

	h := submission.NewRouter(svc, log, submission.Options{
		SubmitPath:  cfg.SubmitPath,
		ListPath:    cfg.ListPath,
		Development: cfg.Development(),
		RateLimit: ratelimit.Options{
			Store:               window,
			Limit:               cfg.RateLimit.Max,
			Window:              cfg.RateLimit.Window,
			Recorder:            infra.PrometheusRecorder{},
			KeyHeader:           cfg.RateLimit.KeyHeader,
			TrustXForwardedFor:  cfg.RateLimit.TrustXFF,
			AddRateLimitHeaders: true,
		},
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.SubmitConcurrency,
			AcquireTimeout: cfg.SubmitTimeout,
		},
		ListLimit:  cfg.RateLimit.ListMax,
		ListWindow: cfg.RateLimit.ListWindow,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listingd listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("env", cfg.Environment),
		zap.String("repo", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo),
		zap.String("document", store.Path()),
		zap.String("branch", cfg.GitHub.Branch),
	)
	log.Info("rate limit",
		zap.String("backend", cfg.RateLimit.Backend),
		zap.Int("max", cfg.RateLimit.Max),
		zap.Duration("window", cfg.RateLimit.Window),
		zap.String("keyHeader", cfg.RateLimit.KeyHeader),
		zap.Bool("trustXFF", cfg.RateLimit.TrustXFF),
		zap.Int("submitConcurrency", cfg.SubmitConcurrency),
		zap.Int("listMax", cfg.RateLimit.ListMax),
		zap.Duration("listWindow", cfg.RateLimit.ListWindow),
		zap.Duration("listCacheTTL", cfg.ListCacheTTL),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(log, "server error", err)
	}
	log.Info("listingd stopped")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newWindowStore escolhe o backend da janela deslizante. Com redis o estado
// sobrevive a restart e é compartilhado entre instâncias.
func newWindowStore(ctx context.Context, rc config.RateLimit, log *zap.Logger) (rldomain.WindowStore, func()) {
	if rc.Backend != config.BackendRedis {
		mw := infra.NewMemoryWindow(infra.WithIdleTTL(rc.Window))
		mw.StartJanitor(ctx)
		return mw, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.RedisAddr,
		Password: rc.RedisPassword,
		DB:       rc.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		_ = rdb.Close()
		fatal(log, "redis ping error", err)
	}

	return infra.NewRedisWindow(rdb, infra.WithRedisPrefix(rc.RedisPrefix)), func() { _ = rdb.Close() }
}

func fatal(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.String("kind", domain.KindOf(err).String()), zap.Error(err))
	_ = log.Sync()
	os.Exit(1)
}
