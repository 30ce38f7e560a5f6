package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listing-directory/internal/contents/memory"
	"listing-directory/internal/listing"
	"listing-directory/internal/listingstore"
	"listing-directory/internal/metrics"
	"listing-directory/internal/ratelimit"
	"listing-directory/internal/ratelimit/infra"
	"listing-directory/internal/submission"
	"listing-directory/internal/submission/application"

	"go.uber.org/zap"
)

// Servidor local: mesmo roteador do listingd, com o documento em memória.
// Nada é enviado ao GitHub; útil para testar o formulário.
func main() {
	addr := flag.String("addr", ":8081", "listen address")
	seed := flag.String("seed", "", "optional JSON file used as the initial listings document")
	limit := flag.Int("limit", 10, "submissions per client per window")
	window := flag.Duration("window", time.Hour, "rate limit window")
	flag.Parse()

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		*addr = v
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	metrics.Init("listingd-dev", "dev", "development")

	const docPath = "data/listings.json"
	store := memory.New()
	if *seed != "" {
		b, err := os.ReadFile(*seed)
		if err != nil {
			log.Fatal("read seed", zap.Error(err))
		}
		if _, err := listingstore.Decode(b); err != nil {
			log.Fatal("seed is not a listings document", zap.Error(err))
		}
		store.Seed(docPath, b)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mw := infra.NewMemoryWindow(infra.WithIdleTTL(*window))
	mw.StartJanitor(ctx)
	stats := infra.NewMemoryRecorder()

	svc := &application.Service{
		Store:     listingstore.New(store, docPath),
		Validator: listing.NewValidator(listing.DefaultCatalog()),
		Log:       log,
		ListTTL:   5 * time.Second,
	}

	h := submission.NewRouter(svc, log, submission.Options{
		Development: true,
		RateLimit: ratelimit.Options{
			Store:               mw,
			Limit:               *limit,
			Window:              *window,
			Recorder:            stats,
			TrustXForwardedFor:  true,
			AddRateLimitHeaders: true,
		},
		Concurrency: ratelimit.ConcurrencyOptions{Max: 1, AcquireTimeout: 5 * time.Second},
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listingd-dev listening", zap.String("addr", *addr), zap.Int("limit", *limit), zap.Duration("window", *window))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}

	total := stats.Total()
	log.Info("listingd-dev stopped",
		zap.Int("documentWrites", store.Writes()),
		zap.Int64("allowed", total.Allowed),
		zap.Int64("denied", total.Denied),
	)
}
