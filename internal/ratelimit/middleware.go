package ratelimit

import (
	"context"
	"net/http"
	"time"

	"listing-directory/internal/ratelimit/application"
	"listing-directory/internal/ratelimit/domain"
)

type Options struct {
	Store  domain.WindowStore
	Limit  int
	Window time.Duration
	Now    func() time.Time

	Recorder           domain.Recorder
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	// OnReject escreve a resposta de bloqueio. Retry-After já está setado.
	// Padrão: 429 em texto puro.
	OnReject func(w http.ResponseWriter, r *http.Request, dec domain.Decision)
	// OnError recebe falhas do backend da janela (a requisição segue).
	OnError func(r *http.Request, key string, err error)

	AddRateLimitHeaders bool
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request, _ domain.Decision) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	svc := application.Service{
		Store:  opts.Store,
		Limit:  opts.Limit,
		Window: opts.Window,
		Now:    opts.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := svc.Decide(r.Context(), domain.Key(key))
			if err != nil && opts.OnError != nil {
				opts.OnError(r, key, err)
			}
			if opts.Recorder != nil {
				_ = opts.Recorder.Record(context.WithoutCancel(r.Context()), domain.Event{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				if dec.Remaining >= 0 {
					w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				}
			}

			if !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter.Seconds()))
				opts.OnReject(w, r, dec)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
