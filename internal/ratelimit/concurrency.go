package ratelimit

import (
	"errors"
	"net/http"
	"time"

	"listing-directory/internal/metrics"
	"listing-directory/internal/ratelimit/application"
	"listing-directory/internal/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	// OnReject escreve a resposta quando não há vaga. Padrão: 503.
	OnReject func(w http.ResponseWriter, r *http.Request)
	// Route rotula o gauge de requisições em voo. Vazio desliga o gauge.
	Route string
}

// ConcurrencyMiddleware limita quantas requisições passam ao mesmo tempo.
// No endpoint de submissão, Max=1 serializa o read-modify-write dentro da
// instância, então conflitos só acontecem entre instâncias diferentes.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	}

	var poolOpts []infra.ChanPoolOption
	if opts.Route != "" {
		g := metrics.InFlightRequests.WithLabelValues(opts.Route)
		poolOpts = append(poolOpts, infra.WithInFlightHook(func(n int) { g.Set(float64(n)) }))
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max, poolOpts...),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if errors.Is(err, application.ErrNoSlot) {
					opts.OnReject(w, r)
				}
				// cliente desistiu: não há para quem responder
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
