package submission

import (
	"net/http"
	"time"

	"listing-directory/internal/metrics"
	"listing-directory/internal/ratelimit"
	rldomain "listing-directory/internal/ratelimit/domain"
	"listing-directory/internal/submission/application"
	"listing-directory/internal/submission/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultSubmitPath = "/api/listings/submit"
	DefaultListPath   = "/api/listings"

	DefaultListLimit  = 60
	DefaultListWindow = time.Minute
)

type Options struct {
	SubmitPath   string
	ListPath     string
	Development  bool
	MaxBodyBytes int64

	// RateLimit é aplicado na submissão. OnReject e OnError são preenchidos
	// aqui para seguir o formato de erro do serviço.
	RateLimit   ratelimit.Options
	Concurrency ratelimit.ConcurrencyOptions

	// A consulta usa o mesmo backend e a mesma identificação do cliente, com
	// limite próprio e chaves separadas ("list:<cliente>").
	ListLimit  int
	ListWindow time.Duration

	// DisableMetricsEndpoint remove /metrics (ex: quando exposto em outra porta).
	DisableMetricsEndpoint bool
}

// NewRouter monta o http.Handler completo do serviço.
func NewRouter(svc *application.Service, log *zap.Logger, opts Options) http.Handler {
	if opts.SubmitPath == "" {
		opts.SubmitPath = DefaultSubmitPath
	}
	if opts.ListPath == "" {
		opts.ListPath = DefaultListPath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.ListWindow <= 0 {
		opts.ListWindow = DefaultListWindow
	}

	h := handlers{
		svc:     svc,
		rs:      responder{log: log, dev: opts.Development},
		maxBody: opts.MaxBodyBytes,
	}

	rl := opts.RateLimit
	rl.OnReject = func(w http.ResponseWriter, r *http.Request, dec rldomain.Decision) {
		h.rs.writeError(w, r, scopeSubmit, domain.RateLimited(dec.RetryAfter))
	}
	rl.OnError = func(r *http.Request, key string, err error) {
		log.Warn("rate limit backend unavailable, allowing request", zap.String("client", key), zap.Error(err))
	}

	baseKey := rl.KeyFn
	if baseKey == nil {
		baseKey = ratelimit.DefaultKeyFunc(rl.KeyHeader, rl.TrustXForwardedFor)
	}
	listRL := rl
	listRL.Limit = opts.ListLimit
	listRL.Window = opts.ListWindow
	listRL.KeyFn = func(r *http.Request) string { return "list:" + baseKey(r) }
	listRL.OnReject = func(w http.ResponseWriter, r *http.Request, dec rldomain.Decision) {
		h.rs.writeError(w, r, scopeList, domain.RateLimited(dec.RetryAfter))
	}

	conc := opts.Concurrency
	if conc.Route == "" {
		conc.Route = opts.SubmitPath
	}
	if conc.OnReject == nil {
		conc.OnReject = func(w http.ResponseWriter, r *http.Request) {
			metrics.SubmissionsTotal.WithLabelValues("busy").Inc()
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Server busy, please try again"})
		}
	}

	var submit http.Handler = http.HandlerFunc(h.submit)
	submit = ratelimit.ConcurrencyMiddleware(conc)(submit)
	submit = ratelimit.Middleware(rl)(submit)
	submit = h.methodGate(http.MethodPost, scopeSubmit, submit)
	submit = metrics.Middleware(opts.SubmitPath)(submit)

	var list http.Handler = http.HandlerFunc(h.list)
	list = ratelimit.Middleware(listRL)(list)
	list = h.methodGate(http.MethodGet, scopeList, list)
	list = metrics.Middleware(opts.ListPath)(list)

	mux := http.NewServeMux()
	mux.Handle(opts.SubmitPath, submit)
	mux.Handle(opts.ListPath, list)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if !opts.DisableMetricsEndpoint {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}
