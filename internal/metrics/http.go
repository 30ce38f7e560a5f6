package metrics

import (
	"net/http"
	"strconv"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware registra contagem e duração por rota. route é um rótulo fixo
// (não o path da requisição) para manter a cardinalidade baixa.
func Middleware(route string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			method := methodLabel(r.Method)
			HttpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
			HttpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// methodLabel limita o rótulo aos métodos padrão; qualquer outro token que o
// cliente mandar vira "other".
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return m
	}
	return "other"
}
