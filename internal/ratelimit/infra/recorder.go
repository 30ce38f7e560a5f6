package infra

import (
	"context"
	"sync"

	"listing-directory/internal/metrics"
	"listing-directory/internal/ratelimit/domain"
)

// PrometheusRecorder conta decisões por rota em ratelimit_decisions_total.
// A chave do cliente nunca vira rótulo.
type PrometheusRecorder struct{}

func (PrometheusRecorder) Record(_ context.Context, ev domain.Event) error {
	result := "denied"
	if ev.Allowed {
		result = "allowed"
	}
	metrics.RateLimitDecisions.WithLabelValues(ev.Path, result).Inc()
	return nil
}

type Counters struct {
	Allowed int64
	Denied  int64
}

// MemoryRecorder é uma implementação simples em memória.
// Útil para testes e desenvolvimento; não faz expiração.
type MemoryRecorder struct {
	mu    sync.Mutex
	total Counters
	byKey map[domain.Key]Counters
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byKey: make(map[domain.Key]Counters)}
}

func (s *MemoryRecorder) Record(_ context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.byKey[ev.Key]
	if ev.Allowed {
		s.total.Allowed++
		k.Allowed++
	} else {
		s.total.Denied++
		k.Denied++
	}
	s.byKey[ev.Key] = k
	return nil
}

func (s *MemoryRecorder) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryRecorder) ByKey(k domain.Key) Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKey[k]
}
