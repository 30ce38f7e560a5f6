package infra

import (
	"context"
	"sync"
	"time"

	"listing-directory/internal/ratelimit/domain"
)

// MemoryWindow guarda, por chave, os instantes das requisições aceitas.
//
// O estado vive só no processo: zera no restart e não é compartilhado entre
// instâncias. Use RedisWindow quando isso importar.
type MemoryWindow struct {
	mu           sync.Mutex
	hits         map[string][]time.Time
	maxWindow    time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type MemoryWindowOption func(*MemoryWindow)

// WithIdleTTL define depois de quanto tempo sem requisições uma chave é
// descartada. Nunca é menor que a maior janela já consultada.
func WithIdleTTL(d time.Duration) MemoryWindowOption {
	return func(s *MemoryWindow) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryWindowOption {
	return func(s *MemoryWindow) { s.cleanupEvery = d }
}

func NewMemoryWindow(opts ...MemoryWindowOption) *MemoryWindow {
	s := &MemoryWindow{
		hits:         make(map[string][]time.Time),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow implementa domain.WindowStore.
func (s *MemoryWindow) Allow(_ context.Context, key domain.Key, limit int, window time.Duration, now time.Time) (domain.Decision, error) {
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	if window > s.maxWindow {
		s.maxWindow = window
	}

	k := string(key)
	hits := prune(s.hits[k], cutoff)

	if len(hits) >= limit {
		s.hits[k] = hits
		retry := time.Duration(0)
		if len(hits) > 0 {
			retry = hits[0].Add(window).Sub(now)
		}
		return domain.Decision{Allowed: false, Limit: limit, Remaining: 0, RetryAfter: retry}, nil
	}

	hits = append(hits, now)
	s.hits[k] = hits
	return domain.Decision{Allowed: true, Limit: limit, Remaining: limit - len(hits)}, nil
}

// prune descarta os instantes <= cutoff. hits está em ordem crescente.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}

// Count devolve quantos registros a chave tem hoje (inclusive já expirados
// ainda não limpos). Usado em testes e diagnóstico.
func (s *MemoryWindow) Count(key domain.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits[string(key)])
}

// Cleanup remove chaves cujo último registro é mais antigo que o TTL ocioso.
func (s *MemoryWindow) Cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := s.idleTTL
	if s.maxWindow > ttl {
		ttl = s.maxWindow
	}
	cutoff := now.Add(-ttl)

	for k, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryWindow) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Cleanup(now)
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem acoplar
// o janitor ao resto da API de context.
type DoneContext interface {
	Done() <-chan struct{}
}
