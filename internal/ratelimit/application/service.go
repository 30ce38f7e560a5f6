package application

import (
	"context"
	"time"

	"listing-directory/internal/ratelimit/domain"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

// Service aplica o limite por chave sobre uma janela deslizante.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store  domain.WindowStore
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

// Decide consulta a janela da chave. Se o backend falhar a requisição é
// permitida (fail-open) e o erro volta para quem chamou registrar.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.Window <= 0 {
		s.Window = DefaultWindow
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	dec, err := s.Store.Allow(ctx, key, s.Limit, s.Window, now)
	if err != nil {
		return domain.Decision{Allowed: true, Limit: s.Limit, Remaining: -1}, err
	}
	return dec, nil
}
