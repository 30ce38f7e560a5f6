package application

import (
	"context"
	"errors"
	"time"

	"listing-directory/internal/ratelimit/domain"
)

// ErrNoSlot indica que não houve vaga dentro do AcquireTimeout.
var ErrNoSlot = errors.New("ratelimit: no free slot")

// ConcurrencyService limita quantas submissões ficam em voo ao mesmo tempo,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - AcquireTimeout <= 0: espera até o ctx da requisição cancelar.
//   - AcquireTimeout > 0: espera no máximo o timeout.
//
// Devolve ErrNoSlot quando o timeout estoura, ou o erro do ctx quando o
// cliente desistiu antes.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if ok {
		return release, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoSlot
}
