package infra

import (
	"context"
	"sync"

	"listing-directory/internal/ratelimit/domain"
)

// ChanPool é um semáforo de capacidade fixa sobre um channel bufferizado.
type ChanPool struct {
	sem      chan struct{}
	onChange func(inFlight int)
}

type ChanPoolOption func(*ChanPool)

// WithInFlightHook é chamado a cada aquisição/liberação com o total ocupado
// (ex: para alimentar um gauge).
func WithInFlightHook(fn func(inFlight int)) ChanPoolOption {
	return func(p *ChanPool) { p.onChange = fn }
}

func NewChanPool(max int, opts ...ChanPoolOption) *ChanPool {
	p := &ChanPool{sem: make(chan struct{}, max)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ domain.SlotPool = (*ChanPool)(nil)

// Acquire implementa domain.SlotPool. O release é idempotente.
func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	p.notify()

	var once sync.Once
	return func() {
		once.Do(func() {
			<-p.sem
			p.notify()
		})
	}, true
}

// InFlight devolve quantas vagas estão ocupadas agora.
func (p *ChanPool) InFlight() int { return len(p.sem) }

func (p *ChanPool) notify() {
	if p.onChange != nil {
		p.onChange(len(p.sem))
	}
}
