package domain

import (
	"context"
	"time"
)

// Event representa uma decisão do rate limit.
//
// Cuidado com cardinalidade: Key não deve virar rótulo de métrica.
type Event struct {
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// Recorder registra decisões. O middleware trata erro como best-effort.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}
