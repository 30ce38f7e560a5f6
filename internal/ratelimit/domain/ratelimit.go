package domain

import (
	"context"
	"time"
)

type Key string

// Decision é o resultado de uma consulta à janela deslizante.
type Decision struct {
	Allowed bool
	Limit   int
	// Remaining é quantas requisições ainda cabem na janela depois desta.
	Remaining int
	// RetryAfter é quanto falta para a requisição mais antiga sair da janela.
	// Só é preenchido quando bloqueia.
	RetryAfter time.Duration
}

// WindowStore conta requisições por chave em uma janela deslizante.
//
// Allow conta os registros em (now-window, now]. Se a contagem for menor que
// limit, registra now e permite. Caso contrário nega sem registrar a tentativa.
// Implementações compartilhadas (ex: Redis) sobrevivem a restart e valem para
// várias instâncias; a de memória serve para instância única e testes.
type WindowStore interface {
	Allow(ctx context.Context, key Key, limit int, window time.Duration, now time.Time) (Decision, error)
}
