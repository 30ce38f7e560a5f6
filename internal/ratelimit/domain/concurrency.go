package domain

import "context"

// SlotPool limita trabalho simultâneo (aqui: submissões em voo por processo).
//
// Acquire espera por uma vaga até o ctx acabar; ok=false quando não conseguiu.
// O release devolvido libera a vaga.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
