// Package contents define o contrato do armazenamento remoto de documentos:
// leitura por caminho e escrita condicional guardada por um token de revisão.
//
// Implementações: github (API de contents do GitHub) e memory (testes/dev).
package contents

import (
	"context"
	"errors"
	"fmt"
)

// Revision identifica a versão exata de um documento (no GitHub, o blob sha).
// Vazia significa "documento ainda não existe".
type Revision string

// Document é o conteúdo já decodificado (sem base64) e sua revisão.
type Document struct {
	Path     string
	Content  []byte
	Revision Revision
}

// Store lê e grava documentos inteiros.
//
// Put só deve ter sucesso se prev for a revisão atual do documento (ou vazia
// quando o documento não existe). Caso contrário devolve ErrConflict.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Put(ctx context.Context, path string, content []byte, prev Revision, message string) (Revision, error)
}

var (
	ErrNotFound = errors.New("contents: document not found")
	ErrConflict = errors.New("contents: revision mismatch")
	// ErrMalformed indica que o armazenamento devolveu um payload que não
	// pôde ser decodificado (ex.: base64 inválido).
	ErrMalformed = errors.New("contents: malformed payload")
)

// StatusError é uma resposta não-2xx que não se encaixa em ErrNotFound/ErrConflict.
type StatusError struct {
	Op     string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("contents: %s %s: status %d: %s", e.Op, e.Path, e.Status, e.Body)
}

// StatusOf extrai o status HTTP de err, quando houver.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Clone devolve uma cópia que não compartilha Content.
func (d Document) Clone() Document {
	d.Content = append([]byte(nil), d.Content...)
	return d
}
