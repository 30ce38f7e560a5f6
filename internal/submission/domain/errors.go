package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindMethodNotAllowed
	KindRateLimited
	KindValidation
	KindStoreUnavailable
	KindStoreCorrupt
	KindWriteConflict
	KindConfigurationIncomplete
)

func (k Kind) String() string {
	switch k {
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindStoreCorrupt:
		return "store_corrupt"
	case KindWriteConflict:
		return "write_conflict"
	case KindConfigurationIncomplete:
		return "configuration_incomplete"
	default:
		return "internal"
	}
}

// Expected informa se o erro é esperado (culpa do cliente) e não precisa de
// log em nível de erro.
func (k Kind) Expected() bool {
	return k == KindMethodNotAllowed || k == KindRateLimited || k == KindValidation
}

// Error carrega o Kind e o contexto necessário para diagnóstico.
//
// Field/Reason só são usados em KindValidation. Status é o status HTTP devolvido
// pelo armazenamento remoto (0 se não houve resposta).
type Error struct {
	Kind   Kind
	Field  string
	Reason string

	Op     string
	Path   string
	Status int

	RetryAfter time.Duration

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s %s", e.Field, e.Reason)
	} else if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " (%s %s", e.Op, e.Path)
		if e.Status != 0 {
			fmt.Fprintf(&b, " status=%d", e.Status)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf devolve o Kind de err. Erros fora da taxonomia são KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError devolve o *Error em err, se houver.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func MethodNotAllowed(method string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Reason: "method " + method + " not allowed"}
}

func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Reason: "too many submissions", RetryAfter: retryAfter}
}

func Validation(field, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason}
}

func StoreUnavailable(op, path string, status int, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Path: path, Status: status, Err: err}
}

func StoreCorrupt(op, path string, err error) *Error {
	return &Error{Kind: KindStoreCorrupt, Op: op, Path: path, Err: err}
}

func WriteConflict(path string, err error) *Error {
	return &Error{Kind: KindWriteConflict, Op: "persist", Path: path, Err: err}
}

func ConfigurationIncomplete(missing ...string) *Error {
	return &Error{Kind: KindConfigurationIncomplete, Reason: "missing " + strings.Join(missing, ", ")}
}
