package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"listing-directory/internal/listing"
	"listing-directory/internal/submission/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Receipt é o que o cliente recebe quando a submissão é gravada.
type Receipt struct {
	ID          string
	SubmittedAt string
}

type Service struct {
	Store     domain.CollectionStore
	Validator *listing.Validator
	Publisher domain.Publisher
	Log       *zap.Logger

	Now   func() time.Time
	NewID func() (string, error)

	// ListTTL é por quanto tempo List serve a última coleção lida sem ir ao
	// armazenamento. Leituras concorrentes compartilham um único fetch. 0 desliga.
	ListTTL time.Duration

	reads singleflight.Group
	snap  snapshot
}

type snapshot struct {
	mu   sync.Mutex
	coll listing.Collection
	at   time.Time
	ok   bool
	gen  uint64 // incrementa a cada gravação nossa
}

// NewUUIDv7 gera ids ordenados pelo instante de aceitação.
func NewUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Submit executa uma transação read-modify-write para anexar a entrada.
//
// Faz exatamente uma leitura e no máximo uma escrita. Rascunho inválido não
// toca no armazenamento. Conflito de revisão volta como KindWriteConflict,
// sem retry: o cliente reenviando é quem inicia um novo ciclo.
func (s *Service) Submit(ctx context.Context, d listing.Draft) (Receipt, error) {
	valid, err := s.Validator.Validate(d)
	if err != nil {
		var fe *listing.FieldError
		if errors.As(err, &fe) {
			return Receipt{}, domain.Validation(fe.Field, fe.Reason)
		}
		return Receipt{}, domain.Validation("body", err.Error())
	}

	coll, rev, err := s.Store.FetchCollection(ctx)
	if err != nil {
		return Receipt{}, err
	}

	id, err := s.uniqueID(coll)
	if err != nil {
		return Receipt{}, &domain.Error{Kind: domain.KindInternal, Reason: "generate id", Err: err}
	}
	l := listing.Accept(valid, id, s.now())

	next := coll.Append(l)
	if _, err := s.Store.PersistCollection(ctx, next, rev, CommitMessage(l)); err != nil {
		return Receipt{}, err
	}
	s.remember(next)

	s.publish(ctx, l)
	return Receipt{ID: l.ID, SubmittedAt: l.SubmittedAt}, nil
}

// List devolve as entradas que casam com o filtro, na ordem armazenada.
func (s *Service) List(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(coll), nil
}

// collection lê a coleção para consulta: snapshot recente ou um fetch
// compartilhado entre as chamadas simultâneas.
func (s *Service) collection(ctx context.Context) (listing.Collection, error) {
	if s.ListTTL <= 0 {
		coll, _, err := s.Store.FetchCollection(ctx)
		return coll, err
	}
	if coll, ok := s.fresh(); ok {
		return coll, nil
	}

	v, err, _ := s.reads.Do("collection", func() (any, error) {
		if coll, ok := s.fresh(); ok {
			return coll, nil
		}
		gen := s.generation()
		// quem chegou primeiro não cancela o fetch dos outros
		coll, _, err := s.Store.FetchCollection(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.rememberRead(coll, gen)
		return coll, nil
	})
	if err != nil {
		return listing.Collection{}, err
	}
	return v.(listing.Collection), nil
}

func (s *Service) fresh() (listing.Collection, bool) {
	s.snap.mu.Lock()
	defer s.snap.mu.Unlock()
	if !s.snap.ok || s.now().Sub(s.snap.at) >= s.ListTTL {
		return listing.Collection{}, false
	}
	return s.snap.coll, true
}

func (s *Service) generation() uint64 {
	s.snap.mu.Lock()
	defer s.snap.mu.Unlock()
	return s.snap.gen
}

// remember guarda a coleção que acabamos de gravar.
func (s *Service) remember(coll listing.Collection) {
	if s.ListTTL <= 0 {
		return
	}
	s.snap.mu.Lock()
	defer s.snap.mu.Unlock()
	s.snap.gen++
	s.snap.coll, s.snap.at, s.snap.ok = coll, s.now(), true
}

// rememberRead guarda uma leitura, a menos que uma gravação nossa tenha
// acontecido depois que ela começou (a leitura pode ser anterior à gravação).
func (s *Service) rememberRead(coll listing.Collection, gen uint64) {
	s.snap.mu.Lock()
	defer s.snap.mu.Unlock()
	if s.snap.gen != gen {
		return
	}
	s.snap.coll, s.snap.at, s.snap.ok = coll, s.now(), true
}

// CommitMessage descreve a mudança no histórico do repositório.
func CommitMessage(l listing.Listing) string {
	if l.Website != "" {
		return fmt.Sprintf("Add new listing: %s (%s)", l.Title, l.Website)
	}
	return "Add new listing: " + l.Title
}

func (s *Service) uniqueID(coll listing.Collection) (string, error) {
	gen := s.NewID
	if gen == nil {
		gen = NewUUIDv7
	}
	for i := 0; i < 3; i++ {
		id, err := gen()
		if err != nil {
			return "", err
		}
		if !coll.ContainsID(id) {
			return id, nil
		}
	}
	return "", errors.New("could not generate an unused id")
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) publish(ctx context.Context, l listing.Listing) {
	if s.Publisher == nil {
		return
	}
	// a gravação já aconteceu; o cancelamento da requisição não deve perder o evento
	if err := s.Publisher.ListingAccepted(context.WithoutCancel(ctx), l); err != nil && s.Log != nil {
		s.Log.Warn("listing accepted event not published", zap.String("id", l.ID), zap.Error(err))
	}
}
