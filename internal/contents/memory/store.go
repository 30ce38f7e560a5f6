// Package memory implementa contents.Store em memória, com revisões calculadas
// como o sha de blob do git. Usado pelo binário de desenvolvimento e nos testes.
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"sync"

	"listing-directory/internal/contents"
)

type Store struct {
	mu     sync.Mutex
	docs   map[string]contents.Document
	writes int
}

func New() *Store {
	return &Store{docs: make(map[string]contents.Document)}
}

// Seed grava um documento sem checar revisão.
func (s *Store) Seed(path string, content []byte) contents.Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev := BlobRevision(content)
	s.docs[path] = contents.Document{Path: path, Content: append([]byte(nil), content...), Revision: rev}
	return rev
}

func (s *Store) Get(ctx context.Context, path string) (contents.Document, error) {
	if err := ctx.Err(); err != nil {
		return contents.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[path]
	if !ok {
		return contents.Document{}, contents.ErrNotFound
	}
	doc.Content = append([]byte(nil), doc.Content...)
	return doc, nil
}

func (s *Store) Put(ctx context.Context, path string, content []byte, prev contents.Revision, _ string) (contents.Revision, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.docs[path]
	switch {
	case exists && cur.Revision != prev:
		return "", contents.ErrConflict
	case !exists && prev != "":
		return "", contents.ErrConflict
	}

	rev := BlobRevision(content)
	s.docs[path] = contents.Document{Path: path, Content: append([]byte(nil), content...), Revision: rev}
	s.writes++
	return rev, nil
}

// Writes devolve quantas escritas condicionais tiveram sucesso.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// BlobRevision calcula sha1("blob <len>\x00<content>"), como o git.
func BlobRevision(content []byte) contents.Revision {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)
	return contents.Revision(hex.EncodeToString(h.Sum(nil)))
}
