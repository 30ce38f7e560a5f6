package memory

import (
	"context"
	"errors"
	"testing"

	"listing-directory/internal/contents"
)

func TestStore_GetMissingReturnsNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "data/listings.json")
	if !errors.Is(err, contents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CreateWithoutRevision(t *testing.T) {
	s := New()
	ctx := context.Background()

	rev, err := s.Put(ctx, "p", []byte("v1"), "", "create")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := s.Get(ctx, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Revision != rev || string(doc.Content) != "v1" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestStore_StaleRevisionConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()
	t0 := s.Seed("p", []byte("v0"))

	if _, err := s.Put(ctx, "p", []byte("v1"), t0, "first"); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}
	if _, err := s.Put(ctx, "p", []byte("v2"), t0, "second"); !errors.Is(err, contents.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale revision, got %v", err)
	}
	doc, _ := s.Get(ctx, "p")
	if string(doc.Content) != "v1" {
		t.Fatalf("expected first write to survive, got %q", doc.Content)
	}
}

func TestStore_MissingRevisionOnExistingDocumentConflicts(t *testing.T) {
	s := New()
	s.Seed("p", []byte("v0"))

	if _, err := s.Put(context.Background(), "p", []byte("v1"), "", "blind"); !errors.Is(err, contents.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestBlobRevision_MatchesGit(t *testing.T) {
	// git hash-object de um arquivo vazio
	if got := BlobRevision(nil); got != "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" {
		t.Fatalf("unexpected empty blob sha %s", got)
	}
}
