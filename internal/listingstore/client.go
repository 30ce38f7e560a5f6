// Package listingstore implementa o read-modify-write da coleção de listings
// sobre um contents.Store, com concorrência otimista via revisão.
package listingstore

import (
	"context"
	"errors"
	"time"

	"listing-directory/internal/contents"
	"listing-directory/internal/listing"
	"listing-directory/internal/metrics"
	"listing-directory/internal/submission/domain"
)

// Client não guarda estado entre chamadas: todo o estado vive no documento remoto.
type Client struct {
	store contents.Store
	path  string
}

func New(store contents.Store, path string) *Client {
	return &Client{store: store, path: path}
}

// Path devolve o caminho do documento.
func (c *Client) Path() string { return c.path }

// FetchCollection lê o documento. Se ele não existir, devolve coleção vazia e
// revisão vazia.
func (c *Client) FetchCollection(ctx context.Context) (listing.Collection, contents.Revision, error) {
	start := time.Now()
	doc, err := c.store.Get(ctx, c.path)
	observe("fetch", start, err)

	switch {
	case errors.Is(err, contents.ErrNotFound):
		return listing.Empty(), "", nil
	case errors.Is(err, contents.ErrMalformed):
		return listing.Collection{}, "", domain.StoreCorrupt("fetch", c.path, err)
	case err != nil:
		return listing.Collection{}, "", domain.StoreUnavailable("fetch", c.path, contents.StatusOf(err), err)
	}

	coll, err := Decode(doc.Content)
	if err != nil {
		return listing.Collection{}, "", domain.StoreCorrupt("fetch", c.path, err)
	}
	return coll, doc.Revision, nil
}

// PersistCollection grava a coleção inteira condicionada a rev.
// Revisão desatualizada vira KindWriteConflict; não há retry aqui.
func (c *Client) PersistCollection(ctx context.Context, coll listing.Collection, rev contents.Revision, message string) (contents.Revision, error) {
	body, err := Encode(coll)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindInternal, Op: "persist", Path: c.path, Err: err}
	}

	start := time.Now()
	next, err := c.store.Put(ctx, c.path, body, rev, message)
	observe("persist", start, err)

	switch {
	case errors.Is(err, contents.ErrConflict):
		return "", domain.WriteConflict(c.path, err)
	case err != nil:
		return "", domain.StoreUnavailable("persist", c.path, contents.StatusOf(err), err)
	}
	return next, nil
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, contents.ErrNotFound):
		status = "not_found"
	case errors.Is(err, contents.ErrConflict):
		status = "conflict"
	default:
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
