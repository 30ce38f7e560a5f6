package domain

import (
	"context"

	"listing-directory/internal/contents"
	"listing-directory/internal/listing"
)

// CollectionStore é o Listing Store Client visto pela aplicação.
//
// FetchCollection devolve a coleção atual e sua revisão (vazia quando o
// documento ainda não existe). PersistCollection grava condicionalmente à
// revisão lida; conflito vem como KindWriteConflict e não há retry interno.
type CollectionStore interface {
	FetchCollection(ctx context.Context) (listing.Collection, contents.Revision, error)
	PersistCollection(ctx context.Context, c listing.Collection, rev contents.Revision, message string) (contents.Revision, error)
}

// Publisher avisa interessados que uma entrada foi aceita. Best-effort.
type Publisher interface {
	ListingAccepted(ctx context.Context, l listing.Listing) error
}
