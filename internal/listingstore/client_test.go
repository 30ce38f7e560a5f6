package listingstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"listing-directory/internal/contents"
	"listing-directory/internal/contents/github"
	"listing-directory/internal/contents/memory"
	"listing-directory/internal/listing"
	"listing-directory/internal/submission/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docPath = "data/listings.json"

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (contents.Document, error) {
	return contents.Document{}, f.err
}

func (f failingStore) Put(context.Context, string, []byte, contents.Revision, string) (contents.Revision, error) {
	return "", f.err
}

func sample() listing.Collection {
	return listing.Collection{Listings: []listing.Listing{
		{
			ID:             "0190a1b2-0000-7000-8000-000000000001",
			Title:          "Bar Lightning",
			Description:    "Cañas y sats",
			Contact:        "bar@example.com",
			Website:        "https://bar.example.com",
			Province:       "Valencia",
			PaymentMethods: []string{"Lightning Network"},
			Categories:     []string{"Restauración", "Ocio"},
			SubmittedAt:    "2025-01-02T03:04:05.000Z",
		},
		{Title: "Tienda", Description: "d", Categories: []string{"Tecnología"}},
	}}
}

func TestFetchCollection_MissingDocumentIsEmpty(t *testing.T) {
	c := New(memory.New(), docPath)

	coll, rev, err := c.FetchCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, coll.Len())
	assert.NotNil(t, coll.Listings)
	assert.Empty(t, rev)
}

func TestFetchCollection_CorruptDocument(t *testing.T) {
	s := memory.New()
	s.Seed(docPath, []byte(`{"listings": [`))
	c := New(s, docPath)

	_, _, err := c.FetchCollection(context.Background())
	assert.Equal(t, domain.KindStoreCorrupt, domain.KindOf(err))
}

func TestFetchCollection_MalformedPayloadIsCorrupt(t *testing.T) {
	c := New(failingStore{err: contents.ErrMalformed}, docPath)

	_, _, err := c.FetchCollection(context.Background())
	assert.Equal(t, domain.KindStoreCorrupt, domain.KindOf(err))
}

func TestFetchCollection_StoreErrorIsUnavailable(t *testing.T) {
	c := New(failingStore{err: &contents.StatusError{Op: "get", Path: docPath, Status: 503}}, docPath)

	_, _, err := c.FetchCollection(context.Background())
	e, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindStoreUnavailable, e.Kind)
	assert.Equal(t, 503, e.Status)
	assert.Equal(t, docPath, e.Path)
}

func TestPersistCollection_CreatesThenUpdates(t *testing.T) {
	s := memory.New()
	c := New(s, docPath)
	ctx := context.Background()

	coll, rev, err := c.FetchCollection(ctx)
	require.NoError(t, err)

	rev1, err := c.PersistCollection(ctx, coll.Append(listing.Listing{Title: "a"}), rev, "create")
	require.NoError(t, err)
	require.NotEmpty(t, rev1)

	coll, rev, err = c.FetchCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev1, rev)
	require.Equal(t, 1, coll.Len())
	assert.Equal(t, "a", coll.Listings[0].Title)
}

func TestPersistCollection_StaleRevisionIsWriteConflict(t *testing.T) {
	s := memory.New()
	c := New(s, docPath)
	ctx := context.Background()
	t0 := s.Seed(docPath, []byte(`{"listings":[]}`))

	first, _, err := c.FetchCollection(ctx)
	require.NoError(t, err)
	second := first

	_, err = c.PersistCollection(ctx, first.Append(listing.Listing{Title: "first"}), t0, "first")
	require.NoError(t, err)

	_, err = c.PersistCollection(ctx, second.Append(listing.Listing{Title: "second"}), t0, "second")
	assert.Equal(t, domain.KindWriteConflict, domain.KindOf(err))

	stored, _, err := c.FetchCollection(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Len())
	assert.Equal(t, "first", stored.Listings[0].Title)
}

func TestPersistCollection_TransportErrorIsUnavailable(t *testing.T) {
	c := New(failingStore{err: errors.New("dial tcp: connection refused")}, docPath)

	_, err := c.PersistCollection(context.Background(), listing.Empty(), "", "m")
	assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
}

func TestCodec_RoundTripThroughTransportFormat(t *testing.T) {
	orig := sample()

	body, err := Encode(orig)
	require.NoError(t, err)
	wire := github.EncodeContent(body)

	raw, err := github.DecodeContent(wire)
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)

	require.Equal(t, orig.Len(), got.Len())
	for i := range orig.Listings {
		want, _ := json.Marshal(orig.Listings[i])
		have, _ := json.Marshal(got.Listings[i])
		assert.JSONEq(t, string(want), string(have), "entry %d", i)
		assert.Equal(t, orig.Listings[i].Title, got.Listings[i].Title)
		assert.Equal(t, orig.Listings[i].Categories, got.Listings[i].Categories)
	}

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, string(body), string(again))
}

func TestEncode_PrettyPrintsEmptyCollection(t *testing.T) {
	b, err := Encode(listing.Collection{})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"listings\": []\n}\n", string(b))
}

func TestDecode_NullListingsBecomesEmpty(t *testing.T) {
	c, err := Decode([]byte(`{"listings":null}`))
	require.NoError(t, err)
	assert.NotNil(t, c.Listings)
	assert.Equal(t, 0, c.Len())
}
