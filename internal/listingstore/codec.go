package listingstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"listing-directory/internal/listing"
)

// Encode serializa a coleção em JSON indentado com dois espaços, como o
// arquivo versionado no repositório.
func Encode(c listing.Collection) ([]byte, error) {
	if c.Listings == nil {
		c.Listings = []listing.Listing{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode lê o documento armazenado. Um documento sem "listings" (ou com null)
// vira uma coleção vazia; qualquer outro problema é erro.
func Decode(b []byte) (listing.Collection, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return listing.Empty(), nil
	}
	var c listing.Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return listing.Collection{}, fmt.Errorf("decode collection: %w", err)
	}
	if c.Listings == nil {
		c.Listings = []listing.Listing{}
	}
	return c, nil
}
