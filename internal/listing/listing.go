package listing

import (
	"encoding/json"
	"time"
)

// SubmittedAtLayout é o mesmo formato de Date.toISOString() usado pelo front-end.
const SubmittedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Listing é uma entrada do diretório.
//
// Entradas decodificadas do documento remoto guardam os bytes originais e são
// reemitidas sem alteração (campos desconhecidos incluídos), para que uma
// regravação nunca modifique registros anteriores.
type Listing struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Contact        string   `json:"contact,omitempty"`
	Website        string   `json:"website,omitempty"`
	Province       string   `json:"province,omitempty"`
	PaymentMethods []string `json:"paymentMethods,omitempty"`
	Categories     []string `json:"categories"`
	SubmittedAt    string   `json:"submittedAt,omitempty"`

	raw json.RawMessage
}

type listingFields Listing

func (l *Listing) UnmarshalJSON(b []byte) error {
	var f listingFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*l = Listing(f)
	l.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (l Listing) MarshalJSON() ([]byte, error) {
	if len(l.raw) > 0 {
		return l.raw, nil
	}
	f := listingFields(l)
	f.raw = nil
	return json.Marshal(f)
}

// HasCategory informa se a entrada carrega a tag.
func (l Listing) HasCategory(tag string) bool {
	for _, c := range l.Categories {
		if c == tag {
			return true
		}
	}
	return false
}

// Accept transforma um rascunho já validado em Listing, atribuindo id e data
// de submissão do servidor.
func Accept(d Draft, id string, at time.Time) Listing {
	return Listing{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		Contact:        d.Contact,
		Website:        d.Website,
		Province:       d.Province,
		PaymentMethods: append([]string(nil), d.PaymentMethods...),
		Categories:     append([]string(nil), d.Categories...),
		SubmittedAt:    at.UTC().Format(SubmittedAtLayout),
	}
}

// Collection é o documento armazenado: { "listings": [...] }.
type Collection struct {
	Listings []Listing `json:"listings"`
}

// Empty devolve a coleção usada quando o documento ainda não existe.
func Empty() Collection {
	return Collection{Listings: []Listing{}}
}

// Len devolve o número de entradas.
func (c Collection) Len() int { return len(c.Listings) }

// Append devolve uma nova coleção com l no final.
// A coleção original não é alterada (append-only, ordem de inserção).
func (c Collection) Append(l Listing) Collection {
	out := make([]Listing, 0, len(c.Listings)+1)
	out = append(out, c.Listings...)
	out = append(out, l)
	return Collection{Listings: out}
}

// ContainsID informa se algum registro já usa o id.
func (c Collection) ContainsID(id string) bool {
	if id == "" {
		return false
	}
	for _, l := range c.Listings {
		if l.ID == id {
			return true
		}
	}
	return false
}
