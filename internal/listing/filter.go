package listing

import "strings"

// Filter reproduz o filtro do diretório: todas as tags selecionadas devem
// estar em Categories e o título deve conter a palavra-chave (sem diferenciar
// maiúsculas de minúsculas).
type Filter struct {
	Tags    []string
	Keyword string
}

// IsZero informa se o filtro não restringe nada.
func (f Filter) IsZero() bool {
	return len(f.Tags) == 0 && strings.TrimSpace(f.Keyword) == ""
}

func (f Filter) Match(l Listing) bool {
	for _, t := range f.Tags {
		if !l.HasCategory(t) {
			return false
		}
	}
	kw := strings.ToLower(strings.TrimSpace(f.Keyword))
	return strings.Contains(strings.ToLower(l.Title), kw)
}

// Apply devolve as entradas que casam com o filtro, na ordem armazenada.
func (f Filter) Apply(c Collection) []Listing {
	if f.IsZero() {
		return append([]Listing{}, c.Listings...)
	}
	out := make([]Listing, 0, len(c.Listings))
	for _, l := range c.Listings {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}
