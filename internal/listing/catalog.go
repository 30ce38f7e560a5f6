package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Catalog contém os conjuntos fechados aceitos pelo formulário.
type Catalog struct {
	Provinces      []string `json:"provinces"`
	PaymentMethods []string `json:"paymentMethods"`
	Categories     []string `json:"categories"`
}

// DefaultCatalog devolve o catálogo embutido no binário.
func DefaultCatalog() Catalog {
	return Catalog{
		Provinces: []string{
			"A Coruña", "Álava", "Albacete", "Alicante", "Almería", "Asturias", "Ávila",
			"Badajoz", "Baleares", "Barcelona", "Burgos", "Cáceres", "Cádiz", "Cantabria",
			"Castellón", "Ceuta", "Ciudad Real", "Córdoba", "Cuenca", "Girona", "Granada",
			"Guadalajara", "Guipúzcoa", "Huelva", "Huesca", "Jaén", "La Rioja", "Las Palmas",
			"León", "Lleida", "Lugo", "Madrid", "Málaga", "Melilla", "Murcia", "Navarra",
			"Ourense", "Palencia", "Pontevedra", "Salamanca", "Santa Cruz de Tenerife",
			"Segovia", "Sevilla", "Soria", "Tarragona", "Teruel", "Toledo", "Valencia",
			"Valladolid", "Vizcaya", "Zamora", "Zaragoza", "Online",
		},
		PaymentMethods: []string{
			"Bitcoin On-chain", "Lightning Network", "Liquid Network",
		},
		Categories: []string{
			"Alimentación", "Restauración", "Alojamiento", "Tecnología", "Servicios",
			"Salud", "Educación", "Moda", "Hogar", "Ocio", "Transporte", "Inmobiliaria",
			"Asesoría", "Comercio online",
		},
	}
}

// LoadCatalog lê um catálogo em JSON. Todos os conjuntos devem ser não vazios.
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if len(c.Provinces) == 0 || len(c.PaymentMethods) == 0 || len(c.Categories) == 0 {
		return Catalog{}, errors.New("catalog must define provinces, paymentMethods and categories")
	}
	return c, nil
}

func (c Catalog) hasProvince(v string) bool      { return contains(c.Provinces, v) }
func (c Catalog) hasPaymentMethod(v string) bool { return contains(c.PaymentMethods, v) }
func (c Catalog) hasCategory(v string) bool      { return contains(c.Categories, v) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
