package listing

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limites de tamanho, contados em caracteres.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MaxContactLen     = 100
)

// Draft é o payload recebido do cliente, ainda não confiável.
//
// URL é o nome antigo do campo website; Normalize o move para Website.
// ID e SubmittedAt enviados pelo cliente são ignorados.
type Draft struct {
	Title          string   `json:"title" validate:"required,max=100"`
	Description    string   `json:"description" validate:"required,max=500"`
	Contact        string   `json:"contact" validate:"required,max=100"`
	Website        string   `json:"website" validate:"omitempty,http_url"`
	URL            string   `json:"url,omitempty" validate:"-"`
	Province       string   `json:"province" validate:"required,province"`
	PaymentMethods []string `json:"paymentMethods" validate:"required,min=1,dive,payment_method"`
	Categories     []string `json:"categories" validate:"required,min=1,dive,category"`
}

// Normalize remove espaços, resolve o alias url e elimina valores repetidos
// nas listas mantendo a primeira ocorrência.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Contact = strings.TrimSpace(d.Contact)
	d.Website = strings.TrimSpace(d.Website)
	if d.Website == "" {
		d.Website = strings.TrimSpace(d.URL)
	}
	d.URL = ""
	d.Province = strings.TrimSpace(d.Province)
	d.PaymentMethods = dedup(d.PaymentMethods)
	d.Categories = dedup(d.Categories)
	return d
}

func dedup(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// FieldError descreve a primeira verificação que falhou.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

// Validator valida rascunhos contra um catálogo.
type Validator struct {
	v *validator.Validate
}

// NewValidator registra as tags province, payment_method e category ligadas
// ao catálogo informado.
func NewValidator(c Catalog) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		return c.hasProvince(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return c.hasPaymentMethod(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return c.hasCategory(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate normaliza d e devolve o rascunho normalizado. Em caso de falha o
// erro é um *FieldError com o primeiro campo inválido, na ordem da struct.
func (v *Validator) Validate(d Draft) (Draft, error) {
	d = d.Normalize()
	err := v.v.Struct(d)
	if err == nil {
		return d, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return d, &FieldError{Field: "body", Reason: err.Error()}
	}
	return d, describe(verrs[0])
}

func describe(fe validator.FieldError) *FieldError {
	field := fe.Field()
	// "categories[2]" -> "categories"
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	fe2 := &FieldError{Field: field}
	switch fe.Tag() {
	case "required":
		fe2.Reason = "is required"
	case "max":
		fe2.Reason = "must be at most " + fe.Param() + " characters"
	case "min":
		fe2.Reason = "must contain at least " + fe.Param() + " value"
	case "http_url":
		fe2.Reason = "must be a valid http(s) URL"
	case "province":
		fe2.Reason = "is not a known province"
	case "payment_method":
		fe2.Reason = "contains an unknown payment method: " + fe.Value().(string)
	case "category":
		fe2.Reason = "contains an unknown category: " + fe.Value().(string)
	default:
		fe2.Reason = "failed " + fe.Tag()
	}
	return fe2
}
