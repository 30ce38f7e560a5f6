package submission

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"listing-directory/internal/listing"
	"listing-directory/internal/metrics"
	"listing-directory/internal/submission/application"
	"listing-directory/internal/submission/domain"

	"go.uber.org/zap"
)

// DefaultMaxBodyBytes limita o corpo da submissão.
const DefaultMaxBodyBytes = 64 << 10

type submitResponse struct {
	Message     string `json:"message"`
	ID          string `json:"id,omitempty"`
	SubmittedAt string `json:"submittedAt,omitempty"`
}

type listResponse struct {
	Listings []listing.Listing `json:"listings"`
	Count    int               `json:"count"`
}

type handlers struct {
	svc     *application.Service
	rs      responder
	maxBody int64
}

// methodGate recusa qualquer método diferente de allowed antes de qualquer
// outro efeito (inclusive o registro no rate limit).
func (h handlers) methodGate(allowed string, sc scope, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != allowed {
			w.Header().Set("Allow", allowed)
			h.rs.writeError(w, r, sc, domain.MethodNotAllowed(r.Method))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h handlers) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var d listing.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rs.writeError(w, r, scopeSubmit, domain.Validation("body", "is too large"))
			return
		}
		h.rs.writeError(w, r, scopeSubmit, domain.Validation("body", "must be a JSON object with the listing fields"))
		return
	}

	rcpt, err := h.svc.Submit(r.Context(), d)
	if err != nil {
		h.rs.writeError(w, r, scopeSubmit, err)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	h.rs.log.Info("listing accepted", zap.String("id", rcpt.ID))
	writeJSON(w, http.StatusOK, submitResponse{Message: "Success", ID: rcpt.ID, SubmittedAt: rcpt.SubmittedAt})
}

// list atende GET ?tag=a&tag=b&q=palavra.
func (h handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := listing.Filter{Keyword: q.Get("q")}
	for _, t := range q["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			f.Tags = append(f.Tags, t)
		}
	}

	items, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.rs.writeError(w, r, scopeList, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Listings: items, Count: len(items)})
}
