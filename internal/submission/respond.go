package submission

import (
	"encoding/json"
	"net/http"

	"listing-directory/internal/metrics"
	"listing-directory/internal/submission/domain"

	"go.uber.org/zap"
)

type scope string

const (
	scopeSubmit scope = "submit"
	scopeList   scope = "list"
)

type errorBody struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// responder concentra a escrita de respostas e o log de erros.
type responder struct {
	log *zap.Logger
	dev bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor é o mapeamento central Kind -> status HTTP.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, sc scope, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if sc == scopeSubmit {
		metrics.SubmissionsTotal.WithLabelValues(kind.String()).Inc()
	}

	body := errorBody{}
	switch kind {
	case domain.KindValidation:
		e, _ := domain.AsError(err)
		body.Error = e.Field + " " + e.Reason
		body.Field = e.Field
	case domain.KindMethodNotAllowed:
		body.Error = http.StatusText(http.StatusMethodNotAllowed)
	case domain.KindRateLimited:
		if sc == scopeSubmit {
			body.Error = "Too many submissions, please try again later"
		} else {
			body.Error = "Too many requests, please try again later"
		}
	default:
		if sc == scopeSubmit {
			body.Error = "Failed to update listing"
		} else {
			body.Error = "Failed to load listings"
		}
		if rs.dev {
			body.Detail = err.Error()
		}
	}

	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.String("method", r.Method),
		zap.String("route", string(sc)),
		zap.Error(err),
	}
	if e, ok := domain.AsError(err); ok {
		if e.Path != "" {
			fields = append(fields, zap.String("document", e.Path), zap.String("op", e.Op))
		}
		if e.Status != 0 {
			fields = append(fields, zap.Int("store_status", e.Status))
		}
	}
	if kind.Expected() {
		rs.log.Debug("request rejected", fields...)
	} else {
		rs.log.Error("request failed", fields...)
	}

	writeJSON(w, status, body)
}
