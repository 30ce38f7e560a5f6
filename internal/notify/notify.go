// Package notify publica o evento "listing aceito" para quem precisar reagir
// (ex: rebuild do site estático). Falhas nunca derrubam a submissão.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listing-directory/internal/listing"
	"listing-directory/internal/metrics"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "listings.accepted"

// Event é o payload publicado.
type Event struct {
	Type       string          `json:"type"`
	Listing    listing.Listing `json:"listing"`
	AcceptedAt time.Time       `json:"acceptedAt"`
}

// Noop descarta eventos. Usado quando NATS_URL não está configurado.
type Noop struct{}

func (Noop) ListingAccepted(context.Context, listing.Listing) error { return nil }

// Conn é o subconjunto de *nats.Conn usado aqui.
type Conn interface {
	PublishMsg(m *nats.Msg) error
}

type NATSPublisher struct {
	conn    Conn
	subject string
	now     func() time.Time
}

func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject, now: time.Now}
}

// Connect abre a conexão com reconexão automática, como nos outros serviços.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
}

func (p *NATSPublisher) ListingAccepted(ctx context.Context, l listing.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Event{Type: "listing.accepted", Listing: l, AcceptedAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	if l.ID != "" {
		// dedup no JetStream, se o subject estiver em um stream
		msg.Header.Set(nats.MsgIdHdr, l.ID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		metrics.EventsPublished.WithLabelValues(p.subject, "error").Inc()
		return fmt.Errorf("notify: publish %s: %w", p.subject, err)
	}
	metrics.EventsPublished.WithLabelValues(p.subject, "success").Inc()
	return nil
}
