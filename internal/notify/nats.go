// Package notify announces newly published content types on NATS so that
// downstream consumers can start using them without polling the space.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"

	"lingua/cmsinit/internal/breaker"
	"lingua/cmsinit/internal/cma"
	"lingua/cmsinit/internal/config"
)

// Event is the JSON payload published for each new content type.
type Event struct {
	SpaceID       string    `json:"space_id"`
	Environment   string    `json:"environment"`
	ContentTypeID string    `json:"content_type_id"`
	Name          string    `json:"name"`
	Version       int       `json:"version"`
	PublishedAt   time.Time `json:"published_at"`
}

// natsConn is the subset of *nats.Conn used by Publisher. Defining an
// interface here allows test doubles to be injected without a live server.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher emits Events on a NATS subject. Connections are opened per call;
// the notifier runs at most once per bootstrap.
type Publisher struct {
	url         string
	subject     string
	spaceID     string
	environment string
	cb          *gobreaker.CircuitBreaker
	connect     func(url string) (natsConn, error)
	now         func() time.Time
}

// NewPublisher constructs a Publisher. No connection is made at construction
// time.
func NewPublisher(cfg config.NotifyConfig, mgmt config.ManagementConfig, cb *gobreaker.CircuitBreaker) *Publisher {
	return &Publisher{
		url:         cfg.NATSURL,
		subject:     cfg.Subject,
		spaceID:     mgmt.SpaceID,
		environment: mgmt.Environment,
		cb:          cb,
		connect:     realConnect,
		now:         time.Now,
	}
}

// NotifyPublished publishes an Event for ct and waits for the server to
// acknowledge the flush.
func (p *Publisher) NotifyPublished(ctx context.Context, ct cma.ContentType) error {
	publishedAt := p.now().UTC()
	if ct.Sys.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, ct.Sys.PublishedAt); err == nil {
			publishedAt = ts
		}
	}

	data, err := json.Marshal(Event{
		SpaceID:       p.spaceID,
		Environment:   p.environment,
		ContentTypeID: ct.Sys.ID,
		Name:          ct.Name,
		Version:       ct.Sys.Version,
		PublishedAt:   publishedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	_, err = p.cb.Execute(func() (any, error) {
		nc, err := p.connect(p.url)
		if err != nil {
			return nil, err
		}
		defer nc.Close()

		if err := nc.Publish(p.subject, data); err != nil {
			return nil, fmt.Errorf("publishing to %s: %w", p.subject, err)
		}
		if err := nc.FlushWithContext(ctx); err != nil {
			return nil, fmt.Errorf("flushing %s: %w", p.subject, err)
		}
		return nil, nil
	})
	return breaker.Err(err)
}

// Probe verifies NATS connectivity with a round trip to the server.
func (p *Publisher) Probe(ctx context.Context) error {
	_, err := p.cb.Execute(func() (any, error) {
		nc, err := p.connect(p.url)
		if err != nil {
			return nil, err
		}
		defer nc.Close()

		if err := nc.FlushWithContext(ctx); err != nil {
			return nil, fmt.Errorf("flush: %w", err)
		}
		return nil, nil
	})
	return breaker.Err(err)
}

// realConnect opens a NATS connection named after the service.
func realConnect(url string) (natsConn, error) {
	nc, err := nats.Connect(url, nats.Name("cmsinit"))
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return nc, nil
}
