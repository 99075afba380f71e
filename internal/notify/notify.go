// Package notify fans committed audit entries out over NATS so other
// systems can follow project and task changes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends each history entry to <prefix>.<entityKind>.<action>.
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject returns the subject an entry is published on.
func (p *Publisher) Subject(e *domain.HistoryEntry) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, e.EntityKind, e.Action)
}

func (p *Publisher) Publish(ctx context.Context, e *domain.HistoryEntry) error {
	if e == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publishing history entry: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}
	if err := p.conn.Publish(p.Subject(e), data); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.Subject(e), err)
	}
	return nil
}

// Connect dials url with reconnects enabled. Connection state changes are
// logged.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("crm"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return nc, nil
}
