package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"landlord/internal/config"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subj string, data []byte) error
}

// Envelope is the JSON body of every published event.
type Envelope struct {
	GameID  string    `json:"game_id"`
	Kind    string    `json:"kind"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// Publisher forwards table events to NATS subjects <prefix>.<game_id>.<kind>.
type Publisher struct {
	conn   Conn
	prefix string
	logger runtime.Logger
	now    func() time.Time
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Connect dials NATS with reconnect handling.
func Connect(cfg config.NATSConfig, logger runtime.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("landlord"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS: reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS: connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	return conn, nil
}

// NewPublisher publishes through conn under prefix.
func NewPublisher(conn Conn, prefix string, logger runtime.Logger) *Publisher {
	return &Publisher{conn: conn, prefix: prefix, logger: logger, now: time.Now}
}

// Subject builds the subject for one event.
func Subject(prefix, gameID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, gameID, kind)
}

func (p *Publisher) Publish(ctx context.Context, gameID, kind string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{GameID: gameID, Kind: kind, Payload: payload, SentAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	subject := Subject(p.prefix, gameID, kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("NATS: published %s", subject)
	return nil
}
