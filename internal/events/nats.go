package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// NATSPublisher publishes rebuild events to a JetStream stream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	policy  retry.Policy
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to cfg.URL and makes sure the stream that
// captures cfg.Subject exists.
func NewNATSPublisher(ctx context.Context, cfg config.EventsConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("docsite"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEvents, "connect to NATS").
			WithContext("url", cfg.URL).Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryEvents, "create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "docsite rebuild notifications",
		Subjects:    []string{cfg.Subject},
		MaxMsgs:     10000,
		Discard:     jetstream.DiscardOld,
	})
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryEvents, "create stream").
			WithContext("stream", cfg.Stream).Build()
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))
	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject, policy: retry.FromConfig(cfg.Retry)}, nil
}

// PublishRebuilt publishes ev. The event id doubles as the JetStream
// message id so retried publishes are deduplicated.
func (p *NATSPublisher) PublishRebuilt(ctx context.Context, ev RebuiltEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal rebuild event").Build()
	}

	err = p.policy.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(ev.ID)); err != nil {
			return errors.WrapError(err, errors.CategoryEvents, "publish rebuild event").
				WithContext("subject", p.subject).Retryable().Build()
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Published rebuild event", slog.String("subject", p.subject), logfields.SnapshotID(ev.SnapshotID))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
