package relay

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/treescale/internal/event"
	"github.com/danmuck/treescale/internal/observability"
	"github.com/danmuck/treescale/internal/protocol/frame"
)

// Publisher sends events to their targets.
type Publisher interface {
	Publish(ctx context.Context, ev event.Event) error
	Close() error
}

// NATSPublisher publishes each event to Subject(prefix, ev.Target).
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	limits frame.Limits
}

func NewNATSPublisher(cfg Config, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := connect(cfg, "treescale-publisher", opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc, prefix: cfg.SubjectPrefix, limits: cfg.limits()}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := event.Encode(ev)
	if err != nil {
		observability.RecordRelayEvent(observability.DirectionPublish, observability.ResultEncodeError, 0)
		return fmt.Errorf("encoding event: %w", err)
	}
	if body := len(record) - frame.HeaderLen; uint64(body) > uint64(p.limits.MaxRecordBytes) {
		observability.RecordRelayEvent(observability.DirectionPublish, observability.ResultEncodeError, len(record))
		return fmt.Errorf("%w: %d > %d", frame.ErrPayloadTooLarge, body, p.limits.MaxRecordBytes)
	}
	subject := Subject(p.prefix, ev.Target)
	if err := p.conn.Publish(subject, record); err != nil {
		observability.RecordRelayEvent(observability.DirectionPublish, observability.ResultSendError, len(record))
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	observability.RecordRelayEvent(observability.DirectionPublish, observability.ResultOK, len(record))
	log.Debug().
		Str("subject", subject).
		Str("name", ev.Name).
		Uint64("from", ev.From).
		Int("bytes", len(record)).
		Msg("event published")
	return nil
}

// Flush blocks until the server has processed everything published so far.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, ev event.Event) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
