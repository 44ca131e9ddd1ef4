package relay

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/treescale/internal/event"
	"github.com/danmuck/treescale/internal/observability"
	"github.com/danmuck/treescale/internal/protocol/frame"
)

// Delivery is one received message. Err is set when the body did not decode;
// Event is then the zero value.
type Delivery struct {
	Subject string
	Event   event.Event
	Err     error
}

// NATSSubscriber decodes events arriving on NATS subjects.
type NATSSubscriber struct {
	conn   *nats.Conn
	strict bool
	limits frame.Limits
}

// NewNATSSubscriber connects to NATS with automatic reconnection support.
// Extra nats.Option values (e.g. disconnect/reconnect handlers) can be appended.
func NewNATSSubscriber(cfg Config, opts ...nats.Option) (*NATSSubscriber, error) {
	nc, err := connect(cfg, "treescale-subscriber", opts...)
	if err != nil {
		return nil, err
	}
	return &NATSSubscriber{conn: nc, strict: cfg.StrictDecode, limits: cfg.limits()}, nil
}

// Subscribe returns a channel of decoded deliveries for subject (supports
// wildcards like "treescale.events.>"). Call the returned cancel function to
// unsubscribe and close the channel.
func (s *NATSSubscriber) Subscribe(subject string) (<-chan Delivery, func(), error) {
	ch := make(chan Delivery, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		d := s.decode(msg)
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- d:
		default:
			// Drop message if channel is full to avoid blocking the NATS client.
			observability.RecordRelayEvent(observability.DirectionReceive, observability.ResultDropped, len(msg.Data))
			log.Warn().Str("subject", msg.Subject).Msg("delivery channel full, event dropped")
		}
	})
	if err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so that messages published on other connections are routed.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			mu.Unlock()
			// Drain remaining messages so senders don't block, then close.
			for {
				select {
				case <-ch:
				default:
					close(ch)
					return
				}
			}
		})
	}

	return ch, cancel, nil
}

func (s *NATSSubscriber) decode(msg *nats.Msg) Delivery {
	d := Delivery{Subject: msg.Subject}
	body, err := frame.Split(msg.Data)
	if err == nil && uint64(len(body)) > uint64(s.limits.MaxRecordBytes) {
		err = fmt.Errorf("%w: %d > %d", frame.ErrPayloadTooLarge, len(body), s.limits.MaxRecordBytes)
	}
	if err == nil {
		if s.strict {
			d.Event, err = event.DecodeStrict(body)
		} else {
			d.Event, err = event.Decode(body)
		}
	}
	if err != nil {
		d.Err = err
		observability.RecordRelayEvent(observability.DirectionReceive, observability.ResultDecodeError, len(msg.Data))
		log.Warn().Err(err).Str("subject", msg.Subject).Int("bytes", len(msg.Data)).Msg("event decode failed")
		return d
	}
	observability.RecordRelayEvent(observability.DirectionReceive, observability.ResultOK, len(msg.Data))
	return d
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
