package relay

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/treescale/internal/event"
	"github.com/danmuck/treescale/internal/path"
	"github.com/danmuck/treescale/internal/protocol"
	"github.com/danmuck/treescale/internal/protocol/frame"
	"github.com/danmuck/treescale/internal/testutil/testlog"
	"github.com/danmuck/treescale/internal/testutil/tlstest"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T, opts *natsserver.Options) string {
	t.Helper()
	if opts == nil {
		opts = &natsserver.Options{}
	}
	opts.Host = "127.0.0.1"
	opts.Port = -1
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.SubjectPrefix = "test.events"
	return cfg
}

func receive(t *testing.T, ch <-chan Delivery) Delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return Delivery{}
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(startTestNATS(t, nil))

	sub, err := NewNATSSubscriber(cfg)
	require.NoError(t, err)
	defer sub.Close()
	ch, cancel, err := sub.Subscribe(AllSubjects(cfg.SubjectPrefix))
	require.NoError(t, err)
	defer cancel()

	pub, err := NewNATSPublisher(cfg)
	require.NoError(t, err)
	defer pub.Close()

	in := event.Event{
		Path:       path.New("root", "a"),
		Name:       "api.exec",
		From:       99,
		Target:     "node.b",
		PublicData: "{}",
		Data:       []byte{0x00, 0xFF},
	}
	require.NoError(t, pub.Publish(context.Background(), in))
	require.NoError(t, pub.Flush(context.Background()))

	d := receive(t, ch)
	require.NoError(t, d.Err)
	require.Equal(t, "test.events.node_b", d.Subject)
	require.True(t, d.Event.Equal(in), "got %+v", d.Event)
}

func TestSubscriberReportsDecodeFailures(t *testing.T) {
	testlog.Start(t)
	url := startTestNATS(t, nil)
	cfg := testConfig(url)

	sub, err := NewNATSSubscriber(cfg)
	require.NoError(t, err)
	defer sub.Close()
	ch, cancel, err := sub.Subscribe(AllSubjects(cfg.SubjectPrefix))
	require.NoError(t, err)
	defer cancel()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	require.NoError(t, nc.Publish(Subject(cfg.SubjectPrefix, "x"), []byte{0, 0, 0, 10, 0}))
	require.NoError(t, nc.Flush())

	d := receive(t, ch)
	require.True(t, errors.Is(d.Err, protocol.ErrTruncated), "got %v", d.Err)
}

func TestStrictSubscriberRejectsTrailingBytes(t *testing.T) {
	testlog.Start(t)
	url := startTestNATS(t, nil)
	cfg := testConfig(url)
	cfg.StrictDecode = true

	sub, err := NewNATSSubscriber(cfg)
	require.NoError(t, err)
	defer sub.Close()
	ch, cancel, err := sub.Subscribe(AllSubjects(cfg.SubjectPrefix))
	require.NoError(t, err)
	defer cancel()

	record, err := event.Encode(event.Event{Name: "n", Target: "x"})
	require.NoError(t, err)
	// Outer prefix covers the extra byte so only the strict check can catch it.
	body := append(append([]byte{}, record[frame.HeaderLen:]...), 0xAB)
	msg := append(protocol.PutU32(uint32(len(body))), body...)

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	require.NoError(t, nc.Publish(Subject(cfg.SubjectPrefix, "x"), msg))
	require.NoError(t, nc.Flush())

	d := receive(t, ch)
	require.True(t, errors.Is(d.Err, protocol.ErrTrailingBytes), "got %v", d.Err)
}

func TestPublishRejectsUnencodablePath(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(startTestNATS(t, nil))
	pub, err := NewNATSPublisher(cfg)
	require.NoError(t, err)
	defer pub.Close()

	err = pub.Publish(context.Background(), event.Event{Path: path.New("a/b")})
	require.ErrorIs(t, err, protocol.ErrPathEncoding)
}

func TestPublishRespectsLimits(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(startTestNATS(t, nil))
	cfg.Limits = frame.Limits{MaxRecordBytes: 40}
	pub, err := NewNATSPublisher(cfg)
	require.NoError(t, err)
	defer pub.Close()

	err = pub.Publish(context.Background(), event.Event{Data: make([]byte, 64)})
	require.ErrorIs(t, err, frame.ErrPayloadTooLarge)
}

func TestPublishCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub := &NATSPublisher{}
	require.ErrorIs(t, pub.Publish(ctx, event.Event{}), context.Canceled)
}

func TestPublishSubscribeOverTLS(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, dir, "treescale-test-ca")
	certFile, keyFile := ca.IssueServerCert(t, dir, "nats-server", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})

	tlsConfig, err := natsserver.GenTLSConfig(&natsserver.TLSConfigOpts{CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	cfg := testConfig(startTestNATS(t, &natsserver.Options{TLSConfig: tlsConfig, TLSTimeout: 2}))
	cfg.TLS = TLSConfig{Enabled: true, CAFile: ca.CAFile()}

	sub, err := NewNATSSubscriber(cfg)
	require.NoError(t, err)
	defer sub.Close()
	ch, cancel, err := sub.Subscribe(Subject(cfg.SubjectPrefix, "nodeB"))
	require.NoError(t, err)
	defer cancel()

	pub, err := NewNATSPublisher(cfg)
	require.NoError(t, err)
	defer pub.Close()

	in := event.Event{Path: path.Root(), Name: "ping", From: 42, Target: "nodeB", Data: []byte{1, 2}}
	require.NoError(t, pub.Publish(context.Background(), in))

	d := receive(t, ch)
	require.NoError(t, d.Err)
	require.True(t, d.Event.Equal(in))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = &NoopPublisher{}
	require.NoError(t, p.Publish(context.Background(), event.Event{}))
	require.NoError(t, p.Close())
}

func TestNATSPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)
}

func TestTokenAuth(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(startTestNATS(t, &natsserver.Options{Authorization: "s3cret"}))

	_, err := NewNATSPublisher(cfg, nats.MaxReconnects(0))
	require.Error(t, err)

	cfg.Token = "s3cret"
	pub, err := NewNATSPublisher(cfg)
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}
