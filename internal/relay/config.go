package relay

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/danmuck/treescale/internal/protocol/frame"
)

var (
	ErrURLRequired             = errors.New("relay: nats url required")
	ErrSubjectPrefixRequired   = errors.New("relay: subject prefix required")
	ErrTLSRequired             = errors.New("relay: tls required")
	ErrTLSCAFileRequired       = errors.New("relay: tls ca file required")
	ErrTLSCertFileRequired     = errors.New("relay: tls cert file required")
	ErrTLSKeyFileRequired      = errors.New("relay: tls key file required")
	ErrTLSInsecureSkipNotAllow = errors.New("relay: insecure skip verify needs tls enabled")
)

// Config defines how the relay reaches NATS.
type Config struct {
	URL           string
	SubjectPrefix string
	Token         string
	StrictDecode  bool
	Limits        frame.Limits
	TLS           TLSConfig
}

// TLSConfig defines client-side TLS for the NATS connection. CertFile and
// KeyFile together enable mutual TLS.
type TLSConfig struct {
	Enabled            bool
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "treescale.events",
		Limits:        frame.DefaultLimits(),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrURLRequired
	}
	if strings.TrimSpace(c.SubjectPrefix) == "" {
		return ErrSubjectPrefixRequired
	}
	t := c.TLS
	if t.InsecureSkipVerify && !t.Enabled {
		return ErrTLSInsecureSkipNotAllow
	}
	if !t.Enabled {
		if t.CAFile != "" || t.CertFile != "" || t.KeyFile != "" {
			return ErrTLSRequired
		}
		return nil
	}
	if strings.TrimSpace(t.CAFile) == "" && !t.InsecureSkipVerify {
		return ErrTLSCAFileRequired
	}
	if strings.TrimSpace(t.CertFile) != "" && strings.TrimSpace(t.KeyFile) == "" {
		return ErrTLSKeyFileRequired
	}
	if strings.TrimSpace(t.KeyFile) != "" && strings.TrimSpace(t.CertFile) == "" {
		return ErrTLSCertFileRequired
	}
	return nil
}

func (c Config) limits() frame.Limits {
	if c.Limits.MaxRecordBytes == 0 {
		return frame.DefaultLimits()
	}
	return c.Limits
}

// natsOptions translates c into connection options, ahead of any caller extras.
func (c Config) natsOptions(name string, extra ...nats.Option) []nats.Option {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	if c.Token != "" {
		opts = append(opts, nats.Token(c.Token))
	}
	if c.TLS.Enabled {
		opts = append(opts, nats.Secure(&tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify, //nolint:gosec // opt-in for development
		}))
		if c.TLS.CAFile != "" {
			opts = append(opts, nats.RootCAs(c.TLS.CAFile))
		}
		if c.TLS.CertFile != "" {
			opts = append(opts, nats.ClientCert(c.TLS.CertFile, c.TLS.KeyFile))
		}
	}
	return append(opts, extra...)
}

func connect(c Config, name string, extra ...nats.Option) (*nats.Conn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	nc, err := nats.Connect(c.URL, c.natsOptions(name, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", c.URL, err)
	}
	return nc, nil
}
