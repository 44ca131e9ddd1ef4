package config

import (
	"github.com/danmuck/treescale/internal/protocol/frame"
	"github.com/danmuck/treescale/internal/relay"
)

// Limits returns the frame limits implied by the config.
func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxRecordBytes: c.MaxRecordBytes}
}

// Relay returns the relay connection settings implied by the config.
func (c Config) Relay() relay.Config {
	return relay.Config{
		URL:           c.NATSURL,
		Token:         c.NATSToken,
		SubjectPrefix: c.SubjectPrefix,
		StrictDecode:  c.StrictDecode,
		Limits:        c.Limits(),
		TLS: relay.TLSConfig{
			Enabled:            c.TLS.Enabled,
			CAFile:             c.TLS.CAFile,
			CertFile:           c.TLS.CertFile,
			KeyFile:            c.TLS.KeyFile,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify,
		},
	}
}
