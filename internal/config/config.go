package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/treescale/internal/logging"
)

// Config is the treescale.toml runtime configuration.
type Config struct {
	LogLevel       string
	MaxRecordBytes uint32
	StrictDecode   bool
	NATSURL        string
	NATSToken      string
	SubjectPrefix  string
	TLS            TLSConfig
}

// TLSConfig holds relay connection TLS settings.
type TLSConfig struct {
	Enabled            bool
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
}

// treescale.toml key mapping to runtime settings.
type fileConfig struct {
	LogLevel       string `toml:"log_level"`
	MaxRecordBytes int64  `toml:"max_record_bytes"`
	StrictDecode   bool   `toml:"strict_decode"`
	NATSURL        string `toml:"nats_url"`
	NATSToken      string `toml:"nats_token"`
	SubjectPrefix  string `toml:"subject_prefix"`
	TLSEnabled     bool   `toml:"tls_enabled"`
	TLSCAFile      string `toml:"tls_ca_file"`
	TLSCertFile    string `toml:"tls_cert_file"`
	TLSKeyFile     string `toml:"tls_key_file"`
	TLSInsecure    bool   `toml:"tls_insecure_skip_verify"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		MaxRecordBytes: 8 * 1024 * 1024,
		NATSURL:        "nats://127.0.0.1:4222",
		SubjectPrefix:  "treescale.events",
	}
}

// Load reads path and overlays the keys it defines onto DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load treescale config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("treescale config (%s): unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_record_bytes") {
		if raw.MaxRecordBytes <= 0 || raw.MaxRecordBytes > int64(^uint32(0)) {
			return Config{}, fmt.Errorf("treescale config (%s): max_record_bytes out of range: %d", path, raw.MaxRecordBytes)
		}
		cfg.MaxRecordBytes = uint32(raw.MaxRecordBytes)
	}
	if meta.IsDefined("strict_decode") {
		cfg.StrictDecode = raw.StrictDecode
	}
	if meta.IsDefined("nats_url") {
		cfg.NATSURL = strings.TrimSpace(raw.NATSURL)
	}
	if meta.IsDefined("nats_token") {
		cfg.NATSToken = strings.TrimSpace(raw.NATSToken)
	}
	if meta.IsDefined("subject_prefix") {
		cfg.SubjectPrefix = strings.TrimSpace(raw.SubjectPrefix)
	}
	if meta.IsDefined("tls_enabled") {
		cfg.TLS.Enabled = raw.TLSEnabled
	}
	if meta.IsDefined("tls_ca_file") {
		cfg.TLS.CAFile = strings.TrimSpace(raw.TLSCAFile)
	}
	if meta.IsDefined("tls_cert_file") {
		cfg.TLS.CertFile = strings.TrimSpace(raw.TLSCertFile)
	}
	if meta.IsDefined("tls_key_file") {
		cfg.TLS.KeyFile = strings.TrimSpace(raw.TLSKeyFile)
	}
	if meta.IsDefined("tls_insecure_skip_verify") {
		cfg.TLS.InsecureSkipVerify = raw.TLSInsecure
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("treescale config (%s): %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.MaxRecordBytes == 0 {
		return fmt.Errorf("max_record_bytes must be positive")
	}
	if strings.TrimSpace(c.NATSURL) == "" {
		return fmt.Errorf("nats_url is required")
	}
	if strings.TrimSpace(c.SubjectPrefix) == "" {
		return fmt.Errorf("subject_prefix is required")
	}
	if strings.ContainsAny(c.SubjectPrefix, "*> \t") {
		return fmt.Errorf("subject_prefix %q contains wildcard or whitespace", c.SubjectPrefix)
	}
	return nil
}
