package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treescale.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverlaysDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
max_record_bytes = 1024
subject_prefix = "tree.ev"
tls_enabled = true
tls_ca_file = " ca.crt "
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, uint32(1024), cfg.MaxRecordBytes)
	require.Equal(t, "tree.ev", cfg.SubjectPrefix)
	require.Equal(t, DefaultConfig().NATSURL, cfg.NATSURL)
	require.True(t, cfg.TLS.Enabled)
	require.Equal(t, "ca.crt", cfg.TLS.CAFile)

	rc := cfg.Relay()
	require.Equal(t, uint32(1024), rc.Limits.MaxRecordBytes)
	require.Equal(t, "ca.crt", rc.TLS.CAFile)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treescale.toml")
	require.NoError(t, WriteTemplate(path, false))
	require.Error(t, WriteTemplate(path, false))
	require.NoError(t, WriteTemplate(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":     `colour = "blue"`,
		"bad level":       `log_level = "loud"`,
		"zero max":        `max_record_bytes = 0`,
		"wildcard prefix": `subject_prefix = "tree.>"`,
		"empty url":       `nats_url = " "`,
		"not toml":        `log_level = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
