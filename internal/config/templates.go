package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes the default treescale.toml to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `log_level = "info"
max_record_bytes = 8388608
strict_decode = false

nats_url = "nats://127.0.0.1:4222"
# nats_token = ""
subject_prefix = "treescale.events"

tls_enabled = false
# tls_ca_file = "ca.crt"
# tls_cert_file = "client.crt"
# tls_key_file = "client.key"
`
