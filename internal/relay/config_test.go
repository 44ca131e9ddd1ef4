package relay

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	if err := base.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing url", func(c *Config) { c.URL = " " }, ErrURLRequired},
		{"missing prefix", func(c *Config) { c.SubjectPrefix = "" }, ErrSubjectPrefixRequired},
		{"ca without tls", func(c *Config) { c.TLS.CAFile = "ca.crt" }, ErrTLSRequired},
		{"insecure without tls", func(c *Config) { c.TLS.InsecureSkipVerify = true }, ErrTLSInsecureSkipNotAllow},
		{"tls without ca", func(c *Config) { c.TLS.Enabled = true }, ErrTLSCAFileRequired},
		{"cert without key", func(c *Config) {
			c.TLS = TLSConfig{Enabled: true, CAFile: "ca.crt", CertFile: "c.crt"}
		}, ErrTLSKeyFileRequired},
		{"key without cert", func(c *Config) {
			c.TLS = TLSConfig{Enabled: true, CAFile: "ca.crt", KeyFile: "c.key"}
		}, ErrTLSCertFileRequired},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	ok := DefaultConfig()
	ok.TLS = TLSConfig{Enabled: true, InsecureSkipVerify: true}
	if err := ok.Validate(); err != nil {
		t.Fatalf("insecure tls should validate: %v", err)
	}
}

func TestSubject(t *testing.T) {
	cases := map[string]string{
		"":          "p._",
		"nodeB":     "p.nodeB",
		"node.b":    "p.node_b",
		"a*b>c d":   "p.a_b_c_d",
		"tab\there": "p.tab_here",
	}
	for target, want := range cases {
		if got := Subject("p", target); got != want {
			t.Fatalf("Subject(%q) = %q, want %q", target, got, want)
		}
	}
	if AllSubjects("p") != "p.>" {
		t.Fatalf("unexpected wildcard subject %q", AllSubjects("p"))
	}
}
