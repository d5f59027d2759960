package main

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		sessionTimeout: time.Hour,
		sourceURL:      "http://example.invalid/quotes",
		batchSize:      9,
		loadAttempts:   5,
		loadBackoff:    500 * time.Millisecond,
		revealDelay:    400 * time.Millisecond,
		exitStagger:    100 * time.Millisecond,
		exitSettle:     200 * time.Millisecond,
		fetchTimeout:   10 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-cert and --tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-cert and --tls-key"},
		{"cert and key", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, ""},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"batch zero", func(c *Config) { c.batchSize = 0 }, "invalid batch size"},
		{"batch ten", func(c *Config) { c.batchSize = 10 }, "invalid batch size"},
		{"batch one", func(c *Config) { c.batchSize = 1 }, ""},
		{"no attempts", func(c *Config) { c.loadAttempts = 0 }, "invalid load attempts"},
		{"too many attempts", func(c *Config) { c.loadAttempts = 40 }, "invalid load attempts"},
		{"most attempts", func(c *Config) { c.loadAttempts = 20 }, ""},
		{"negative reveal", func(c *Config) { c.revealDelay = -time.Millisecond }, "--reveal-delay"},
		{"negative backoff", func(c *Config) { c.loadBackoff = -time.Second }, "--load-backoff"},
		{"zero delays", func(c *Config) { c.revealDelay, c.exitStagger, c.exitSettle = 0, 0, 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("validate() = %v, want nil", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("validate() = nil, want error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateGameIgnoresServerFlags(t *testing.T) {
	cfg := validConfig()
	cfg.port = 0
	cfg.tlsCert = "cert.pem"

	if err := cfg.validateGame(); err != nil {
		t.Errorf("validateGame() = %v, want nil", err)
	}
}

func TestConfig_GameOptions(t *testing.T) {
	opts := validConfig().gameOptions()

	if opts.BatchSize != 9 || opts.LoadAttempts != 5 {
		t.Errorf("got batch %d attempts %d", opts.BatchSize, opts.LoadAttempts)
	}
	if opts.RevealDelay != 400*time.Millisecond || opts.ExitStagger != 100*time.Millisecond || opts.ExitSettle != 200*time.Millisecond {
		t.Errorf("timings not carried over: %+v", opts)
	}
}

func TestConfig_NewLoader(t *testing.T) {
	cfg := validConfig()
	cfg.quotesFile = writeQuotes(t, sampleRecords)

	if _, err := cfg.newLoader(); err != nil {
		t.Fatalf("file loader: %v", err)
	}

	cfg.quotesFile = ""
	if _, err := cfg.newLoader(); err != nil {
		t.Fatalf("http loader: %v", err)
	}

	cfg.sourceURL = "ftp://example.invalid/quotes"
	if _, err := cfg.newLoader(); err == nil {
		t.Error("accepted a non-http source URL")
	}
}

func TestNewCmd_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("WHOSAID_PORT", "9090")
	t.Setenv("WHOSAID_BATCH_SIZE", "4")
	t.Setenv("WHOSAID_REVEAL_DELAY", "1s")

	cfg := &Config{}
	cmd := newCmd(cfg)

	if cfg.port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.port)
	}
	if cfg.batchSize != 4 {
		t.Errorf("batch size = %d, want 4", cfg.batchSize)
	}
	if cfg.revealDelay != time.Second {
		t.Errorf("reveal delay = %s, want 1s", cfg.revealDelay)
	}

	if play, _, err := cmd.Find([]string{"play"}); err != nil || play.Name() != "play" {
		t.Errorf("play subcommand missing: %v", err)
	}
}

func TestHumanReadableSize(t *testing.T) {
	for in, want := range map[int64]string{
		0:         "0 B",
		999:       "999 B",
		1000:      "1.0 kB",
		1536:      "1.5 kB",
		2_500_000: "2.5 MB",
	} {
		if got := humanReadableSize(in); got != want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", in, got, want)
		}
	}
}
