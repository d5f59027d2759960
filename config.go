package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/whosaid/internal/game"
	"github.com/Seednode/whosaid/internal/source"
)

type Config struct {
	bind           string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	sourceURL    string
	quotesFile   string
	batchSize    int
	loadAttempts int
	loadBackoff  time.Duration
	revealDelay  time.Duration
	exitStagger  time.Duration
	exitSettle   time.Duration
	fetchTimeout time.Duration
}

// validateGame checks the settings shared by the server and the terminal.
func (c *Config) validateGame() error {
	if c.batchSize < 1 || c.batchSize > source.MaxBatch {
		return fmt.Errorf("invalid batch size (must be between 1-%d inclusive): %d", source.MaxBatch, c.batchSize)
	}
	if c.loadAttempts < 1 || c.loadAttempts > game.MaxLoadAttempts {
		return fmt.Errorf("invalid load attempts (must be between 1-%d inclusive): %d", game.MaxLoadAttempts, c.loadAttempts)
	}

	for name, d := range map[string]time.Duration{
		"load-backoff":  c.loadBackoff,
		"reveal-delay":  c.revealDelay,
		"exit-stagger":  c.exitStagger,
		"exit-settle":   c.exitSettle,
		"fetch-timeout": c.fetchTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("invalid --%s (must not be negative): %s", name, d)
		}
	}

	return nil
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return c.validateGame()
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) gameOptions() game.Options {
	return game.Options{
		BatchSize:    c.batchSize,
		LoadAttempts: c.loadAttempts,
		LoadBackoff:  c.loadBackoff,
		RevealDelay:  c.revealDelay,
		ExitStagger:  c.exitStagger,
		ExitSettle:   c.exitSettle,
	}
}

// newLoader prefers a local quotes file over the remote source.
func (c *Config) newLoader() (source.Loader, error) {
	if c.quotesFile != "" {
		l, err := source.NewFileLoader(c.quotesFile, nil)
		if err != nil {
			return nil, err
		}
		return l, nil
	}

	l, err := source.NewHTTPLoader(c.sourceURL, c.fetchTimeout)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WHOSAID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "whosaid",
		Short:         "A quote guessing game: read the line, pick who said it.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.sourceURL, "source-url", source.DefaultEndpoint, "quote API to fetch batches from (env: WHOSAID_SOURCE_URL)")
	pfs.StringVar(&cfg.quotesFile, "quotes-file", "", "serve quotes from a local JSON file instead of --source-url (env: WHOSAID_QUOTES_FILE)")
	pfs.IntVar(&cfg.batchSize, "batch-size", source.MaxBatch, "quotes requested per fetch (env: WHOSAID_BATCH_SIZE)")
	pfs.IntVar(&cfg.loadAttempts, "load-attempts", 5, "fetches to try before giving up on a session (env: WHOSAID_LOAD_ATTEMPTS)")
	pfs.DurationVar(&cfg.loadBackoff, "load-backoff", 500*time.Millisecond, "wait after the first failed fetch, doubled on each further failure up to 30s (env: WHOSAID_LOAD_BACKOFF)")
	pfs.DurationVar(&cfg.revealDelay, "reveal-delay", 400*time.Millisecond, "time the answer stays highlighted (env: WHOSAID_REVEAL_DELAY)")
	pfs.DurationVar(&cfg.exitStagger, "exit-stagger", 100*time.Millisecond, "delay between option cards leaving (env: WHOSAID_EXIT_STAGGER)")
	pfs.DurationVar(&cfg.exitSettle, "exit-settle", 200*time.Millisecond, "pause after the last card leaves (env: WHOSAID_EXIT_SETTLE)")
	pfs.DurationVar(&cfg.fetchTimeout, "fetch-timeout", 10*time.Second, "timeout for a single quote fetch (env: WHOSAID_FETCH_TIMEOUT)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WHOSAID_VERBOSE)")

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WHOSAID_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WHOSAID_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WHOSAID_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WHOSAID_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: WHOSAID_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WHOSAID_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WHOSAID_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WHOSAID_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newPlayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("whosaid v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
