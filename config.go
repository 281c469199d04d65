/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "KIMCHI"
	defaultSecret = "insecure-default-change-me"
)

// Extra environment variables honoured besides the KIMCHI_ prefixed ones.
var envAliases = map[string][]string{
	"port":   {"PORT"},
	"secret": {"SESSION_SECRET"},
}

type Config struct {
	bind         string
	categories   string
	curated      bool
	kimchiDir    string
	messageRate  float64
	notKimchiDir string
	port         int
	prefix       string
	profile      bool
	sampleSize   int
	scoreDB      string
	scoreFile    string
	scoreStore   string
	secret       string
	tlsCert      string
	tlsKey       string
	verbose      bool
	version      bool
	watch        bool
	writeTimeout time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sampleSize < 1 {
		return fmt.Errorf("invalid sample size (must be positive): %d", c.sampleSize)
	}
	if c.kimchiDir == "" || c.notKimchiDir == "" {
		return errors.New("--kimchi-dir and --not-kimchi-dir must not be empty")
	}
	if c.messageRate <= 0 {
		return fmt.Errorf("invalid message rate (must be positive): %v", c.messageRate)
	}
	switch c.scoreStore {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid score store (must be json or sqlite): %q", c.scoreStore)
	}
	if strings.TrimSpace(c.secret) == "" {
		return errors.New("--secret must not be empty")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) insecureSecret() bool {
	return c.secret == defaultSecret
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "kimchi",
		Short:         "Is this kimchi? A picture quiz with a persistent leaderboard.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: KIMCHI_BIND)")
	fs.StringVar(&cfg.categories, "categories", "", "TOML file overriding the built-in category table (env: KIMCHI_CATEGORIES)")
	fs.BoolVar(&cfg.curated, "curated", false, "drop image folders missing from the category table (env: KIMCHI_CURATED)")
	fs.StringVar(&cfg.kimchiDir, "kimchi-dir", "images/kimchi", "folder of kimchi categories (env: KIMCHI_KIMCHI_DIR)")
	fs.Float64Var(&cfg.messageRate, "message-rate", 10, "websocket messages accepted per second, per player (env: KIMCHI_MESSAGE_RATE)")
	fs.StringVar(&cfg.notKimchiDir, "not-kimchi-dir", "images/not-kimchi", "folder of non-kimchi categories (env: KIMCHI_NOT_KIMCHI_DIR)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: KIMCHI_PORT, PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: KIMCHI_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: KIMCHI_PROFILE)")
	fs.IntVar(&cfg.sampleSize, "sample-size", 40, "cards drawn from each side per deal (env: KIMCHI_SAMPLE_SIZE)")
	fs.StringVar(&cfg.scoreDB, "score-db", "scores.db", "sqlite database used by --score-store=sqlite (env: KIMCHI_SCORE_DB)")
	fs.StringVar(&cfg.scoreFile, "score-file", "scores.json", "json file used by --score-store=json (env: KIMCHI_SCORE_FILE)")
	fs.StringVar(&cfg.scoreStore, "score-store", "json", "leaderboard backend: json or sqlite (env: KIMCHI_SCORE_STORE)")
	fs.StringVar(&cfg.secret, "secret", defaultSecret, "key used to sign player cookies; the default is public and insecure (env: KIMCHI_SECRET, SESSION_SECRET)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: KIMCHI_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: KIMCHI_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: KIMCHI_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: KIMCHI_VERSION)")
	fs.BoolVar(&cfg.watch, "watch", true, "rescan image folders when they change (env: KIMCHI_WATCH)")
	fs.DurationVar(&cfg.writeTimeout, "write-timeout", 10*time.Second, "deadline for a single websocket write (env: KIMCHI_WRITE_TIMEOUT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)

		envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		_ = v.BindEnv(append([]string{f.Name, envName}, envAliases[f.Name]...)...)

		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("kimchi v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
