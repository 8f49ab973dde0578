package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/newsverify/adkbridge/pkg/adapter"
	"github.com/newsverify/adkbridge/pkg/service/adk"
	"github.com/newsverify/adkbridge/pkg/service/credential"
	"github.com/newsverify/adkbridge/pkg/utils/logging"
)

const (
	defaultAppName     = "news_info_verification_v2"
	defaultTimeoutSec  = 300
	defaultKeyFile     = "service-account.json"
	defaultIntervalSec = 2900

	// tokenEnvKey is where refreshed tokens are published for legacy
	// consumers of the bridge process.
	tokenEnvKey = "GCP_ACCESS_TOKEN"
)

// config holds configuration values
type config struct {
	configFile string
	logLevel   string

	// Engine
	endpoint   string
	appName    string
	timeoutSec int64

	// Credentials
	keyFile            string
	refreshIntervalSec int64
}

// fileConfig mirrors the optional YAML bridge configuration file.
type fileConfig struct {
	Endpoint           string `yaml:"endpoint"`
	AppName            string `yaml:"app_name"`
	TimeoutSec         int64  `yaml:"timeout_sec"`
	KeyFile            string `yaml:"key_file"`
	RefreshIntervalSec int64  `yaml:"refresh_interval_sec"`
	LogLevel           string `yaml:"log_level"`
}

// globalFlags returns common flags used across commands with destination
// config. Flags default to zero values; finalize applies file values and
// built-in defaults afterwards so flag/env > file > default.
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML bridge configuration file",
			Sources:     cli.EnvVars("ADKBRIDGE_CONFIG"),
			Destination: &cfg.configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("ADKBRIDGE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "endpoint",
			Aliases:     []string{"e"},
			Usage:       "Reasoning engine asyncStreamQuery endpoint URL",
			Sources:     cli.EnvVars("REASONING_ENGINE_URL"),
			Destination: &cfg.endpoint,
		},
		&cli.StringFlag{
			Name:        "app-name",
			Usage:       "Application name attached to query logs",
			Sources:     cli.EnvVars("ADK_APP_NAME"),
			Destination: &cfg.appName,
		},
		&cli.IntFlag{
			Name:        "timeout",
			Usage:       "Total per-call HTTP timeout in seconds",
			Sources:     cli.EnvVars("ADK_TIMEOUT_SEC"),
			Destination: &cfg.timeoutSec,
		},
		&cli.StringFlag{
			Name:        "key-file",
			Aliases:     []string{"k"},
			Usage:       "Service account key file for token refresh",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.keyFile,
		},
		&cli.IntFlag{
			Name:        "refresh-interval",
			Usage:       "Seconds between credential refreshes (keep well below the 3600s token lifetime)",
			Sources:     cli.EnvVars("ADK_REFRESH_INTERVAL_SEC"),
			Destination: &cfg.refreshIntervalSec,
		},
	}
}

// finalize merges the optional config file into unset fields, applies
// built-in defaults, and validates the result.
func (cfg *config) finalize() error {
	if cfg.configFile != "" {
		data, err := os.ReadFile(cfg.configFile)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
		}

		if cfg.endpoint == "" {
			cfg.endpoint = fc.Endpoint
		}
		if cfg.appName == "" {
			cfg.appName = fc.AppName
		}
		if cfg.timeoutSec == 0 {
			cfg.timeoutSec = fc.TimeoutSec
		}
		if cfg.keyFile == "" {
			cfg.keyFile = fc.KeyFile
		}
		if cfg.refreshIntervalSec == 0 {
			cfg.refreshIntervalSec = fc.RefreshIntervalSec
		}
		if cfg.logLevel == "" {
			cfg.logLevel = fc.LogLevel
		}
	}

	if cfg.appName == "" {
		cfg.appName = defaultAppName
	}
	if cfg.timeoutSec == 0 {
		cfg.timeoutSec = defaultTimeoutSec
	}
	if cfg.keyFile == "" {
		cfg.keyFile = defaultKeyFile
	}
	if cfg.refreshIntervalSec == 0 {
		cfg.refreshIntervalSec = defaultIntervalSec
	}

	if cfg.endpoint == "" {
		return goerr.New("endpoint is required (flag --endpoint or REASONING_ENGINE_URL)")
	}
	if cfg.timeoutSec < 0 {
		return goerr.New("timeout must be positive", goerr.V("timeout_sec", cfg.timeoutSec))
	}
	if cfg.refreshIntervalSec < 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval_sec", cfg.refreshIntervalSec))
	}

	return nil
}

// setup finalizes the config and attaches a configured logger to the
// returned context.
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	if err := cfg.finalize(); err != nil {
		return ctx, err
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

func (cfg *config) timeout() time.Duration {
	return time.Duration(cfg.timeoutSec) * time.Second
}

func (cfg *config) refreshInterval() time.Duration {
	return time.Duration(cfg.refreshIntervalSec) * time.Second
}

// newRefresher creates a refresher for the configured service identity,
// exporting tokens to the environment for backend compatibility and
// watching the key file for rotation.
func (cfg *config) newRefresher(store *credential.Store) *credential.Refresher {
	issuer := adapter.NewGoogleIdentity(cfg.keyFile)
	return credential.NewRefresher(issuer, store,
		credential.WithEnvExport(tokenEnvKey),
		credential.WithWatchFile(cfg.keyFile),
	)
}

// newClient creates a query client reading credentials from the store.
func (cfg *config) newClient(store *credential.Store) (*adk.Client, error) {
	client, err := adk.New(cfg.endpoint, store,
		adk.WithAppName(cfg.appName),
		adk.WithTimeout(cfg.timeout()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create engine client")
	}
	return client, nil
}
