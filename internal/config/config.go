package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Audit      APIConfig        `yaml:"audit" mapstructure:"audit"`
	Directory  APIConfig        `yaml:"directory" mapstructure:"directory"`
	Sheets     APIConfig        `yaml:"sheets" mapstructure:"sheets"`
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Listing    ListingConfig    `yaml:"listing" mapstructure:"listing"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// APIConfig points a client at its backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HTTPConfig configures the shared outbound fetcher.
type HTTPConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns the request timeout. Zero means no client-side limit.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSecs) * time.Second
}

// CatalogConfig selects the provider catalog. An empty path uses the
// embedded default.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ListingConfig configures the combined company listing.
type ListingConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the failure and resolution log.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MonitoringConfig configures provider health checks and alerting.
type MonitoringConfig struct {
	Enabled             bool    `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL          string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs   int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	ProviderFailures    int     `yaml:"provider_failures" mapstructure:"provider_failures"`
	DegradedRate        float64 `yaml:"degraded_rate" mapstructure:"degraded_rate"`
	MinLookups          int     `yaml:"min_lookups" mapstructure:"min_lookups"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("audit.base_url", "http://localhost:5001")
	v.SetDefault("directory.base_url", "https://api.companylist.fba.ai")
	v.SetDefault("sheets.base_url", "https://docs.google.com")
	v.SetDefault("http.user_agent", "fba-resolver/1.0")
	v.SetDefault("http.timeout_secs", 0)
	v.SetDefault("http.rate_per_sec", 5)
	v.SetDefault("catalog.path", "")
	v.SetDefault("listing.concurrency", 8)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "fba-resolver.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 1)
	v.SetDefault("monitoring.provider_failures", 10)
	v.SetDefault("monitoring.degraded_rate", 0.25)
	v.SetDefault("monitoring.min_lookups", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "resolve" (resolve, list, providers), "store" (failures, migrate) and
// "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "resolve", "store", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.HTTP.TimeoutSecs < 0 {
		errs = append(errs, "http.timeout_secs must be >= 0")
	}
	if c.HTTP.RatePerSec < 0 {
		errs = append(errs, "http.rate_per_sec must be >= 0")
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "none":
		if mode == "store" {
			errs = append(errs, "store.driver none has nothing to read or migrate")
		}
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or none")
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Listing.Concurrency < 1 || c.Listing.Concurrency > 32 {
			errs = append(errs, "listing.concurrency must be between 1 and 32")
		}
		if c.Monitoring.Enabled {
			if c.Store.Driver == "none" {
				errs = append(errs, "monitoring needs a store.driver other than none")
			}
			if c.Monitoring.LookbackWindowHours < 1 {
				errs = append(errs, "monitoring.lookback_window_hours must be >= 1")
			}
			if c.Monitoring.DegradedRate < 0 || c.Monitoring.DegradedRate > 1 {
				errs = append(errs, "monitoring.degraded_rate must be between 0 and 1")
			}
		}
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
