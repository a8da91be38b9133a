// Package config loads configuration for the dashboard, the agent runner and
// the terminal UI from defaults, an optional YAML file and AIC_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. AIC_DASHBOARD_HTTP_ADDR.
const EnvPrefix = "AIC"

// Config is the top-level configuration shared by all binaries.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Sinks     SinksConfig     `mapstructure:"sinks"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// DashboardConfig holds settings for the web dashboard (cmd/dashboard).
type DashboardConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	Debug           bool          `mapstructure:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
	ResolveDelay    time.Duration `mapstructure:"resolve_delay"`
	ThreatListLimit int           `mapstructure:"threat_list_limit"`
	// HostSampling replaces the simulated CPU and memory walk with real host readings.
	HostSampling bool `mapstructure:"host_sampling"`
}

// AgentsConfig holds settings for the agent pipeline runner (cmd/agents).
type AgentsConfig struct {
	WatcherID     string        `mapstructure:"watcher_id"`
	AnalyzerID    string        `mapstructure:"analyzer_id"`
	RemediatorID  string        `mapstructure:"remediator_id"`
	CycleInterval time.Duration `mapstructure:"cycle_interval"`
	// DashboardURL, when set, makes the runner report anomalies to the dashboard.
	DashboardURL string `mapstructure:"dashboard_url"`
	// Seed fixes the random source; 0 means seed from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// SinksConfig configures delivery of agent records to external services.
// Records are always logged; they are also POSTed when Endpoint and APIKey are set.
type SinksConfig struct {
	Endpoint           string        `mapstructure:"endpoint"`
	APIKey             string        `mapstructure:"api_key"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
}

// Enabled reports whether HTTP delivery is configured.
func (s SinksConfig) Enabled() bool {
	return s.Endpoint != "" && s.APIKey != ""
}

// TUIConfig holds settings for the terminal dashboard (cmd/soctop).
type TUIConfig struct {
	DashboardURL    string        `mapstructure:"dashboard_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Level returns the configured logrus level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// DashboardLevel is Level raised to debug when dashboard.debug is set.
func (c *Config) DashboardLevel() logrus.Level {
	if c.Dashboard.Debug {
		return logrus.DebugLevel
	}
	return c.Level()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("dashboard.http_addr", ":5000")
	v.SetDefault("dashboard.debug", false)
	v.SetDefault("dashboard.shutdown_timeout", 30*time.Second)
	v.SetDefault("dashboard.metrics_interval", 3*time.Second)
	v.SetDefault("dashboard.resolve_delay", 5*time.Second)
	v.SetDefault("dashboard.threat_list_limit", 10)
	v.SetDefault("dashboard.host_sampling", false)

	v.SetDefault("agents.watcher_id", "Watcher-001")
	v.SetDefault("agents.analyzer_id", "Analyzer-001")
	v.SetDefault("agents.remediator_id", "Remediator-001")
	v.SetDefault("agents.cycle_interval", time.Second)
	v.SetDefault("agents.dashboard_url", "")
	v.SetDefault("agents.seed", 0)

	v.SetDefault("sinks.endpoint", "")
	v.SetDefault("sinks.api_key", "")
	v.SetDefault("sinks.timeout", 10*time.Second)
	v.SetDefault("sinks.breaker_max_failures", 5)
	v.SetDefault("sinks.breaker_open_timeout", 30*time.Second)

	v.SetDefault("tui.dashboard_url", "http://localhost:5000")
	v.SetDefault("tui.refresh_interval", 2*time.Second)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in defaults, ignoring config files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Dashboard.ThreatListLimit <= 0 {
		cfg.Dashboard.ThreatListLimit = 10
	}
	return &cfg, nil
}

// Loader reads configuration and can watch the backing file for changes.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a loader. With an empty path it searches for
// aicompliance.yaml in the working directory and /etc/aicompliance/.
func NewLoader(path string) *Loader {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("aicompliance")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/aicompliance/")
	}
	return &Loader{v: v, path: path}
}

// Load reads the config file (if any) and returns the merged configuration.
// A missing file is only an error when a path was given explicitly.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(l.v)
}

// ConfigFileUsed returns the file backing this loader, or "" when running on
// defaults and environment only.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
