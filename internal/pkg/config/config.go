package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/samirrijal/lapwatch/internal/core/lap"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Laps      LapsConfig      `mapstructure:"laps"`
	Action    ActionConfig    `mapstructure:"action"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// SessionConfig identifies the vehicle session all subjects live under.
type SessionConfig struct {
	CID uint16 `mapstructure:"cid"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	JetStream     bool   `mapstructure:"jetstream"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	StatusTTL int    `mapstructure:"status_ttl"`
}

// LapsConfig is the hysteresis band and action cadence.
type LapsConfig struct {
	OuterRadius     float64 `mapstructure:"outer_radius"`
	InnerRadius     float64 `mapstructure:"inner_radius"`
	Period          uint32  `mapstructure:"period"`
	ReferenceSender uint32  `mapstructure:"reference_sender"`
}

type ActionConfig struct {
	Address string `mapstructure:"address"`
	Command string `mapstructure:"command"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Flags returns the command-line flags Load understands.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Uint16("cid", 111, "session id the position stream is published under")
	fs.Bool("verbose", false, "log every lap and sample")
	fs.String("config", "", "path to a config file (default ./config.yaml or ./configs/config.yaml)")
	return fs
}

// Load reads configuration from defaults, an optional file, environment
// variables and, when fs is non-nil, parsed command-line flags.
func Load(service string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("session.cid", 111)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "opendlv")
	v.SetDefault("nats.jetstream", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.status_ttl", 3600)
	v.SetDefault("laps.outer_radius", lap.DefaultOuterRadius)
	v.SetDefault("laps.inner_radius", lap.DefaultInnerRadius)
	v.SetDefault("laps.period", lap.DefaultPeriod)
	v.SetDefault("laps.reference_sender", lap.DefaultReferenceSender)
	v.SetDefault("action.address", lap.DefaultActionAddress)
	v.SetDefault("action.command", lap.DefaultActionCommand)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.verbose", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: LAPWATCH_LAPS_OUTER_RADIUS → laps.outer_radius
	v.SetEnvPrefix("LAPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flags win over everything, but only when set explicitly.
	if fs != nil {
		if err := v.BindPFlag("session.cid", fs.Lookup("cid")); err != nil {
			return nil, fmt.Errorf("bind cid flag: %w", err)
		}
		if err := v.BindPFlag("log.verbose", fs.Lookup("verbose")); err != nil {
			return nil, fmt.Errorf("bind verbose flag: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Log.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.NATS.SubjectPrefix == "" || strings.ContainsAny(c.NATS.SubjectPrefix, " *>") {
		errs = append(errs, fmt.Sprintf("nats.subject_prefix must be a plain subject token, got %q", c.NATS.SubjectPrefix))
	}
	if c.Valkey.StatusTTL <= 0 {
		errs = append(errs, "valkey.status_ttl must be positive")
	}
	if err := c.Core().Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("laps.inner_radius/laps.outer_radius: %v", err))
	}
	if c.Laps.Period == 0 {
		errs = append(errs, "laps.period must be positive")
	}
	if c.Action.Address == "" {
		errs = append(errs, "action.address is required")
	}
	if c.Action.Command == "" {
		errs = append(errs, "action.command is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Core returns the lap core configuration.
func (c *Config) Core() lap.Config {
	return lap.Config{
		Thresholds: lap.Thresholds{
			Outer: c.Laps.OuterRadius,
			Inner: c.Laps.InnerRadius,
		},
		Period:          c.Laps.Period,
		ReferenceSender: c.Laps.ReferenceSender,
		ActionAddress:   c.Action.Address,
		ActionCommand:   c.Action.Command,
	}
}

// Subject returns the NATS subject for a message kind in this session,
// e.g. "opendlv.111.geodetic".
func (c *Config) Subject(kind string) string {
	return fmt.Sprintf("%s.%d.%s", c.NATS.SubjectPrefix, c.Session.CID, kind)
}

// StatusKey is the cache key the lap status is mirrored under.
func (c *Config) StatusKey() string {
	return fmt.Sprintf("%s:%d:lap_status", c.NATS.SubjectPrefix, c.Session.CID)
}
