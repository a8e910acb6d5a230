// Package config handles loading and validating the application configuration
// from a YAML file with environment variable substitution, plus the legacy
// flat environment variables (LOCATION_IDS, CHECK_INTERVAL, NTFY_TOPIC) that
// deployments set instead of a config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Locations     []int               `yaml:"locations"`
	SchedulerAPI  SchedulerAPIConfig  `yaml:"scheduler_api"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Store         StoreConfig         `yaml:"store"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Alerts        AlertsConfig        `yaml:"alerts"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings for the health and
// metrics endpoints.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SchedulerAPIConfig defines TTP scheduler API settings.
type SchedulerAPIConfig struct {
	SlotsURL     string          `yaml:"slots_url"`
	LocationsURL string          `yaml:"locations_url"`
	Timeout      time.Duration   `yaml:"timeout"`
	WindowDays   int             `yaml:"window_days"` // how far ahead to search
	SlotLimit    int             `yaml:"slot_limit"`  // max slots per response
	UserAgent    string          `yaml:"user_agent"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines scheduler API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// ScheduleConfig defines polling cadence.
type ScheduleConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
	PruneInterval time.Duration `yaml:"prune_interval"`
	StaggerOffset time.Duration `yaml:"stagger_offset"`
}

// StoreConfig selects and configures the seen-slot store backend.
type StoreConfig struct {
	Backend  string         `yaml:"backend"` // memory, postgres
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig defines PostgreSQL connection settings for the postgres
// store backend.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string. pool_max_conns is understood
// by pgxpool and ignored by plain pgx connections.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// NotificationsConfig selects and configures the notification backend.
type NotificationsConfig struct {
	Backend string        `yaml:"backend"` // ntfy, discord, noop
	Ntfy    NtfyConfig    `yaml:"ntfy"`
	Discord DiscordConfig `yaml:"discord"`
}

// NtfyConfig defines ntfy.sh pub/sub settings.
type NtfyConfig struct {
	Server string `yaml:"server"`
	Topic  string `yaml:"topic"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// AlertsConfig defines alert behavior.
type AlertsConfig struct {
	StartupTest    bool `yaml:"startup_test"`    // send a synthetic alert on startup
	BatchThreshold int  `yaml:"batch_threshold"` // group alerts above this count
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load builds the configuration. A YAML file is optional: an empty path (or
// a missing file at the default path) yields a config assembled purely from
// environment variables and defaults. Explicitly named files must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand ${VAR} references in the YAML content.
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides maps the flat environment variables onto the config.
// These take precedence over the YAML file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOCATION_IDS"); v != "" {
		ids, err := ParseLocationIDs(v)
		if err != nil {
			return err
		}
		cfg.Locations = ids
	}

	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return fmt.Errorf("CHECK_INTERVAL must be a positive number of seconds (got %q)", v)
		}
		cfg.Schedule.CheckInterval = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("NTFY_TOPIC"); v != "" {
		cfg.Notifications.Ntfy.Topic = v
	}

	return nil
}

// ParseLocationIDs parses a comma-separated list of numeric location IDs.
// Non-numeric entries are a hard error so a typo fails at startup rather
// than polling nothing.
func ParseLocationIDs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid location id %q: must be numeric", p)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, errors.New("location id list is empty")
	}

	return ids, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applySchedulerAPIDefaults(&cfg.SchedulerAPI)
	applyScheduleDefaults(&cfg.Schedule)
	applyStoreDefaults(&cfg.Store)
	applyNotificationsDefaults(&cfg.Notifications)
	applyAlertsDefaults(&cfg.Alerts)
	applyLoggingDefaults(&cfg.Logging)

	if len(cfg.Locations) == 0 {
		// Charlotte-Douglas International Airport, same default as the
		// original deployments.
		cfg.Locations = []int{14321}
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applySchedulerAPIDefaults(s *SchedulerAPIConfig) {
	if s.SlotsURL == "" {
		s.SlotsURL = "https://ttp.cbp.dhs.gov/schedulerapi/slots"
	}
	if s.LocationsURL == "" {
		s.LocationsURL = "https://ttp.cbp.dhs.gov/schedulerapi/locations"
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.WindowDays == 0 {
		s.WindowDays = 365
	}
	if s.SlotLimit == 0 {
		s.SlotLimit = 100
	}
	if s.UserAgent == "" {
		// The scheduler API rejects requests with a default Go user agent.
		s.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	applyRateLimitDefaults(&s.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.CheckInterval == 0 {
		s.CheckInterval = 15 * time.Minute
	}
	if s.PruneInterval == 0 {
		s.PruneInterval = 6 * time.Hour
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Backend == "" {
		s.Backend = "memory"
	}
	if s.Database.Port == 0 {
		s.Database.Port = 5432
	}
	if s.Database.SSLMode == "" {
		s.Database.SSLMode = "disable"
	}
	if s.Database.PoolSize == 0 {
		s.Database.PoolSize = 5
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.Backend == "" {
		n.Backend = "ntfy"
	}
	if n.Ntfy.Server == "" {
		n.Ntfy.Server = "https://ntfy.sh"
	}
	if n.Ntfy.Topic == "" {
		n.Ntfy.Topic = "vu_alert"
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.BatchThreshold == 0 {
		a.BatchThreshold = 5
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Schedule.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("schedule.check_interval must be positive"))
	}

	switch cfg.Store.Backend {
	case "memory":
	case "postgres":
		if cfg.Store.Database.Host == "" {
			errs = append(errs, fmt.Errorf("store.database.host is required when backend is postgres"))
		}
		if cfg.Store.Database.Name == "" {
			errs = append(errs, fmt.Errorf("store.database.name is required when backend is postgres"))
		}
		if cfg.Store.Database.User == "" {
			errs = append(errs, fmt.Errorf("store.database.user is required when backend is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be one of: memory, postgres (got %q)", cfg.Store.Backend))
	}

	switch cfg.Notifications.Backend {
	case "ntfy":
		if cfg.Notifications.Ntfy.Topic == "" {
			errs = append(errs, fmt.Errorf("notifications.ntfy.topic is required when backend is ntfy"))
		}
	case "discord":
		if cfg.Notifications.Discord.WebhookURL == "" {
			errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when backend is discord"))
		}
	case "noop":
	default:
		errs = append(errs, fmt.Errorf("notifications.backend must be one of: ntfy, discord, noop (got %q)", cfg.Notifications.Backend))
	}

	for _, id := range cfg.Locations {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("location id must be positive (got %d)", id))
		}
	}

	return errors.Join(errs...)
}
