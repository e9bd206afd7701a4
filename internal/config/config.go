// Package config loads and validates the monitor configuration from the
// environment. Configuration is an explicit struct handed to the
// orchestrator at startup, never ambient globals, so cycles stay
// reproducible in tests.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/waitlist-monitor/internal/notify"
	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// DefaultURL is the page carrying the waiting-list table.
const DefaultURL = "https://www.arin.net/resources/guide/ipv4/waiting_list/"

// DefaultCheckIntervalHours is the watch-mode interval between cycles.
const DefaultCheckIntervalHours = 12

// Config is the full monitor configuration.
type Config struct {
	// Scrape target
	URL       string `validate:"required,url"`
	TargetKey string `validate:"required"`
	StateFile string `validate:"required"`

	// Table layout
	KeyColumn int
	Columns   waitlist.ColumnMap

	// Scheduling
	CheckInterval time.Duration

	// Presentation
	TimeZone  string
	TimeLabel string
	Verbose   bool

	// Mail
	SMTPHost      string
	SMTPPort      int `validate:"min=0,max=65535"`
	SMTPUser      string
	SMTPPass      string
	MailFrom      string
	MailTo        []string `validate:"omitempty,dive,email"`
	SubjectPrefix string
	TLSMode       notify.TLSMode `validate:"oneof=implicit starttls"`
}

// Load reads the configuration from environment variables, applying
// defaults for everything except the target key. A .env file, if any, is
// loaded by main before this runs.
func Load() (*Config, error) {
	cfg := &Config{
		URL:           getenv("WAITLIST_URL", DefaultURL),
		TargetKey:     os.Getenv("WAITLIST_TARGET_DATE"),
		StateFile:     getenv("WAITLIST_STATE_FILE", "waitlist_state.json"),
		TimeZone:      getenv("CHECK_TIME_ZONE", "America/Chicago"),
		TimeLabel:     getenv("CHECK_TIME_LABEL", "CST"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SubjectPrefix: getenv("MAIL_SUBJECT_PREFIX", "[ARIN Waitlist]"),
		MailTo:        notify.ParseRecipients(os.Getenv("MAIL_TO")),
	}
	cfg.MailFrom = getenv("MAIL_FROM", cfg.SMTPUser)

	var err error
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	hours, err := intEnv("WAITLIST_CHECK_INTERVAL_HOURS", DefaultCheckIntervalHours)
	if err != nil {
		return nil, err
	}
	cfg.CheckInterval = time.Duration(hours) * time.Hour

	if cfg.KeyColumn, err = intEnv("WAITLIST_KEY_COLUMN", 0); err != nil {
		return nil, err
	}
	if cfg.Columns.Position, err = intEnv("WAITLIST_POSITION_COLUMN", 1); err != nil {
		return nil, err
	}
	if cfg.Columns.Total, err = intEnv("WAITLIST_TOTAL_COLUMN", 0); err != nil {
		return nil, err
	}
	if cfg.Columns.MaxPrefix, err = intEnv("WAITLIST_MAX_PREFIX_COLUMN", 2); err != nil {
		return nil, err
	}
	if cfg.Columns.MinPrefix, err = intEnv("WAITLIST_MIN_PREFIX_COLUMN", 3); err != nil {
		return nil, err
	}
	if cfg.Columns.Combined, err = boolEnv("WAITLIST_COMBINED_POSITION", true); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = boolEnv("WAITLIST_VERBOSE", false); err != nil {
		return nil, err
	}

	mode := notify.TLSMode(os.Getenv("SMTP_TLS_MODE"))
	if mode == "" {
		mode = notify.DefaultTLSMode(cfg.SMTPPort)
	}
	cfg.TLSMode = mode

	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	// MAIL_FROM inherits SMTP_USER, which some providers set to a bare
	// username (e.g. "apikey"). Only a fully configured mailer needs an
	// address-shaped sender; fallback-only operation does not.
	if c.Mailer().Configured() {
		if err := v.Var(c.MailFrom, "email"); err != nil {
			return fmt.Errorf("config error: MAIL_FROM %q is not a valid email address", c.MailFrom)
		}
	}
	if c.CheckInterval < time.Minute {
		return fmt.Errorf("config error: check interval must be at least one minute, got %s", c.CheckInterval)
	}
	for name, idx := range map[string]int{
		"key":        c.KeyColumn,
		"position":   c.Columns.Position,
		"total":      c.Columns.Total,
		"max prefix": c.Columns.MaxPrefix,
		"min prefix": c.Columns.MinPrefix,
	} {
		if idx < 0 {
			return fmt.Errorf("config error: %s column index must not be negative", name)
		}
	}
	if !c.Columns.Combined && c.Columns.Total == c.Columns.Position {
		return fmt.Errorf("config error: split position and total columns must differ")
	}
	return nil
}

// Mailer builds the SMTP mailer described by the configuration.
func (c *Config) Mailer() *notify.SMTPMailer {
	return &notify.SMTPMailer{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPass,
		From:     c.MailFrom,
		To:       c.MailTo,
		Mode:     c.TLSMode,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", key, v)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config error: %s must be a boolean, got %q", key, v)
	}
	return b, nil
}
