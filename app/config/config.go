package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"postboard/app/client"
	"postboard/app/page"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POSTBOARD_"

var ErrConfig = errors.New("invalid configuration")

var validate = validator.New()

// Duration is a time.Duration written as "10s" in TOML and the environment.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the server configuration.
type Config struct {
	Addr           string   `toml:"addr" validate:"required"`
	APIURL         string   `toml:"api_url" validate:"required,url"`
	Timeout        Duration `toml:"timeout" validate:"gt=0"`
	FallbackUserID int      `toml:"fallback_user_id" validate:"gte=0"`
	FetchLimit     int      `toml:"fetch_limit" validate:"gte=0"`
	LogLevel       string   `toml:"log_level" validate:"oneof=debug info warn error"`
	StateStore     string   `toml:"state_store" validate:"oneof=memory badger"`
	BadgerPath     string   `toml:"badger_path"`
	SessionIdle    Duration `toml:"session_idle" validate:"gte=0"`
	MaxSessions    int      `toml:"max_sessions" validate:"gte=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr:           ":8080",
		APIURL:         client.DefaultBaseURL,
		Timeout:        Duration(10 * time.Second),
		FallbackUserID: page.DefaultFallbackUserID,
		FetchLimit:     8,
		LogLevel:       "info",
		StateStore:     "memory",
		SessionIdle:    Duration(30 * time.Minute),
		MaxSessions:    10000,
	}
}

// Load builds the configuration from the defaults, the TOML file at path (if
// path is not empty), a .env file in the working directory and POSTBOARD_*
// variables, in increasing precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: load %s: %v", ErrConfig, path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("[config] .env: %v", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// Options returns the page options the configuration selects.
func (c Config) Options() page.Options {
	return page.Options{FallbackUserID: c.FallbackUserID, FetchLimit: c.FetchLimit}
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ADDR":        &c.Addr,
		"API_URL":     &c.APIURL,
		"LOG_LEVEL":   &c.LogLevel,
		"STATE_STORE": &c.StateStore,
		"BADGER_PATH": &c.BadgerPath,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FALLBACK_USER_ID": &c.FallbackUserID,
		"FETCH_LIMIT":      &c.FetchLimit,
		"MAX_SESSIONS":     &c.MaxSessions,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrConfig, EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*Duration{
		"TIMEOUT":      &c.Timeout,
		"SESSION_IDLE": &c.SessionIdle,
	}
	for key, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrConfig, EnvPrefix, key, err)
			}
		}
	}
	return nil
}

// SetupLogging applies the configured level.
func SetupLogging(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
