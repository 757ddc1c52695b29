// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/storage"
	"github.com/jeranaias/genchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete genchat configuration.
type Config struct {
	// Generation endpoint
	Endpoint EndpointConfig `toml:"endpoint"`

	// Transcript storage
	Storage StorageConfig `toml:"storage"`

	// Terminal UI
	UI UIConfig `toml:"ui"`

	// Log file
	Log LogConfig `toml:"log"`
}

// EndpointConfig configures the generation endpoint.
type EndpointConfig struct {
	// URL is the endpoint base URL; requests go to URL + "/chat".
	URL string `toml:"url"`

	// Timeout bounds one request. "0s" waits indefinitely.
	Timeout Duration `toml:"timeout"`
}

// StorageConfig selects where the transcript is kept.
type StorageConfig struct {
	Backend     string `toml:"backend"` // file, sqlite, redis, memory
	Dir         string `toml:"dir"`
	SQLitePath  string `toml:"sqlite_path"`
	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`
	Key         string `toml:"key"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	DefaultMode string `toml:"default_mode"`
	Theme       string `toml:"theme"` // auto, dark, light
	Markdown    bool   `toml:"markdown"`
}

// LogConfig configures the log file.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Bare integers are read as seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultEndpointURL is where the generation backend listens by default.
	DefaultEndpointURL = "http://localhost:8000"

	// DefaultTimeout bounds one generation request.
	DefaultTimeout = 120 * time.Second

	// DefaultStorageKey is the fixed key the transcript is stored under.
	DefaultStorageKey = "chatLog"
)

// Default returns the default configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".genchat"
	}

	return &Config{
		Endpoint: EndpointConfig{
			URL:     DefaultEndpointURL,
			Timeout: Duration{DefaultTimeout},
		},
		Storage: StorageConfig{
			Backend:     string(storage.BackendFile),
			Dir:         filepath.Join(dir, "data"),
			SQLitePath:  filepath.Join(dir, "genchat.db"),
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: storage.DefaultRedisPrefix,
			Key:         DefaultStorageKey,
		},
		UI: UIConfig{
			DefaultMode: string(model.DefaultMode),
			Theme:       "auto",
			Markdown:    true,
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "genchat.log"),
			Level: "info",
		},
	}
}

// fillDefaults fills in any empty string values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Endpoint.URL == "" {
		cfg.Endpoint.URL = defaults.Endpoint.URL
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaults.Storage.Dir
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = defaults.Storage.SQLitePath
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = defaults.Storage.RedisAddr
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = defaults.Storage.RedisPrefix
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = defaults.Storage.Key
	}

	if cfg.UI.DefaultMode == "" {
		cfg.UI.DefaultMode = defaults.UI.DefaultMode
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the genchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".genchat"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from the default location when
// path is empty. A missing file yields the defaults. Environment
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := decodeFile(cfg, path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a file that must exist.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decodeFile decodes the TOML file at path over cfg, so keys the file
// does not mention keep their current values.
func decodeFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg as TOML to path, or to the default location when path
// is empty. The file is written atomically with 0600 permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := cfg.Encode()
	if err != nil {
		return err
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders cfg as a commented TOML document.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# genchat configuration file")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# Environment overrides: GENCHAT_ENDPOINT, GENCHAT_MODE, GENCHAT_STORAGE,")
	fmt.Fprintln(&buf, "# GENCHAT_DATA_DIR, GENCHAT_TIMEOUT, GENCHAT_LOG_LEVEL, GENCHAT_REDIS_ADDR")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// String returns the config as TOML for display.
func (c *Config) String() string {
	data, err := c.Encode()
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Endpoint
	if u, err := url.Parse(c.Endpoint.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "endpoint.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http or https URL", c.Endpoint.URL),
		})
	}
	if c.Endpoint.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.timeout",
			Message: "must not be negative (use 0s to disable)",
		})
	}

	// Storage
	if _, err := storage.ParseBackend(c.Storage.Backend); err != nil {
		errs = append(errs, ValidationError{Field: "storage.backend", Message: err.Error()})
	}
	if c.Storage.Key == "" || strings.ContainsAny(c.Storage.Key, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "storage.key",
			Message: fmt.Sprintf("invalid key '%s', must be non-empty without path separators", c.Storage.Key),
		})
	}

	// UI
	if _, err := model.ParseMode(c.UI.DefaultMode); err != nil {
		errs = append(errs, ValidationError{Field: "ui.default_mode", Message: err.Error()})
	}
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	// Log
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Mode returns the configured default mode, falling back to chat.
func (c *Config) Mode() model.Mode {
	mode, err := model.ParseMode(c.UI.DefaultMode)
	if err != nil {
		return model.DefaultMode
	}
	return mode
}

// StorageOptions converts the storage section to storage.Options.
func (c *Config) StorageOptions() storage.Options {
	backend, err := storage.ParseBackend(c.Storage.Backend)
	if err != nil {
		backend = storage.BackendFile
	}
	return storage.Options{
		Backend:     backend,
		Dir:         c.Storage.Dir,
		SQLitePath:  c.Storage.SQLitePath,
		RedisAddr:   c.Storage.RedisAddr,
		RedisPrefix: c.Storage.RedisPrefix,
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GENCHAT_ENDPOINT: overrides endpoint.url
//   - GENCHAT_TIMEOUT: overrides endpoint.timeout ("90s", "2m", or seconds)
//   - GENCHAT_MODE: overrides ui.default_mode
//   - GENCHAT_STORAGE: overrides storage.backend
//   - GENCHAT_DATA_DIR: overrides storage.dir
//   - GENCHAT_REDIS_ADDR: overrides storage.redis_addr
//   - GENCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("GENCHAT_ENDPOINT"); endpoint != "" {
		c.Endpoint.URL = endpoint
	}

	// Unparseable values are ignored rather than failing startup
	if timeout := os.Getenv("GENCHAT_TIMEOUT"); timeout != "" {
		if d, err := parseDuration(timeout); err == nil {
			c.Endpoint.Timeout = Duration{d}
		}
	}

	if mode := os.Getenv("GENCHAT_MODE"); mode != "" {
		c.UI.DefaultMode = mode
	}

	if backend := os.Getenv("GENCHAT_STORAGE"); backend != "" {
		c.Storage.Backend = backend
	}

	if dir := os.Getenv("GENCHAT_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	if addr := os.Getenv("GENCHAT_REDIS_ADDR"); addr != "" {
		c.Storage.RedisAddr = addr
	}

	if level := os.Getenv("GENCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
