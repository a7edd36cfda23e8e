// Package config loads the server configuration from an optional YAML file,
// environment overrides and built-in defaults, in increasing precedence
// order: defaults, file, environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/remote"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Mode:           ModeSimulated,
		Listen:         DefaultListen,
		LogLevel:       logging.InfoLevel,
		UpdateInterval: DefaultUpdateInterval,
		Remote: RemoteConfig{
			AppPath:      remote.DefaultAppPath,
			PollInterval: remote.DefaultPollInterval,
			MaxPolls:     remote.DefaultMaxPolls,
			Timeout:      remote.DefaultTimeout,
		},
		HTTP: HTTPConfig{
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without consulting the environment
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// splitList splits a comma separated variable, dropping empty entries
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// applyEnv overlays THREATLOOM_* variables, LOG_LEVEL, PORT,
// CORS_ALLOWED_ORIGINS and TRUSTED_PROXIES
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("THREATLOOM_MODE", &c.Mode)
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Listen = ":" + port
	}
	str("THREATLOOM_LISTEN", &c.Listen)
	str("THREATLOOM_REMOTE_URL", &c.Remote.BaseURL)
	str("THREATLOOM_REMOTE_APP_PATH", &c.Remote.AppPath)
	str("THREATLOOM_SESSION_KEY", &c.Remote.SessionKey)

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		level, err := logging.ParseLevelStrict(v)
		if err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
		c.LogLevel = level
	}
	if v, ok := lookup("THREATLOOM_UPDATE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("THREATLOOM_UPDATE_INTERVAL: %w", err)
		}
		c.UpdateInterval = d
	}
	if v, ok := lookup("THREATLOOM_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("THREATLOOM_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.HTTP.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok && v != "" {
		c.HTTP.TrustedProxies = splitList(v)
	}
	return nil
}

// maxHTTPTimeout bounds the server read, write and shutdown timeouts
const maxHTTPTimeout = 10 * time.Minute

// Validate checks struct tags and cross-field rules
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cv := validation.NewConfigValidator("").
		OneOfFold("mode", c.Mode, Modes).
		MinDuration("update_interval", c.UpdateInterval, time.Second).
		RangeDuration("http.read_timeout", c.HTTP.ReadTimeout, time.Second, maxHTTPTimeout).
		RangeDuration("http.write_timeout", c.HTTP.WriteTimeout, time.Second, maxHTTPTimeout).
		RangeDuration("http.shutdown_timeout", c.HTTP.ShutdownTimeout, time.Second, maxHTTPTimeout).
		Origins("http.cors_allowed_origins", c.HTTP.CORSAllowedOrigins).
		Networks("http.trusted_proxies", c.HTTP.TrustedProxies).
		When(c.IsRemote(), func(cv *validation.ConfigValidator) {
			cv.Required("remote.base_url", c.Remote.BaseURL).
				URL("remote.base_url", c.Remote.BaseURL).
				MinDuration("remote.poll_interval", c.Remote.PollInterval, 10*time.Millisecond)
		})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsRemote reports whether the remote search backend is selected
func (c *Config) IsRemote() bool {
	return strings.EqualFold(c.Mode, ModeRemote)
}

// RemoteClientConfig converts the remote section for remote.NewClient
func (c *Config) RemoteClientConfig() remote.Config {
	return remote.Config{
		BaseURL:      c.Remote.BaseURL,
		AppPath:      c.Remote.AppPath,
		SessionKey:   c.Remote.SessionKey,
		PollInterval: c.Remote.PollInterval,
		MaxPolls:     c.Remote.MaxPolls,
		Timeout:      c.Remote.Timeout,
		RateLimit:    c.Remote.RateLimit,
		RateBurst:    c.Remote.RateBurst,
	}
}
