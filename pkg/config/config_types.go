package config

import (
	"time"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// Data source modes
const (
	ModeSimulated = "simulated"
	ModeRemote    = "remote"
)

// Modes lists the accepted values of Config.Mode
var Modes = []string{ModeSimulated, ModeRemote}

// Defaults
const (
	DefaultListen          = ":8080"
	DefaultUpdateInterval  = 10 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRateLimit       = 50
	DefaultRateBurst       = 100
)

// Config is the server configuration
type Config struct {
	Mode     string        `yaml:"mode" json:"mode" validate:"required"`
	Listen   string        `yaml:"listen" json:"listen" validate:"required,hostname_port"`
	LogLevel logging.Level `yaml:"log_level" json:"log_level"`
	// Seed makes simulated data reproducible; 0 seeds from the runtime
	Seed           uint64        `yaml:"seed" json:"seed"`
	UpdateInterval time.Duration `yaml:"update_interval" json:"update_interval"`

	Remote RemoteConfig `yaml:"remote" json:"remote"`
	HTTP   HTTPConfig   `yaml:"http" json:"http"`
}

// RemoteConfig configures the search backend used in remote mode
type RemoteConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	AppPath      string        `yaml:"app_path" json:"app_path"`
	SessionKey   string        `yaml:"session_key" json:"-"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls" json:"max_polls" validate:"gte=0"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	RateLimit    float64       `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`
	RateBurst    int           `yaml:"rate_burst" json:"rate_burst" validate:"gte=0"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes" validate:"gte=0"`
	// RateLimit is requests per second per client; 0 disables limiting
	RateLimit          float64  `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`
	RateBurst          int      `yaml:"rate_burst" json:"rate_burst" validate:"gte=0"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`
	// TrustedProxies lists IPs or CIDRs whose forwarding headers are honoured
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`
}
