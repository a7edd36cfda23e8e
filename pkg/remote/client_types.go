package remote

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
)

const (
	// DefaultAppPath is the app-scoped REST namespace the search jobs live under
	DefaultAppPath      = "/servicesNS/admin/threat_loom"
	DefaultPollInterval = time.Second
	DefaultMaxPolls     = 60
	DefaultTimeout      = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read into messages
	maxErrorBody = 4096
)

// Job dispatch states reported by the backend
const (
	StateQueued     = "QUEUED"
	StateParsing    = "PARSING"
	StateRunning    = "RUNNING"
	StateFinalizing = "FINALIZING"
	StateDone       = "DONE"
	StateFailed     = "FAILED"
)

// Config describes how to reach the search backend
type Config struct {
	BaseURL      string
	AppPath      string
	SessionKey   string
	PollInterval time.Duration
	MaxPolls     int
	Timeout      time.Duration
	// RateLimit caps outgoing requests per second; 0 disables limiting
	RateLimit float64
	RateBurst int
}

func (c Config) withDefaults() Config {
	if c.AppPath == "" {
		c.AppPath = DefaultAppPath
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = DefaultMaxPolls
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}

// Client runs searches through the submit / poll / fetch job protocol
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// jobStatus accepts both a flat status document and the entry/content
// envelope the backend wraps it in
type jobStatus struct {
	DispatchState string       `json:"dispatchState"`
	IsFailed      bool         `json:"isFailed"`
	Messages      []jobMessage `json:"messages"`
	Entry         []struct {
		Content struct {
			DispatchState string       `json:"dispatchState"`
			IsFailed      bool         `json:"isFailed"`
			Messages      []jobMessage `json:"messages"`
		} `json:"content"`
	} `json:"entry"`
}

type jobMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type resultsDocument struct {
	Results []map[string]any `json:"results"`
}
