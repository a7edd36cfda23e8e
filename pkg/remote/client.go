// Package remote fetches threat intelligence from a search backend. A query
// string is submitted as a search job, the job is polled until it finishes,
// and its result rows are decoded into domain records.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// NewClient creates a search client. BaseURL must be an absolute http(s) URL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("invalid remote base URL %q: want http(s)://host", cfg.BaseURL)
	}

	c := &Client{
		cfg:    cfg,
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.NewNopLogger(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Component("remote"))

	return c, nil
}

// Search submits query, waits for the job and returns its result rows as the
// backend sent them
func (c *Client) Search(ctx context.Context, query string) ([]map[string]any, error) {
	start := time.Now()
	polls := 0

	rows, err := func() ([]map[string]any, error) {
		sid, err := c.Submit(ctx, query)
		if err != nil {
			return nil, err
		}
		polls, err = c.Wait(ctx, sid)
		if err != nil {
			return nil, err
		}
		return c.Results(ctx, sid)
	}()

	if c.metrics != nil {
		c.metrics.RecordRemoteJob(failureKind(err), polls, time.Since(start))
	}
	if err != nil {
		c.logger.Warn("search failed", logging.Error(err), logging.Int("polls", polls))
		return nil, err
	}

	c.logger.Debug("search finished",
		logging.Count(len(rows)),
		logging.Int("polls", polls),
		logging.Latency(time.Since(start)))
	return rows, nil
}

// Submit creates a search job and returns its id
func (c *Client) Submit(ctx context.Context, query string) (string, error) {
	form := url.Values{"search": {query}}
	target := c.jobsURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &TransportError{Op: "submit", URL: target, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, "submit")
	if err != nil {
		return "", err
	}

	sid, err := parseJobID(body)
	if err != nil {
		return "", &QueryError{Op: "submit", Err: err}
	}

	c.logger.Debug("search job submitted", logging.JobID(sid))
	return sid, nil
}

// Wait polls the job until it is DONE and returns the number of polls issued.
// A FAILED job yields a QueryError; a job still running after MaxPolls
// yields a TransportError wrapping ErrPollLimit.
func (c *Client) Wait(ctx context.Context, sid string) (int, error) {
	target := c.jobsURL(sid)

	for poll := 1; poll <= c.cfg.MaxPolls; poll++ {
		state, messages, err := c.status(ctx, target)
		if err != nil {
			return poll, err
		}

		switch state {
		case StateDone:
			return poll, nil
		case StateFailed:
			return poll, &QueryError{Op: "search", JobID: sid, Message: messages}
		}

		if poll == c.cfg.MaxPolls {
			break
		}
		if err := sleep(ctx, c.cfg.PollInterval); err != nil {
			return poll, &TransportError{Op: "poll", URL: target, Err: err}
		}
	}

	return c.cfg.MaxPolls, &TransportError{Op: "poll", URL: target, Err: ErrPollLimit}
}

// Results fetches the rows of a finished job
func (c *Client) Results(ctx context.Context, sid string) ([]map[string]any, error) {
	target := c.jobsURL(sid, "results") + "?" + url.Values{"output_mode": {"json"}, "count": {"0"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Op: "results", URL: target, Err: err}
	}

	body, err := c.do(req, "results")
	if err != nil {
		return nil, err
	}

	var doc resultsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &QueryError{Op: "results", JobID: sid, Err: fmt.Errorf("decode results: %w", err)}
	}
	if doc.Results == nil {
		doc.Results = []map[string]any{}
	}
	return doc.Results, nil
}

func (c *Client) status(ctx context.Context, target string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+"?output_mode=json", nil)
	if err != nil {
		return "", "", &TransportError{Op: "poll", URL: target, Err: err}
	}

	body, err := c.do(req, "poll")
	if err != nil {
		return "", "", err
	}

	var st jobStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return "", "", &QueryError{Op: "poll", Err: fmt.Errorf("decode job status: %w", err)}
	}

	state, failed, messages := st.DispatchState, st.IsFailed, st.Messages
	if state == "" && len(st.Entry) > 0 {
		content := st.Entry[0].Content
		state, failed, messages = content.DispatchState, content.IsFailed, content.Messages
	}
	if failed {
		state = StateFailed
	}
	return strings.ToUpper(state), joinMessages(messages), nil
}

// do sends req with the session key and maps failures onto the error types
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	target := redact(req.URL)

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, &TransportError{Op: op, URL: target, Err: err}
		}
	}

	req.Header.Set("Authorization", "Splunk "+c.cfg.SessionKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: errors.New(errorMessage(body, resp.Status))}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &QueryError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	case resp.StatusCode >= 300:
		return nil, &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: errors.New("unexpected redirect")}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (c *Client) jobsURL(parts ...string) string {
	u := *c.base
	elems := append([]string{c.base.Path, c.cfg.AppPath, "search", "jobs"}, parts...)
	u.Path = path.Join(elems...)
	u.RawQuery = ""
	return u.String()
}

// parseJobID accepts a bare id, {"sid": ...} or <response><sid>...</sid></response>
func parseJobID(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)

	var sid string
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		var doc struct {
			SID string `json:"sid"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return "", fmt.Errorf("decode job id: %w", err)
		}
		sid = doc.SID
	case trimmed[0] == '<':
		var doc struct {
			SID string `xml:"sid"`
		}
		if err := xml.Unmarshal(trimmed, &doc); err != nil {
			return "", fmt.Errorf("decode job id: %w", err)
		}
		sid = doc.SID
	default:
		sid, _, _ = strings.Cut(string(trimmed), "\n")
	}

	sid = strings.TrimSpace(sid)
	if sid == "" {
		return "", errors.New("response carried no job id")
	}
	return sid, nil
}

// errorMessage pulls the backend's message text out of an error body
func errorMessage(body []byte, fallback string) string {
	var doc struct {
		Messages []jobMessage `json:"messages"`
	}
	if json.Unmarshal(body, &doc) == nil && len(doc.Messages) > 0 {
		return joinMessages(doc.Messages)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}

func joinMessages(msgs []jobMessage) string {
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	return strings.Join(texts, "; ")
}

// redact drops the query string so URLs can be logged
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
