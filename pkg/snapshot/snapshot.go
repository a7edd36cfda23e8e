// Package snapshot captures every domain the service serves into a single
// JSON document, optionally compressed with the snappy framing format.
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/stats"
)

// Version is the document format written by Encode
const Version = 1

// Compression names used in metrics and Content-Type negotiation
const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
)

// streamMagic opens every snappy framed stream
var streamMagic = []byte("\xff\x06\x00\x00sNaPpY")

var (
	// ErrVersion is returned when decoding a document of an unknown version
	ErrVersion = errors.New("unsupported snapshot version")
)

// Snapshot is the complete data set at one instant
type Snapshot struct {
	Version        int                     `json:"version"`
	Source         string                  `json:"source"`
	GeneratedAt    time.Time               `json:"generatedAt"`
	Dashboard      *intel.DashboardMetrics `json:"dashboard"`
	Indicators     []intel.Indicator       `json:"indicators"`
	IndicatorStats stats.IndicatorStats    `json:"indicatorStats"`
	Alerts         []intel.Alert           `json:"alerts"`
	AlertStats     stats.AlertStats        `json:"alertStats"`
	Anomalies      *intel.AnomalyReport    `json:"anomalies"`
	AnomalyStats   stats.AnomalyStats      `json:"anomalyStats"`
	Analytics      *intel.AnalyticsBundle  `json:"analytics"`
	Feeds          []intel.Feed            `json:"feeds"`
	FeedStats      stats.FeedStats         `json:"feedStats"`
	Playbooks      []intel.Playbook        `json:"playbooks"`
	PlaybookStats  stats.PlaybookStats     `json:"playbookStats"`
}

// Options controls Encode
type Options struct {
	Compress bool
	// Metrics, when set, records the snapshot outcome and size
	Metrics *metrics.Registry
}

func (o Options) compression() string {
	if o.Compress {
		return CompressionSnappy
	}
	return CompressionNone
}

// Collect reads every domain from svc without truncation
func Collect(ctx context.Context, svc *service.Service) (*Snapshot, error) {
	all := intel.Criteria{Limit: intel.Unlimited}
	snap := &Snapshot{
		Version:     Version,
		Source:      svc.SourceName(),
		GeneratedAt: time.Now().UTC(),
	}

	var err error
	if snap.Dashboard, err = svc.DashboardMetrics(ctx); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	indicators, err := svc.Indicators(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Indicators, snap.IndicatorStats = indicators.Items, indicators.Stats

	alerts, err := svc.Alerts(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Alerts, snap.AlertStats = alerts.Items, alerts.Stats

	anomalies, err := svc.Anomalies(ctx, all, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Anomalies, snap.AnomalyStats = &anomalies.AnomalyReport, anomalies.Stats

	if snap.Analytics, err = svc.Analytics(ctx); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	feeds, err := svc.Feeds(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Feeds, snap.FeedStats = feeds.Items, feeds.Stats

	playbooks, err := svc.Playbooks(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	snap.Playbooks, snap.PlaybookStats = playbooks.Items, playbooks.Stats

	return snap, nil
}

// countingWriter tracks bytes written to the destination
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Encode writes snap as indented JSON and returns the number of bytes
// written to w
func Encode(w io.Writer, snap *Snapshot, opts Options) (int64, error) {
	n, err := encode(w, snap, opts)
	if opts.Metrics != nil {
		opts.Metrics.RecordSnapshot(opts.compression(), n, err)
	}
	return n, err
}

func encode(w io.Writer, snap *Snapshot, opts Options) (int64, error) {
	cw := &countingWriter{w: w}

	var dst io.Writer = cw
	var sw *snappy.Writer
	if opts.Compress {
		sw = snappy.NewBufferedWriter(cw)
		dst = sw
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return cw.n, fmt.Errorf("encode snapshot: %w", err)
	}

	if sw != nil {
		if err := sw.Close(); err != nil {
			return cw.n, fmt.Errorf("flush snappy stream: %w", err)
		}
	}
	return cw.n, nil
}

// Decode reads a snapshot written by Encode, detecting snappy framing
func Decode(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, _ := br.Peek(len(streamMagic)); bytes.Equal(head, streamMagic) {
		src = snappy.NewReader(br)
	}

	var snap Snapshot
	if err := json.NewDecoder(src).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	return &snap, nil
}
