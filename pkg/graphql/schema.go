// Package graphql exposes the threat intelligence service as a GraphQL
// schema built with graphql-go, plus the HTTP handler serving it.
package graphql

import (
	"context"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// HealthFunc reports the overall service status for the health query
type HealthFunc func(ctx context.Context) string

// SchemaOption configures schema generation
type SchemaOption func(*resolver)

// WithHealth sets the function backing the health query
func WithHealth(fn HealthFunc) SchemaOption {
	return func(r *resolver) {
		if fn != nil {
			r.health = fn
		}
	}
}

// WithLogger sets the logger used to record resolver failures
func WithLogger(logger logging.Logger) SchemaOption {
	return func(r *resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type resolver struct {
	svc    *service.Service
	health HealthFunc
	logger logging.Logger
}

// resolverError carries the client-safe message and its classification
type resolverError struct {
	kind service.ErrorKind
	msg  string
}

func (e *resolverError) Error() string { return e.msg }

// Extensions is reported under "extensions" in the GraphQL error
func (e *resolverError) Extensions() map[string]any {
	return map[string]any{"code": string(e.kind)}
}

// fail logs err and converts it to a client-safe resolver error
func (r *resolver) fail(field string, err error) error {
	kind := service.Classify(err)
	if kind == service.KindInvalid {
		r.logger.Debug("graphql argument rejected", logging.Operation(field), logging.Error(err))
	} else {
		r.logger.Error("graphql resolver failed", logging.Operation(field), logging.Error(err))
	}
	return &resolverError{kind: kind, msg: service.PublicMessage(err)}
}

// NewSchema builds the query schema over svc
func NewSchema(svc *service.Service, opts ...SchemaOption) (graphql.Schema, error) {
	r := &resolver{
		svc:    svc,
		health: func(context.Context) string { return "ok" },
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logging.Component("graphql"))

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.health(p.Context), nil
				},
			},
			"source": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Name of the data source variant serving queries",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return svc.SourceName(), nil
				},
			},
			"dashboard": &graphql.Field{
				Type:    dashboardType,
				Resolve: r.dashboard,
			},
			"indicators": &graphql.Field{
				Type:    indicatorPageType,
				Args:    criteriaArgs("type", "severity", "search"),
				Resolve: r.indicators,
			},
			"alerts": &graphql.Field{
				Type:    alertPageType,
				Args:    criteriaArgs("status", "severity", "search"),
				Resolve: r.alerts,
			},
			"anomalies": &graphql.Field{
				Type: anomalyReportType,
				Args: withArgs(criteriaArgs("type", "severity", "search"), graphql.FieldConfigArgument{
					"window": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Look-back window as a Go duration, e.g. 24h",
					},
				}),
				Resolve: r.anomalies,
			},
			"analytics": &graphql.Field{
				Type:    analyticsType,
				Resolve: r.analytics,
			},
			"feeds": &graphql.Field{
				Type:    feedPageType,
				Args:    criteriaArgs("type", "status", "search"),
				Resolve: r.feeds,
			},
			"playbooks": &graphql.Field{
				Type:    playbookPageType,
				Args:    criteriaArgs("category", "search"),
				Resolve: r.playbooks,
			},
			"timeSeries": &graphql.Field{
				Type: listOf(timeSeriesPointType),
				Args: graphql.FieldConfigArgument{
					"hours": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 24},
					"min":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"max":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 200},
				},
				Resolve: r.timeSeries,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

// criteriaArgs declares the given string filters plus limit
func criteriaArgs(names ...string) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"limit": &graphql.ArgumentConfig{
			Type:        graphql.Int,
			Description: "Maximum items returned (0-1000, default 100)",
		},
	}
	for _, name := range names {
		args[name] = &graphql.ArgumentConfig{Type: graphql.String}
	}
	return args
}

func withArgs(base, extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// criteria reads filter arguments. "category" is the playbook spelling of
// the type filter.
func criteria(args map[string]any) intel.Criteria {
	c := intel.Criteria{
		Type:     stringArg(args, "type"),
		Severity: stringArg(args, "severity"),
		Status:   stringArg(args, "status"),
		Search:   stringArg(args, "search"),
	}
	if category := stringArg(args, "category"); category != "" {
		c.Type = category
	}
	if limit, ok := args["limit"].(int); ok {
		c.Limit = limit
	}
	return c
}

func (r *resolver) dashboard(p graphql.ResolveParams) (any, error) {
	m, err := r.svc.DashboardMetrics(p.Context)
	if err != nil {
		return nil, r.fail("dashboard", err)
	}
	return m, nil
}

func (r *resolver) indicators(p graphql.ResolveParams) (any, error) {
	res, err := r.svc.Indicators(p.Context, criteria(p.Args))
	if err != nil {
		return nil, r.fail("indicators", err)
	}
	return toPage(res.Page, res.Stats), nil
}

func (r *resolver) alerts(p graphql.ResolveParams) (any, error) {
	res, err := r.svc.Alerts(p.Context, criteria(p.Args))
	if err != nil {
		return nil, r.fail("alerts", err)
	}
	return toPage(res.Page, res.Stats), nil
}

func (r *resolver) anomalies(p graphql.ResolveParams) (any, error) {
	var window time.Duration
	if raw := stringArg(p.Args, "window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, r.fail("anomalies", &validation.Error{Field: "window", Message: "must be a duration such as 24h"})
		}
		window = d
	}

	res, err := r.svc.Anomalies(p.Context, criteria(p.Args), window)
	if err != nil {
		return nil, r.fail("anomalies", err)
	}
	return anomalyReport{
		Summary:         res.Summary,
		Categories:      res.Categories,
		RecentAnomalies: res.RecentAnomalies,
		TimeSeries:      res.TimeSeries,
		Window:          res.Window,
		Total:           res.Total,
		Matched:         res.Matched,
		Stats:           res.Stats,
	}, nil
}

func (r *resolver) analytics(p graphql.ResolveParams) (any, error) {
	bundle, err := r.svc.Analytics(p.Context)
	if err != nil {
		return nil, r.fail("analytics", err)
	}
	return bundle, nil
}

func (r *resolver) feeds(p graphql.ResolveParams) (any, error) {
	res, err := r.svc.Feeds(p.Context, criteria(p.Args))
	if err != nil {
		return nil, r.fail("feeds", err)
	}
	return toPage(res.Page, res.Stats), nil
}

func (r *resolver) playbooks(p graphql.ResolveParams) (any, error) {
	res, err := r.svc.Playbooks(p.Context, criteria(p.Args))
	if err != nil {
		return nil, r.fail("playbooks", err)
	}
	return toPage(res.Page, res.Stats), nil
}

func (r *resolver) timeSeries(p graphql.ResolveParams) (any, error) {
	hours, _ := p.Args["hours"].(int)
	minV, _ := p.Args["min"].(int)
	maxV, _ := p.Args["max"].(int)

	points, err := r.svc.TimeSeries(hours, minV, maxV)
	if err != nil {
		return nil, r.fail("timeSeries", err)
	}
	return points, nil
}
