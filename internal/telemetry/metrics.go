package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
// Initialize once at server startup and reuse.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter     // Total HTTP requests
	RequestDuration metric.Float64Histogram // HTTP request latency
	ActiveRequests  metric.Int64UpDownCounter
	ErrorCounter    metric.Int64Counter // Total HTTP errors (5xx)
}

// NewServerMetrics creates the HTTP instruments on the global meter provider.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("skillapi/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 5ms .. 5s
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// RequestStarted increments the in-flight gauge.
func (m *ServerMetrics) RequestStarted(ctx context.Context) {
	m.ActiveRequests.Add(ctx, 1)
}

// RequestFinished decrements the in-flight gauge.
func (m *ServerMetrics) RequestFinished(ctx context.Context) {
	m.ActiveRequests.Add(ctx, -1)
}

// DatabaseMetrics holds metric instruments for database operations.
// It implements bun.QueryHook; register it with db.AddQueryHook.
type DatabaseMetrics struct {
	QueryCounter  metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
}

var _ bun.QueryHook = (*DatabaseMetrics)(nil)

// NewDatabaseMetrics creates metric instruments for database telemetry.
func NewDatabaseMetrics() (*DatabaseMetrics, error) {
	meter := otel.Meter("skillapi/database")

	queryCounter, err := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000),
	)
	if err != nil {
		return nil, err
	}

	queryErrors, err := meter.Int64Counter(
		"db.query.error.count",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		QueryCounter:  queryCounter,
		QueryDuration: queryDuration,
		QueryErrors:   queryErrors,
	}, nil
}

// BeforeQuery implements bun.QueryHook.
func (d *DatabaseMetrics) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook.
func (d *DatabaseMetrics) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	d.RecordQuery(ctx, event.Operation(), float64(time.Since(event.StartTime).Microseconds())/1000, event.Err)
}

// RecordQuery records a database query with operation type and duration.
// sql.ErrNoRows is a lookup miss, not a failure, and is not counted as an error.
func (d *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, durationMs float64, err error) {
	attrs := metric.WithAttributes(
		attribute.String(AttrDBOperation, operation), // SELECT, INSERT, UPDATE, DELETE
	)

	d.QueryCounter.Add(ctx, 1, attrs)
	d.QueryDuration.Record(ctx, durationMs, attrs)

	if err != nil && !isNoRows(err) {
		d.QueryErrors.Add(ctx, 1, attrs)
	}
}

// AuthMetrics holds metric instruments for request authentication.
type AuthMetrics struct {
	AuthAttempts metric.Int64Counter
	AuthFailures metric.Int64Counter
}

// NewAuthMetrics creates metric instruments for authentication telemetry.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("skillapi/auth")

	authAttempts, err := meter.Int64Counter(
		"auth.attempt.count",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"auth.failure.count",
		metric.WithDescription("Total number of failed authentication attempts"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		AuthAttempts: authAttempts,
		AuthFailures: authFailures,
	}, nil
}

// RecordAuth records one authentication decision. reason is empty on success.
// A nil receiver records nothing.
func (a *AuthMetrics) RecordAuth(ctx context.Context, success bool, reason string) {
	if a == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Bool(AttrAuthSuccess, success),
		attribute.String(AttrAuthReason, reason),
	)

	a.AuthAttempts.Add(ctx, 1, attrs)
	if !success {
		a.AuthFailures.Add(ctx, 1, attrs)
	}
}

// Metric attribute keys
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrDBOperation = "db.operation"

	AttrAuthSuccess = "auth.success"
	AttrAuthReason  = "auth.reason" // malformed, invalid_signature, expired, unknown_identity, disabled, missing
)
