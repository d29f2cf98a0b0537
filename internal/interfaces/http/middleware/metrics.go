package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Receipt PDFs and portfolio workbooks push the upper size buckets.
var (
	requestSizeBuckets  = []float64{100, 500, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6}
	responseSizeBuckets = []float64{100, 500, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6, 5e6}
)

type httpInstruments struct {
	requests  *telemetry.Counter
	failures  *telemetry.Counter
	latency   *telemetry.Histogram
	reqBytes  *telemetry.Histogram
	respBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if in.failures, err = telemetry.NewCounter(meter, "http_server_errors_total", "HTTP requests answered with 4xx or 5xx", "{request}"); err != nil {
		return nil, err
	}
	if in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if in.reqBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size",
		Unit:        "By",
		Boundaries:  requestSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if in.respBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	}); err != nil {
		return nil, err
	}
	in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics records request metrics on mp. It does nothing when mp is nil
// or exports nowhere.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	h, err := RequestMetrics(mp.Meter("http.server"))
	if err != nil {
		return passThrough
	}
	return h
}

// RequestMetrics counts requests by method, route pattern, status and actor
// role. Histograms carry method and route only.
func RequestMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inFlight.Add(ctx, 1)
		defer in.inFlight.Add(ctx, -1)

		c.Next()

		status := c.Writer.Status()
		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		counted := append(base[:len(base):len(base)], telemetry.AttrHTTPStatusCode.Int(status))
		if role := GetActorRole(c); role != "" {
			counted = append(counted, telemetry.AttrActor.String(role))
		}
		in.requests.Inc(ctx, counted...)
		if class := statusClass(status); class == "4xx" || class == "5xx" {
			in.failures.Inc(ctx, append(base[:len(base):len(base)], attribute.String("http.status_class", class))...)
		}

		in.latency.RecordDuration(ctx, time.Since(start), base...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqBytes.Record(ctx, float64(n), base...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respBytes.Record(ctx, float64(n), base...)
		}
	}, nil
}

// routePattern is the matched route ("/api/v1/sales/:id"), never the raw
// path, so ids do not become series.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
