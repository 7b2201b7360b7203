// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lead-gateway/internal/common/metrics"
)

const tracerName = "lead-gateway/http"

// Doer is the subset of *http.Client the upstream clients depend on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the shared outbound client. Every call is a single attempt.
type Client struct {
	httpClient Doer
	tracer     trace.Tracer
}

func NewClient(timeout time.Duration) *Client {
	return NewClientWithDoer(&http.Client{Timeout: timeout})
}

// NewClientWithDoer is used by tests to inject a transport.
func NewClientWithDoer(doer Doer) *Client {
	return &Client{
		httpClient: doer,
		tracer:     otel.Tracer(tracerName),
	}
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do sends req under a span named after target and reads the whole body.
// A non-2xx status is not an error; only transport and read failures are.
func (c *Client) Do(ctx context.Context, target string, req *http.Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream."+target, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.Redacted()),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	metrics.UpstreamRequestDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(target, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s request failed: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(target, "read_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read %s response body: %w", target, err)
	}

	metrics.UpstreamRequests.WithLabelValues(target, statusClass(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
