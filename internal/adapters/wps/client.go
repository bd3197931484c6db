package wps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
	"github.com/samirrijal/tempusgw/internal/pkg/telemetry"
)

// Client executes WPS processes on the routing backend. Every call is a single
// POST with no retry.
type Client struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a client for the WPS endpoint at url.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "tempusgw",
			MaxConnsPerHost:     16,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
	}
}

// Execute runs one process and returns its outputs.
func (c *Client) Execute(ctx context.Context, process string, inputs ...Input) (Outputs, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWPSExecute,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(telemetry.AttrWPSService, process)),
	)
	defer span.End()

	start := time.Now()
	out, err := c.execute(ctx, process, inputs)
	metrics.WPSRequestDuration.WithLabelValues(process).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WPSRequests.WithLabelValues(process, metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.DebugContext(ctx, "wps execute failed", "service", process, "error", err)
		return nil, err
	}
	metrics.WPSRequests.WithLabelValues(process, metrics.OutcomeOK).Inc()
	return out, nil
}

func (c *Client) execute(ctx context.Context, process string, inputs []Input) (Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := encodeExecute(&body, process, inputs); err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", process, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("text/xml; charset=utf-8")
	req.SetBody(body.Bytes())

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("wps %s: %w", process, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("executing %s request: %w", process, err)
	}

	payload := resp.Body()
	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		// the backend may still describe the failure as an exception report
		var exc *ExceptionError
		if _, err := decodeExecuteResponse(process, payload); errors.As(err, &exc) {
			return nil, exc
		}
		return nil, &StatusError{Service: process, StatusCode: status}
	}

	return decodeExecuteResponse(process, payload)
}
