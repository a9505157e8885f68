package transport

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
)

// DefaultTimeout bounds a whole query round-trip when no timeout is configured
const DefaultTimeout = 60 * time.Second

// NewClient returns an HTTP client whose transport emits OpenTelemetry client
// spans and propagates trace context to the broker.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithPropagators(otel.GetTextMapPropagator()),
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		),
	}
}

// StatusError reports a non-2xx broker response seen by StrictStatus
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response is kept in StatusError
const maxErrorBody = 4 << 10

type strictDoer struct {
	next interfaces.Doer
}

// StrictStatus wraps next so that any non-2xx response is returned as a
// *StatusError. The failed response body is drained and closed.
func StrictStatus(next interfaces.Doer) interfaces.Doer {
	return &strictDoer{next: next}
}

func (d *strictDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
