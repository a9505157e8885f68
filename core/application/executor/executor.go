package executor

import (
	"fmt"
	"maps"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/transport"
	"github.com/hyperterse/druidfamiliar/core/observability"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

const (
	// DefaultEndpoint is the Druid broker/router native query endpoint
	DefaultEndpoint = "/druid/v2/"
	// DefaultProtocol is used when no protocol is configured
	DefaultProtocol = "http"
	// DefaultHTTPMethod is used when no HTTP method is configured
	DefaultHTTPMethod = http.MethodPost
)

var (
	supportedProtocols = []string{"http", "https"}
	supportedMethods   = []string{http.MethodGet, http.MethodPost}
)

// DefaultHeaders returns the headers sent when none are configured
func DefaultHeaders() map[string]string {
	return map[string]string{"content-type": "application/json;charset=utf-8"}
}

// Executor sends queries to a single Druid node.
//
// An Executor is reusable across calls and holds no per-call state. Setters
// mutate it in place, so callers that reconfigure an Executor while other
// goroutines are executing queries through it must synchronize externally.
// Use Clone to give each goroutine its own copy instead.
type Executor struct {
	host     string
	port     int
	endpoint string
	protocol string
	method   string
	headers  map[string]string

	client  interfaces.Doer
	metrics *observability.Metrics
}

// Option configures an Executor at construction time
type Option func(*Executor) error

// WithEndpoint sets the endpoint path, e.g. "/druid/v2/sql/"
func WithEndpoint(endpoint string) Option {
	return func(e *Executor) error {
		e.SetEndpoint(endpoint)
		return nil
	}
}

// WithProtocol sets the protocol (http or https)
func WithProtocol(protocol string) Option {
	return func(e *Executor) error {
		return e.SetProtocol(protocol)
	}
}

// WithHTTPMethod sets the HTTP method (GET or POST)
func WithHTTPMethod(method string) Option {
	return func(e *Executor) error {
		return e.SetHTTPMethod(method)
	}
}

// WithHeaders replaces the default headers
func WithHeaders(headers map[string]string) Option {
	return func(e *Executor) error {
		e.SetHeaders(headers)
		return nil
	}
}

// WithClient sets the transport used to send requests
func WithClient(client interfaces.Doer) Option {
	return func(e *Executor) error {
		if client == nil {
			return errors.Validation("http client cannot be nil", nil)
		}
		e.client = client
		return nil
	}
}

// WithMetrics records every query in m
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) error {
		e.metrics = m
		return nil
	}
}

// New creates an executor for the Druid node at host:port
func New(host string, port int, opts ...Option) (*Executor, error) {
	e := &Executor{
		host:     host,
		port:     port,
		endpoint: DefaultEndpoint,
		protocol: DefaultProtocol,
		method:   DefaultHTTPMethod,
		headers:  DefaultHeaders(),
		client:   transport.NewClient(transport.DefaultTimeout),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Clone returns an independent copy of e sharing the same transport and metrics
func (e *Executor) Clone() *Executor {
	c := *e
	c.headers = maps.Clone(e.headers)
	return &c
}

// BaseURL returns protocol://host:port/endpoint. IPv6 hosts may be given
// with or without brackets.
func (e *Executor) BaseURL() string {
	port := strconv.Itoa(e.port)
	hostPort := e.host + ":" + port
	if !strings.HasPrefix(e.host, "[") {
		hostPort = net.JoinHostPort(e.host, port)
	}
	return e.protocol + "://" + hostPort + e.endpoint
}

// Host returns the configured host or IP
func (e *Executor) Host() string {
	return e.host
}

// SetHost sets the host or IP
func (e *Executor) SetHost(host string) {
	e.host = host
}

// Port returns the configured port
func (e *Executor) Port() int {
	return e.port
}

// SetPort sets the port
func (e *Executor) SetPort(port int) {
	e.port = port
}

// Endpoint returns the configured endpoint path
func (e *Executor) Endpoint() string {
	return e.endpoint
}

// SetEndpoint sets the endpoint path
func (e *Executor) SetEndpoint(endpoint string) {
	e.endpoint = endpoint
}

// Protocol returns the configured protocol
func (e *Executor) Protocol() string {
	return e.protocol
}

// SetProtocol sets the protocol. Supported protocols are http and https,
// matched case-insensitively. On error the previous protocol is kept.
func (e *Executor) SetProtocol(protocol string) error {
	normalized := strings.ToLower(protocol)
	if !slices.Contains(supportedProtocols, normalized) {
		return errors.NewAppError(
			errors.ErrCodeUnsupportedProtocol,
			fmt.Sprintf("unsupported protocol '%s', supported protocols are: %s", normalized, strings.Join(supportedProtocols, ", ")),
			nil,
		)
	}
	e.protocol = normalized
	return nil
}

// HTTPMethod returns the configured HTTP method
func (e *Executor) HTTPMethod() string {
	return e.method
}

// SetHTTPMethod sets the HTTP method. Supported methods are GET and POST,
// matched case-insensitively. On error the previous method is kept.
func (e *Executor) SetHTTPMethod(method string) error {
	normalized := strings.ToUpper(method)
	if !slices.Contains(supportedMethods, normalized) {
		return errors.NewAppError(
			errors.ErrCodeUnsupportedMethod,
			fmt.Sprintf("unsupported HTTP method '%s', supported methods are: %s", normalized, strings.Join(supportedMethods, ", ")),
			nil,
		)
	}
	e.method = normalized
	return nil
}

// Headers returns a copy of the headers sent with every request
func (e *Executor) Headers() map[string]string {
	return maps.Clone(e.headers)
}

// SetHeaders replaces all headers. Entries are not merged with the previous set.
func (e *Executor) SetHeaders(headers map[string]string) {
	e.headers = maps.Clone(headers)
	if e.headers == nil {
		e.headers = map[string]string{}
	}
}
