// Package brokertest runs an in-process fake Druid broker for tests.
package brokertest

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// QueryPath is the native query endpoint served by the fake broker
const QueryPath = "/druid/v2/"

// Request is a query received by the broker
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Broker is a fake Druid broker. It answers every native query with the
// configured status and body and records what it received.
type Broker struct {
	server *httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	delay    time.Duration
	requests []Request
}

// New starts a broker that is closed when t finishes
func New(t testing.TB) *Broker {
	t.Helper()

	b := &Broker{status: http.StatusOK, body: "[]"}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/status/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("true"))
	})
	r.Route("/druid/v2", func(r chi.Router) {
		r.Get("/", b.serveQuery)
		r.Post("/", b.serveQuery)
	})

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// Respond sets the status and body returned for subsequent queries
func (b *Broker) Respond(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.body = body
}

// Delay holds every subsequent response back for d, or until the client
// goes away
func (b *Broker) Delay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// Requests returns a copy of the queries received so far
func (b *Broker) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// URL returns the broker base URL
func (b *Broker) URL() string {
	return b.server.URL
}

// Host returns the broker host
func (b *Broker) Host() string {
	host, _, _ := net.SplitHostPort(b.server.Listener.Addr().String())
	return host
}

// Port returns the broker port
func (b *Broker) Port() int {
	_, port, _ := net.SplitHostPort(b.server.Listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// Close stops the broker; queries sent afterwards fail to connect
func (b *Broker) Close() {
	b.server.Close()
}

func (b *Broker) serveQuery(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	status, respBody, delay := b.status, b.body, b.delay
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(respBody))
}
