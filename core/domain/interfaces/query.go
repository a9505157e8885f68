package interfaces

import (
	"net/http"
)

// QueryParameters defines the caller-supplied inputs of a query
type QueryParameters interface {
	// Validate reports malformed or out-of-range fields.
	// It must not mutate anything outside the receiver.
	Validate() error
}

// QueryGenerator converts validated parameters into a serialized query body
type QueryGenerator interface {
	// GenerateQuery returns the engine-specific query, usually a JSON document.
	// The result must be usable as a POST body, or decodable into key/value
	// pairs when the executor is configured for GET.
	GenerateQuery(params QueryParameters) ([]byte, error)
}

// ResponseHandler converts a raw HTTP response into an application result
type ResponseHandler[T any] interface {
	// HandleResponse reads resp and returns the formatted result.
	// The executor closes the body after HandleResponse returns.
	HandleResponse(resp *http.Response) (T, error)
}

// ResponseHandlerFunc adapts a function to the ResponseHandler interface
type ResponseHandlerFunc[T any] func(resp *http.Response) (T, error)

// HandleResponse calls f(resp)
func (f ResponseHandlerFunc[T]) HandleResponse(resp *http.Response) (T, error) {
	return f(resp)
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}
