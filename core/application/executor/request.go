package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// CreateRequest builds the HTTP request for a generated query.
//
// For POST the query is sent verbatim as the body. For GET the query is
// decoded and flattened into URL parameters appended to the endpoint, and the
// body is empty.
func (e *Executor) CreateRequest(ctx context.Context, query []byte) (*http.Request, error) {
	uri := e.BaseURL()

	var req *http.Request
	var err error
	switch e.method {
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(query))
	case http.MethodGet:
		if len(bytes.TrimSpace(query)) > 0 {
			values, flattenErr := FlattenQuery(query)
			if flattenErr != nil {
				return nil, errors.WrapError(errors.ErrCodeGenerationError, "generated query cannot be sent as URL parameters", flattenErr)
			}
			uri = appendQueryString(uri, values.Encode())
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	default:
		// SetHTTPMethod rejects anything else, so this is only reachable
		// through a zero Executor.
		return nil, errors.NewAppError(errors.ErrCodeUnsupportedMethod, fmt.Sprintf("unexpected HTTP method '%s'", e.method), nil)
	}
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeExecutionFailed, fmt.Sprintf("failed to build request for '%s'", uri), err)
	}

	for key, value := range e.headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// appendQueryString joins encoded onto uri with '&' when uri already carries a
// query string and '?' otherwise.
func appendQueryString(uri, encoded string) string {
	if encoded == "" {
		return uri
	}
	if u, err := url.Parse(uri); err == nil && u.RawQuery != "" {
		return uri + "&" + encoded
	}
	if strings.HasSuffix(uri, "?") {
		return uri + encoded
	}
	return uri + "?" + encoded
}

// FlattenQuery decodes a JSON query and flattens it into URL parameters.
// Nested objects and arrays use bracket keys (a[b]=1, a[0]=x), booleans
// become 1 or 0, and null values are omitted.
func FlattenQuery(query []byte) (url.Values, error) {
	decoder := json.NewDecoder(bytes.NewReader(query))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("query is not valid JSON: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("query contains trailing data after the JSON document")
	}

	values := url.Values{}
	switch v := decoded.(type) {
	case map[string]any:
		for key, value := range v {
			flattenValue(values, key, value)
		}
	case []any:
		for i, value := range v {
			flattenValue(values, strconv.Itoa(i), value)
		}
	default:
		return nil, fmt.Errorf("query must be a JSON object or array, got %T", decoded)
	}
	return values, nil
}

func flattenValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
	case map[string]any:
		for child, childValue := range v {
			flattenValue(values, key+"["+child+"]", childValue)
		}
	case []any:
		for i, childValue := range v {
			flattenValue(values, key+"["+strconv.Itoa(i)+"]", childValue)
		}
	case bool:
		if v {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case json.Number:
		values.Add(key, v.String())
	case string:
		values.Add(key, v)
	default:
		values.Add(key, fmt.Sprint(v))
	}
}
