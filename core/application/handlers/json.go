package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// JSONHandler decodes the response body and returns it unchanged.
// Objects decode to map[string]any, arrays to []any and numbers to
// json.Number so that no precision is lost.
type JSONHandler struct{}

var _ interfaces.ResponseHandler[any] = JSONHandler{}

// NewJSONHandler creates a passthrough handler
func NewJSONHandler() JSONHandler {
	return JSONHandler{}
}

// HandleResponse decodes the JSON body of resp
func (JSONHandler) HandleResponse(resp *http.Response) (any, error) {
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.NewAppError(errors.ErrCodeUnexpectedData, "response body is empty", nil)
	}

	decoded, err := decodeJSON(body)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeUnexpectedData, "response body is not valid JSON", err)
	}
	return decoded, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeUnexpectedData, "failed to read response body", err)
	}
	return body, nil
}

func decodeJSON(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after the JSON document")
	}
	return decoded, nil
}
