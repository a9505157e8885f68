package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// Extractor builds one record from a response chunk
type Extractor[T any] func(chunk Chunk) (T, error)

// RecordHandler converts a Druid result array ([{timestamp, event}, ...]) into
// one typed record per chunk, in response order.
//
// A response with no chunks fails with a DATA_SOURCE_ERROR rather than
// returning an empty slice: Druid answers queries against an unknown data
// source with an empty array, so the two cases cannot be told apart here.
type RecordHandler[T any] struct {
	extract Extractor[T]
}

// NewRecordHandler creates a handler that calls extract for every chunk
func NewRecordHandler[T any](extract Extractor[T]) *RecordHandler[T] {
	return &RecordHandler[T]{extract: extract}
}

var _ interfaces.ResponseHandler[[]int] = (*RecordHandler[int])(nil)

// HandleResponse decodes resp and extracts the records
func (h *RecordHandler[T]) HandleResponse(resp *http.Response) ([]T, error) {
	log := logging.New("handler:records")

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, unknownDataSource()
	}

	decoded, err := decodeJSON(body)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeUnexpectedData, "response body is not valid JSON", err)
	}

	if isEmptyPayload(decoded) {
		return nil, unknownDataSource()
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		if msg, ok := v["error"]; ok {
			return nil, errors.NewAppError(errors.ErrCodeUnexpectedData, fmt.Sprintf("druid returned an error: %v", describeError(v, msg)), nil)
		}
		return nil, errors.NewAppError(errors.ErrCodeUnexpectedData, "expected an array of result chunks, got an object", nil)
	default:
		return nil, errors.NewAppError(errors.ErrCodeUnexpectedData, fmt.Sprintf("expected an array of result chunks, got %T", decoded), nil)
	}

	records := make([]T, 0, len(items))
	for i, item := range items {
		chunk, err := newChunk(i, item)
		if err != nil {
			return nil, err
		}
		record, err := h.extract(chunk)
		if err != nil {
			if !errors.IsFieldExtractionError(err) {
				err = errors.WrapError(errors.ErrCodeFieldExtraction, fmt.Sprintf("chunk %d could not be converted", i), err)
			}
			return nil, err
		}
		records = append(records, record)
	}

	log.Debugf("Extracted %d record(s)", len(records))
	return records, nil
}

// isEmptyPayload reports whether a decoded body carries no result at all:
// null, false, zero, "", "0", [] or {}.
func isEmptyPayload(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case string:
		return v == "" || v == "0"
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func unknownDataSource() error {
	return errors.NewAppError(errors.ErrCodeDataSource, "unknown data source", nil)
}

func describeError(payload map[string]any, msg any) string {
	if detail, ok := payload["errorMessage"]; ok && detail != nil {
		return fmt.Sprintf("%v: %v", msg, detail)
	}
	return fmt.Sprint(msg)
}
