package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// Chunk is one element of a Druid result array
type Chunk struct {
	// Index is the position of the chunk in the response
	Index int
	// Timestamp is the chunk timestamp, verbatim
	Timestamp string
	// Event holds the dimension and metric values
	Event map[string]any
}

func newChunk(index int, item any) (Chunk, error) {
	fields, ok := item.(map[string]any)
	if !ok {
		return Chunk{}, errors.NewAppError(errors.ErrCodeFieldExtraction, fmt.Sprintf("chunk %d is not an object", index), nil)
	}

	chunk := Chunk{Index: index}

	ts, ok := fields["timestamp"]
	if !ok {
		return Chunk{}, missingField(index, "timestamp")
	}
	if chunk.Timestamp, ok = ts.(string); !ok {
		return Chunk{}, wrongType(index, "timestamp", "a string", ts)
	}

	event, ok := fields["event"]
	if !ok {
		return Chunk{}, missingField(index, "event")
	}
	if chunk.Event, ok = event.(map[string]any); !ok {
		return Chunk{}, wrongType(index, "event", "an object", event)
	}

	return chunk, nil
}

// Field returns the raw event value for name
func (c Chunk) Field(name string) (any, error) {
	value, ok := c.Event[name]
	if !ok {
		return nil, missingField(c.Index, "event."+name)
	}
	return value, nil
}

// String returns an event field as a string
func (c Chunk) String(name string) (string, error) {
	value, err := c.Field(name)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", wrongType(c.Index, "event."+name, "a string", value)
	}
}

// Int returns an event field as an integer. Numeric strings are accepted
// because Druid returns string dimensions for ids.
func (c Chunk) Int(name string) (int64, error) {
	value, err := c.Field(name)
	if err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f), nil
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, wrongType(c.Index, "event."+name, "an integer", value)
}

// Float returns an event field as a float
func (c Chunk) Float(name string) (float64, error) {
	value, err := c.Field(name)
	if err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
	}
	return 0, wrongType(c.Index, "event."+name, "a number", value)
}

func missingField(index int, field string) error {
	return errors.NewAppError(errors.ErrCodeFieldExtraction, fmt.Sprintf("chunk %d is missing field '%s'", index, field), nil)
}

func wrongType(index int, field, want string, got any) error {
	return errors.NewAppError(errors.ErrCodeFieldExtraction, fmt.Sprintf("chunk %d field '%s' must be %s, got %T", index, field, want, got), nil)
}
