package druid

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// RawQueryParams carries a complete, caller-written query document
type RawQueryParams struct {
	Query json.RawMessage
}

var _ interfaces.QueryParameters = (*RawQueryParams)(nil)

// Validate checks that the query is a single JSON object
func (p *RawQueryParams) Validate() error {
	trimmed := bytes.TrimSpace(p.Query)
	if len(trimmed) == 0 {
		return errors.Validation("Query is required", nil)
	}
	if !json.Valid(trimmed) {
		return errors.Validation("Query must be valid JSON", nil)
	}
	if trimmed[0] != '{' {
		return errors.Validation("Query must be a JSON object", nil)
	}
	return nil
}

// RawQueryGenerator sends a RawQueryParams document as-is, compacted
type RawQueryGenerator struct{}

var _ interfaces.QueryGenerator = RawQueryGenerator{}

// GenerateQuery implements interfaces.QueryGenerator
func (RawQueryGenerator) GenerateQuery(params interfaces.QueryParameters) ([]byte, error) {
	p, ok := params.(*RawQueryParams)
	if !ok || p == nil {
		return nil, errors.NewAppError(errors.ErrCodeGenerationError, fmt.Sprintf("raw generator expects *druid.RawQueryParams, got %T", params), nil)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, p.Query); err != nil {
		return nil, errors.WrapError(errors.ErrCodeGenerationError, "failed to compact query", err)
	}
	return buf.Bytes(), nil
}
