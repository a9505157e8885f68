package druid

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// String formats the interval the way Druid expects it, start/end in ISO-8601
func (i Interval) String() string {
	return i.Start.UTC().Format(time.RFC3339) + "/" + i.End.UTC().Format(time.RFC3339)
}

// Aggregation is a Druid aggregator spec
type Aggregation struct {
	Type      string `json:"type" validate:"required,oneof=count longSum doubleSum floatSum longMin longMax doubleMin doubleMax hyperUnique cardinality"`
	Name      string `json:"name" validate:"required"`
	FieldName string `json:"fieldName,omitempty"`
}

// Filter is a selector or in filter on a single dimension
type Filter struct {
	Type      string   `json:"type" validate:"required,oneof=selector in"`
	Dimension string   `json:"dimension" validate:"required"`
	Value     string   `json:"value,omitempty"`
	Values    []string `json:"values,omitempty"`
}

// SelectorFilter matches rows where dimension equals value
func SelectorFilter(dimension, value string) *Filter {
	return &Filter{Type: "selector", Dimension: dimension, Value: value}
}

// GroupByParams describes a native groupBy query
type GroupByParams struct {
	DataSource   string        `validate:"required"`
	Intervals    []Interval    `validate:"required,min=1"`
	Granularity  string        `validate:"required,oneof=all none second minute fifteen_minute thirty_minute hour day week month quarter year"`
	Dimensions   []string      `validate:"required,min=1,dive,required"`
	Aggregations []Aggregation `validate:"required,min=1,dive"`
	Filter       *Filter       `validate:"omitempty"`

	// QueryID and Timeout are sent in the query context when set
	QueryID string
	Timeout time.Duration `validate:"gte=0"`
}

var _ interfaces.QueryParameters = (*GroupByParams)(nil)

// Validate checks required fields, allowed values and interval ordering
func (p *GroupByParams) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	for i, interval := range p.Intervals {
		if interval.Start.IsZero() || interval.End.IsZero() {
			return errors.Validation(fmt.Sprintf("Intervals[%d] start and end are required", i), nil)
		}
		if !interval.Start.Before(interval.End) {
			return errors.Validation(fmt.Sprintf("Intervals[%d] start must be before end", i), nil)
		}
	}
	if p.Filter != nil {
		switch {
		case p.Filter.Type == "selector" && p.Filter.Value == "":
			return errors.Validation("Filter.Value is required for selector filters", nil)
		case p.Filter.Type == "in" && len(p.Filter.Values) == 0:
			return errors.Validation("Filter.Values is required for in filters", nil)
		}
	}
	return nil
}

type groupByQuery struct {
	QueryType    string         `json:"queryType"`
	DataSource   string         `json:"dataSource"`
	Intervals    []string       `json:"intervals"`
	Granularity  string         `json:"granularity"`
	Dimensions   []string       `json:"dimensions"`
	Aggregations []Aggregation  `json:"aggregations"`
	Filter       *Filter        `json:"filter,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// GroupByGenerator renders GroupByParams as a native groupBy query
type GroupByGenerator struct{}

var _ interfaces.QueryGenerator = GroupByGenerator{}

// GenerateQuery implements interfaces.QueryGenerator
func (GroupByGenerator) GenerateQuery(params interfaces.QueryParameters) ([]byte, error) {
	p, ok := params.(*GroupByParams)
	if !ok || p == nil {
		return nil, errors.NewAppError(errors.ErrCodeGenerationError, fmt.Sprintf("groupBy generator expects *druid.GroupByParams, got %T", params), nil)
	}

	intervals := make([]string, len(p.Intervals))
	for i, interval := range p.Intervals {
		intervals[i] = interval.String()
	}

	query := groupByQuery{
		QueryType:    "groupBy",
		DataSource:   p.DataSource,
		Intervals:    intervals,
		Granularity:  p.Granularity,
		Dimensions:   p.Dimensions,
		Aggregations: p.Aggregations,
		Filter:       p.Filter,
		Context:      queryContext(p.QueryID, p.Timeout),
	}

	out, err := json.Marshal(query)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeGenerationError, "failed to encode groupBy query", err)
	}
	return out, nil
}

func queryContext(queryID string, timeout time.Duration) map[string]any {
	ctx := map[string]any{}
	if queryID != "" {
		ctx["queryId"] = queryID
	}
	if timeout > 0 {
		ctx["timeout"] = timeout.Milliseconds()
	}
	if len(ctx) == 0 {
		return nil
	}
	return ctx
}
