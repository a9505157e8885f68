// Package referrals queries referral counts per company and facility, and
// converts the groupBy result into Record values.
package referrals

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyperterse/druidfamiliar/core/application/handlers"
	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/druid"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

const (
	// DefaultDataSource is the data source queried when none is set
	DefaultDataSource = "referral-visit-old-format"
	// DefaultGranularity buckets the whole interval into one row per group
	DefaultGranularity = "all"

	DimensionCompanyID  = "company_id"
	DimensionFacilityID = "facility_id"
	MetricReferralCount = "referral_count"
)

// Params selects the referrals of one company over a time range
type Params struct {
	CompanyID   int64
	Start       time.Time
	End         time.Time
	DataSource  string
	Granularity string
	QueryID     string
}

var _ interfaces.QueryParameters = (*Params)(nil)

// Validate checks the company id and delegates the rest to the groupBy rules
func (p *Params) Validate() error {
	if p.CompanyID <= 0 {
		return errors.Validation(fmt.Sprintf("CompanyID must be greater than 0, got %d", p.CompanyID), nil)
	}
	return p.groupBy().Validate()
}

func (p *Params) groupBy() *druid.GroupByParams {
	dataSource := p.DataSource
	if dataSource == "" {
		dataSource = DefaultDataSource
	}
	granularity := p.Granularity
	if granularity == "" {
		granularity = DefaultGranularity
	}
	return &druid.GroupByParams{
		DataSource:  dataSource,
		Intervals:   []druid.Interval{{Start: p.Start, End: p.End}},
		Granularity: granularity,
		Dimensions:  []string{DimensionCompanyID, DimensionFacilityID},
		Aggregations: []druid.Aggregation{
			{Type: "longSum", Name: MetricReferralCount, FieldName: "count"},
		},
		Filter:  druid.SelectorFilter(DimensionCompanyID, strconv.FormatInt(p.CompanyID, 10)),
		QueryID: p.QueryID,
	}
}

// Generator renders Params as a groupBy query
type Generator struct{}

var _ interfaces.QueryGenerator = Generator{}

// GenerateQuery implements interfaces.QueryGenerator
func (Generator) GenerateQuery(params interfaces.QueryParameters) ([]byte, error) {
	p, ok := params.(*Params)
	if !ok || p == nil {
		return nil, errors.NewAppError(errors.ErrCodeGenerationError, fmt.Sprintf("referrals generator expects *referrals.Params, got %T", params), nil)
	}
	return druid.GroupByGenerator{}.GenerateQuery(p.groupBy())
}

// Record is the referral count of one facility
type Record struct {
	CompanyID  int64  `json:"companyId"`
	FacilityID int64  `json:"facilityId"`
	Referrals  int64  `json:"referrals"`
	Timestamp  string `json:"timestamp"`
}

// NewHandler returns a handler producing one Record per result chunk
func NewHandler() *handlers.RecordHandler[Record] {
	return handlers.NewRecordHandler(extractRecord)
}

func extractRecord(chunk handlers.Chunk) (Record, error) {
	companyID, err := chunk.Int(DimensionCompanyID)
	if err != nil {
		return Record{}, err
	}
	facilityID, err := chunk.Int(DimensionFacilityID)
	if err != nil {
		return Record{}, err
	}
	referrals, err := chunk.Int(MetricReferralCount)
	if err != nil {
		return Record{}, err
	}
	return Record{
		CompanyID:  companyID,
		FacilityID: facilityID,
		Referrals:  referrals,
		Timestamp:  chunk.Timestamp,
	}, nil
}
