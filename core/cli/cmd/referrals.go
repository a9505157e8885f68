package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperterse/druidfamiliar/core/application/executor"
	"github.com/hyperterse/druidfamiliar/core/druid/referrals"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
	ctxutil "github.com/hyperterse/druidfamiliar/core/shared/context"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

var (
	referralsStart       string
	referralsEnd         string
	referralsDataSource  string
	referralsGranularity string
	referralsConcurrency int
)

// timeLayouts are accepted by --start and --end
var timeLayouts = []string{time.RFC3339, time.DateOnly}

// referralsCmd fetches referral counts for one or more companies
var referralsCmd = &cobra.Command{
	Use:           "referrals COMPANY_ID [COMPANY_ID...]",
	Short:         "Print referral counts per facility for the given companies",
	Args:          cobra.MinimumNArgs(1),
	RunE:          runReferrals,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(referralsCmd)

	referralsCmd.Flags().StringVar(&referralsStart, "start", "", "Interval start (RFC3339 or YYYY-MM-DD)")
	referralsCmd.Flags().StringVar(&referralsEnd, "end", "", "Interval end, exclusive (RFC3339 or YYYY-MM-DD)")
	referralsCmd.Flags().StringVar(&referralsDataSource, "data-source", referrals.DefaultDataSource, "Data source to query")
	referralsCmd.Flags().StringVar(&referralsGranularity, "granularity", referrals.DefaultGranularity, "Query granularity")
	referralsCmd.Flags().IntVar(&referralsConcurrency, "concurrency", 4, "Maximum number of queries in flight")
	_ = referralsCmd.MarkFlagRequired("start")
	_ = referralsCmd.MarkFlagRequired("end")
}

func runReferrals(cmd *cobra.Command, args []string) error {
	log := logging.New("referrals")

	companyIDs, err := parseCompanyIDs(args)
	if err != nil {
		return logging.WithTag("referrals", err)
	}
	start, err := parseTime("start", referralsStart)
	if err != nil {
		return logging.WithTag("referrals", err)
	}
	end, err := parseTime("end", referralsEnd)
	if err != nil {
		return logging.WithTag("referrals", err)
	}

	exec, err := newExecutor(cmd.Context())
	if err != nil {
		return err
	}

	results := make([][]referrals.Record, len(companyIDs))
	g, ctx := errgroup.WithContext(cmd.Context())
	if referralsConcurrency > 0 {
		g.SetLimit(referralsConcurrency)
	}
	for i, companyID := range companyIDs {
		g.Go(func() error {
			params := &referrals.Params{
				CompanyID:   companyID,
				Start:       start,
				End:         end,
				DataSource:  referralsDataSource,
				Granularity: referralsGranularity,
				QueryID:     ctxutil.GenerateQueryID(),
			}
			queryCtx := ctxutil.WithQueryID(ctx, params.QueryID)

			records, err := executor.ExecuteQuery(queryCtx, exec, referrals.Generator{}, params, referrals.NewHandler())
			if err != nil {
				return fmt.Errorf("company %d: %w", companyID, err)
			}
			log.Infof("Company %d: %d record(s)", companyID, len(records))
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return logging.WithTag("referrals", err)
	}

	all := make([]referrals.Record, 0)
	for _, records := range results {
		all = append(all, records...)
	}
	return writeJSON(cmd.OutOrStdout(), all)
}

func parseCompanyIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.Validation(fmt.Sprintf("invalid company id %q", arg), nil)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTime(flag, value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Validation(fmt.Sprintf("invalid --%s %q, expected RFC3339 or YYYY-MM-DD", flag, value), nil)
}
