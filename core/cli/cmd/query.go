package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperterse/druidfamiliar/core/application/executor"
	"github.com/hyperterse/druidfamiliar/core/application/handlers"
	"github.com/hyperterse/druidfamiliar/core/druid"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
	ctxutil "github.com/hyperterse/druidfamiliar/core/shared/context"
)

var (
	queryFile   string
	querySource string
	queryID     string
)

// queryCmd sends a native query document and prints the response
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Send a native JSON query and print the broker response",
	Long: `Send a native JSON query and print the broker response.

The query is read from --query, --source or standard input, in that order.`,
	Args:          cobra.NoArgs,
	RunE:          runQuery,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryFile, "query", "q", "", "Path to a JSON query document")
	queryCmd.Flags().StringVarP(&querySource, "source", "s", "", "JSON query document as a string (alternative to --query)")
	queryCmd.Flags().StringVar(&queryID, "query-id", "", "Query ID used in logs and traces (generated when empty)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	log := logging.New("query")

	if queryFile != "" && querySource != "" {
		return logging.WithTag("query", fmt.Errorf("cannot specify both --query and --source flags"))
	}
	document, err := readQueryDocument(cmd.InOrStdin())
	if err != nil {
		return logging.WithTag("query", err)
	}

	exec, err := newExecutor(cmd.Context())
	if err != nil {
		return err
	}

	id := queryID
	if id == "" {
		id = ctxutil.GenerateQueryID()
	}
	ctx := ctxutil.WithQueryID(cmd.Context(), id)
	log.Debugf("Sending query %s to %s", id, exec.BaseURL())

	result, err := executor.ExecuteQuery(ctx, exec, druid.RawQueryGenerator{}, &druid.RawQueryParams{Query: document}, handlers.NewJSONHandler())
	if err != nil {
		return logging.WithTag("query", err)
	}
	log.Infof("Query %s completed", id)
	return writeJSON(cmd.OutOrStdout(), result)
}

func readQueryDocument(stdin io.Reader) ([]byte, error) {
	switch {
	case querySource != "":
		return []byte(querySource), nil
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return data, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
