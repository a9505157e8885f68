package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// urlCmd prints the URL queries are sent to
var urlCmd = &cobra.Command{
	Use:           "url",
	Short:         "Print the broker query URL for the current configuration",
	Args:          cobra.NoArgs,
	RunE:          printURL,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func printURL(cmd *cobra.Command, args []string) error {
	exec, err := newExecutor(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", exec.HTTPMethod(), exec.BaseURL())
	return nil
}
