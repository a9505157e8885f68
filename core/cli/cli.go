package cli

import (
	"github.com/hyperterse/druidfamiliar/core/cli/cmd"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
)

// Execute runs the CLI and logs a failure once, under the tag of the
// component that produced it
func Execute() error {
	if err := cmd.Execute(); err != nil {
		logging.New(logging.ErrorTag(err, "cli")).Error(err.Error())
		return err
	}
	return nil
}
