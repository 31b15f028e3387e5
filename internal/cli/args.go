package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// RequireYear validates that exactly one <year> argument is provided and is a year.
func RequireYear(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <year>

Usage: %s

Example:
  %s 2024`, emis.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts 1 arg(s), received %d", emis.ErrUsage, len(args))
	}
	if _, err := parseYear(args[0]); err != nil {
		return err
	}
	return nil
}

// OptionalDirectory accepts zero or one directory argument.
func OptionalDirectory(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts at most 1 arg(s), received %d", emis.ErrUsage, len(args))
	}
	return nil
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 2200 {
		return 0, fmt.Errorf("%w: %q is not a year", emis.ErrUsage, s)
	}
	return year, nil
}
