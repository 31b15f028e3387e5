package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

var rootCmd = &cobra.Command{
	Use:   "emisctl",
	Short: "Data-migration toolkit for the Pacific EMIS",
	Long: `emisctl runs the data-migration chores of an EMIS deployment: loading
teacher CPD workbooks, generating sample workbooks, reloading survey PDFs,
caching the teacher list and turning UN population projections into
Population and PopulationModel rows.

Configuration is read from config.json (or YAML, see --config). Every key
can be overridden by an EMIS_<KEY> environment variable; a .env file in the
working directory is loaded first.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid or incomplete configuration
  11 - Database connection failed
  12 - User declined the database write
  13 - SQL execution failed
  14 - API authentication failed`,
	SilenceUsage: true,
}

type rootFlagValues struct {
	configPath string
	verbose    bool
	logFormat  string
	timeout    time.Duration
}

var rootFlags rootFlagValues

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", emis.DefaultConfigFile,
		"Configuration file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false,
		"Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logFormat, "log-format", logFormatText,
		"Log output format: text|json")
	rootCmd.PersistentFlags().DurationVar(&rootFlags.timeout, "timeout", emis.DefaultTimeout,
		"Upper bound for the whole command run, 0 for none\n"+
			"Examples: 90s, 10m, 1h")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", emis.ErrUsage, err)
	})
}
