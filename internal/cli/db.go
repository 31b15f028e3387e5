package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/internal/tui"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "EMIS database utilities",
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect to the EMIS database and list a few schools",
	Long: `Check connects with the configured dialect and auth method, retrying
transient failures, then reads the first schools by number. Use it to verify
configuration before 'cpd load' or 'population sql --apply'.`,
	Args: cobra.NoArgs,
	RunE: runDBCheck,
}

type dbCheckFlagValues struct {
	sample int
}

var dbCheckFlags dbCheckFlagValues

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbCheckCmd)

	dbCheckCmd.Flags().IntVarP(&dbCheckFlags.sample, "sample", "n", 5, "Number of schools to list")
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	if dbCheckFlags.sample < 1 {
		return fmt.Errorf("%w: --sample must be at least 1", emis.ErrUsage)
	}
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	store, conn, closeDB, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	schools, err := store.SampleSchools(ctx, dbCheckFlags.sample)
	if err != nil {
		return fmt.Errorf("%w: %w", emis.ErrExecutionFailed, err)
	}

	rows := make([][]string, 0, len(schools))
	for _, s := range schools {
		rows = append(rows, []string{s.SchNo, s.SchName})
	}
	fmt.Fprintf(env.out, "%s Connected to %s (%s, %s auth)\n", tui.SymbolCheck, conn.Database, conn.Dialect, conn.AuthMethod)
	fmt.Fprintln(env.out, tui.Table([]string{"schNo", "schName"}, rows))
	return nil
}
