package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/internal/config"
	"github.com/pacific-emis/emisctl/internal/teachers"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

var teachersCmd = &cobra.Command{
	Use:   "teachers",
	Short: "EMIS teacher list",
}

var teachersFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download every teacher into the local cache",
	Long: `Fetch pages through /api/teachers and writes the records verbatim to
<cache_directory>/all_teachers.json. 'emisctl cpd generate' draws real
teachers from this cache.`,
	Args: cobra.NoArgs,
	RunE: runTeachersFetch,
}

type teachersFetchFlagValues struct {
	pageSize int
	output   string
}

var teachersFetchFlags teachersFetchFlagValues

func init() {
	rootCmd.AddCommand(teachersCmd)
	teachersCmd.AddCommand(teachersFetchCmd)

	teachersFetchCmd.Flags().IntVar(&teachersFetchFlags.pageSize, "page-size", emis.DefaultPageSize,
		"Records requested per page")
	teachersFetchCmd.Flags().StringVarP(&teachersFetchFlags.output, "output", "o", "",
		"Cache file (default: <cache_directory>/"+emis.TeacherCacheFile+")")
}

func runTeachersFetch(cmd *cobra.Command, args []string) error {
	if teachersFetchFlags.pageSize < 1 {
		return fmt.Errorf("%w: --page-size must be at least 1", emis.ErrUsage)
	}
	env, err := newEnvironment(cmd, config.APIKeys...)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	client, err := env.newAPIClient(ctx)
	if err != nil {
		return err
	}
	records, err := teachers.Fetch(ctx, client, teachersFetchFlags.pageSize)
	if err != nil {
		return err
	}

	path := teachersFetchFlags.output
	if path == "" {
		path = filepath.Join(env.cfg.CacheDir(), emis.TeacherCacheFile)
	}
	if err := teachers.Save(path, records); err != nil {
		return fmt.Errorf("write teacher cache: %w", err)
	}

	cached, err := teachers.Load(path)
	if err != nil {
		return err
	}
	env.logger.Info("Saved %d teachers (%d with payroll, sex and names) to %s",
		len(records), len(teachers.FilterValid(cached)), path)
	return nil
}
