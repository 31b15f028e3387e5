package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/internal/population"
	"github.com/pacific-emis/emisctl/internal/tui"
	"github.com/pacific-emis/emisctl/internal/unpop"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "UN population projections for the EMIS Population tables",
}

var populationFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download population by age and sex from the UN data portal",
	Long: `Fetch downloads every projection variant of the population indicator for
one location and caches the raw observations as population_data.json in
population_directory. Later 'population sql' and 'population summary' runs
work offline from this cache.

Examples:
  emisctl population fetch --location 584 --start 2011 --end 2030
  emisctl population fetch --refresh`,
	Args: cobra.NoArgs,
	RunE: runPopulationFetch,
}

var populationLocationsCmd = &cobra.Command{
	Use:   "locations [name]",
	Short: "List UN data portal locations, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPopulationLocations,
}

var populationSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Build Population and PopulationModel rows from the cached data",
	Long: `SQL numbers the projection variants (Median first), reshapes the cached
observations into one row per model, year and age, fills every model onto
the reference model's year and age grid, and writes:

  insert_population_models.sql  PopulationModel INSERT statements
  insert_population.sql         Population INSERT statements

With --xlsx the final table is also written to population_data_final.xlsx.
With --apply the rows are inserted into the configured database in one
transaction instead of only being written to files.`,
	Args: cobra.NoArgs,
	RunE: runPopulationSQL,
}

var populationSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print yearly totals and trends per model from the cached data",
	Args:  cobra.NoArgs,
	RunE:  runPopulationSummary,
}

type populationFlagValues struct {
	location  int
	indicator int
	start     int
	end       int
	refresh   bool

	reference string
	prefix    string
	xlsx      bool
	apply     bool
	yes       bool

	years bool
}

var populationFlags populationFlagValues

func init() {
	rootCmd.AddCommand(populationCmd)
	populationCmd.AddCommand(populationFetchCmd, populationLocationsCmd, populationSQLCmd, populationSummaryCmd)

	populationFetchCmd.Flags().IntVar(&populationFlags.location, "location", 584,
		"UN location id (see 'emisctl population locations')")
	populationFetchCmd.Flags().IntVar(&populationFlags.indicator, "indicator", emis.DefaultPopulationIndicator,
		"UN indicator id")
	populationFetchCmd.Flags().IntVar(&populationFlags.start, "start", 2011, "First year")
	populationFetchCmd.Flags().IntVar(&populationFlags.end, "end", 2030, "Last year")
	populationFetchCmd.Flags().BoolVar(&populationFlags.refresh, "refresh", false,
		"Download again even if the cache exists")

	for _, c := range []*cobra.Command{populationSQLCmd, populationSummaryCmd} {
		c.Flags().StringVar(&populationFlags.reference, "reference", "",
			"Complete model used to fill the others (default {prefix}1, "+emis.DefaultReferenceModel+")")
		c.Flags().StringVar(&populationFlags.prefix, "prefix", emis.DefaultModelPrefix,
			"Model code prefix")
	}
	populationSQLCmd.Flags().BoolVar(&populationFlags.xlsx, "xlsx", false,
		"Also write "+population.FinalXLSXFile)
	populationSQLCmd.Flags().BoolVar(&populationFlags.apply, "apply", false,
		"Insert the rows into the configured database")
	populationSQLCmd.Flags().BoolVarP(&populationFlags.yes, "yes", "y", false,
		"Skip the confirmation prompt for --apply")
	populationSummaryCmd.Flags().BoolVar(&populationFlags.years, "years", false,
		"Print the total of every year, not only the trend per model")
}

func newUNClient(env *environment) *unpop.Client {
	return unpop.New(env.cfg.UNPopDivisionAPIToken, unpop.WithLogger(env.logger))
}

func runPopulationFetch(cmd *cobra.Command, args []string) error {
	if populationFlags.start > populationFlags.end {
		return fmt.Errorf("%w: --start %d is after --end %d", emis.ErrUsage, populationFlags.start, populationFlags.end)
	}
	env, err := newEnvironment(cmd, "un_pop_division_api_token")
	if err != nil {
		return err
	}
	defer env.close()

	path := filepath.Join(env.cfg.PopulationDir(), population.RawDataFile)
	if !populationFlags.refresh {
		if _, err := os.Stat(path); err == nil {
			env.logger.Info("Cache %s exists; use --refresh to download again", path)
			return nil
		}
	}

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	points, err := newUNClient(env).Data(ctx, unpop.DataQuery{
		Indicator: populationFlags.indicator,
		Location:  populationFlags.location,
		StartYear: populationFlags.start,
		EndYear:   populationFlags.end,
	})
	if err != nil {
		return fmt.Errorf("fetch population data: %w", err)
	}
	if err := population.SaveRaw(path, points); err != nil {
		return fmt.Errorf("write population cache: %w", err)
	}
	env.logger.Info("Saved %d observations across %d variant(s) to %s",
		len(points), len(population.Variants(points)), path)
	return nil
}

func runPopulationLocations(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	locations, err := newUNClient(env).Locations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	var rows [][]string
	for _, l := range locations {
		if len(args) == 1 && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(args[0])) {
			continue
		}
		rows = append(rows, []string{strconv.Itoa(l.ID), l.ISO3, l.Name})
	}
	fmt.Fprintln(env.out, tui.Table([]string{"ID", "ISO3", "Name"}, rows))
	return nil
}

// buildPopulation runs the reshape and fill over the raw cache.
func buildPopulation(env *environment) (population.Result, error) {
	path := filepath.Join(env.cfg.PopulationDir(), population.RawDataFile)
	points, err := population.LoadRaw(path)
	if err != nil {
		return population.Result{}, err
	}
	result, err := population.Build(points, populationFlags.prefix, referenceModel(populationFlags.prefix, populationFlags.reference))
	if err != nil {
		return population.Result{}, err
	}
	env.logger.Verbose("%d observations -> %d models, %d rows", len(points), len(result.Models), len(result.Records))
	return result, nil
}

// referenceModel returns reference, or the Median code of prefix when unset.
func referenceModel(prefix, reference string) string {
	if reference != "" {
		return reference
	}
	return prefix + "1"
}

func runPopulationSQL(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	result, err := buildPopulation(env)
	if err != nil {
		return err
	}

	dir := env.cfg.PopulationDir()
	if err := writeSQLFile(filepath.Join(dir, population.ModelsSQLFile), func(b *bytes.Buffer) error {
		return population.WriteModelSQL(b, result.Models)
	}); err != nil {
		return err
	}
	if err := writeSQLFile(filepath.Join(dir, population.RowsSQLFile), func(b *bytes.Buffer) error {
		return population.WriteInsertSQL(b, result.Records)
	}); err != nil {
		return err
	}
	env.logger.Info("Wrote %d model and %d population statements to %s", len(result.Models), len(result.Records), dir)

	if populationFlags.xlsx {
		path := filepath.Join(dir, population.FinalXLSXFile)
		if err := population.ExportXLSX(path, result.Records); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		env.logger.Info("Wrote %s", path)
	}

	if !populationFlags.apply {
		return nil
	}

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	store, conn, closeDB, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	action := fmt.Sprintf("insert %d population models and %d population rows", len(result.Models), len(result.Records))
	if err := approve(ctx, populationFlags.yes, conn.Database, action); err != nil {
		return err
	}
	if err := store.InsertPopulation(ctx, population.ModelRecords(result.Models), result.Records); err != nil {
		return fmt.Errorf("%w: %w", emis.ErrExecutionFailed, err)
	}
	env.logger.Info("Inserted %d rows into %s", len(result.Records), conn.Database)
	return nil
}

func writeSQLFile(path string, write func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func runPopulationSummary(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	result, err := buildPopulation(env)
	if err != nil {
		return err
	}
	totals := population.Summarize(result.Records)

	if populationFlags.years {
		rows := make([][]string, 0, len(totals))
		for _, t := range totals {
			rows = append(rows, []string{t.Model, strconv.Itoa(t.Year), strconv.Itoa(t.Male), strconv.Itoa(t.Female), strconv.Itoa(t.Total)})
		}
		fmt.Fprintln(env.out, tui.Table([]string{"Model", "Year", "Male", "Female", "Total"}, rows))
	}

	trends := population.Trends(totals)
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		rows = append(rows, []string{
			t.Model,
			fmt.Sprintf("%d-%d", t.FirstYear, t.LastYear),
			strconv.FormatFloat(t.Min, 'f', 0, 64),
			strconv.FormatFloat(t.Max, 'f', 0, 64),
			strconv.FormatFloat(t.Mean, 'f', 0, 64),
			fmt.Sprintf("%+.1f%%", t.Growth*100),
		})
	}
	fmt.Fprintln(env.out, tui.Table([]string{"Model", "Years", "Min", "Max", "Mean", "Growth"}, rows))
	return nil
}
