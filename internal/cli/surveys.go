package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/internal/emisapi"
	"github.com/pacific-emis/emisctl/internal/survey"
	"github.com/pacific-emis/emisctl/internal/tui"
)

var surveysCmd = &cobra.Command{
	Use:   "surveys",
	Short: "School survey PDFs",
}

var surveysReloadCmd = &cobra.Command{
	Use:   "reload <year>",
	Short: "Regenerate and download the survey PDF of every school for a year",
	Long: `Reload asks the EMIS to regenerate the survey PDF of each school that has a
survey in <year> and saves it to output_directory as
{school name}-{schNo}-{year}.pdf. A school whose download fails is reported
and skipped.

Examples:
  emisctl surveys reload 2024
  emisctl surveys reload 2024 --school KSSS009`,
	Args: RequireYear,
	RunE: runSurveysReload,
}

type surveysReloadFlagValues struct {
	school string
}

var surveysReloadFlags surveysReloadFlagValues

func init() {
	rootCmd.AddCommand(surveysCmd)
	surveysCmd.AddCommand(surveysReloadCmd)

	surveysReloadCmd.Flags().StringVar(&surveysReloadFlags.school, "school", "",
		"Reload a single school by schNo")
}

func runSurveysReload(cmd *cobra.Command, args []string) error {
	year, err := parseYear(args[0])
	if err != nil {
		return err
	}
	env, err := newEnvironment(cmd, "base_url", "username", "password", "output_directory")
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

	schools, err := client.FilterSchools(emisapi.DefaultSchoolFilter()).Collect(ctx)
	if err != nil {
		return fmt.Errorf("list schools: %w", err)
	}
	targets := selectSchools(survey.SchoolsForYear(schools, year), surveysReloadFlags.school)
	env.logger.Info("Reloading %d survey PDF(s) for %d", len(targets), year)

	reloader := survey.NewReloader(client, env.cfg.OutputDirectory, env.logger)
	progress := tui.NewProgress(os.Stderr, "Downloading", tui.IsInteractive())
	reloader.OnProgress = func(done, total int) {
		progress.Step(done, total, targets[done-1].SchNo)
	}

	summary, err := reloader.Reload(ctx, targets, year)
	lines := make([]tui.SummaryLine, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		lines = append(lines, tui.SummaryLine{Item: f.SchNo, Reason: f.Err.Error()})
	}
	fmt.Fprintln(os.Stderr, tui.RenderSummary(fmt.Sprintf("Survey PDFs %d", year), summary.Downloaded, lines))
	if err != nil {
		return err
	}
	return bulkError(summary.Failed, summary.Attempted, "downloads", nil)
}

// selectSchools narrows schools to schNo when set. A school without a survey
// in the filter result is still attempted under its number.
func selectSchools(schools []emisapi.School, schNo string) []emisapi.School {
	if schNo == "" {
		return schools
	}
	for _, s := range schools {
		if s.SchNo == schNo {
			return []emisapi.School{s}
		}
	}
	return []emisapi.School{{SchNo: schNo, SchName: schNo}}
}
