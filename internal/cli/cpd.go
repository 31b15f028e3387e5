package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/internal/generator"
	"github.com/pacific-emis/emisctl/internal/loader"
	"github.com/pacific-emis/emisctl/internal/teachers"
	"github.com/pacific-emis/emisctl/internal/tui"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

var cpdCmd = &cobra.Command{
	Use:   "cpd",
	Short: "Teacher CPD attendance workbooks",
}

var cpdLoadCmd = &cobra.Command{
	Use:   "load [directory]",
	Short: "Load every CPD workbook of a directory into the database",
	Long: `Load transforms each CPD workbook into the ListObject document and passes it
to the pTeacherWrite.LoadTeacherCpd procedure, one transaction per workbook.

The directory defaults to cpd_directory. The template workbook
(CPD-source-data-workbook*.xlsx) is never loaded. A workbook that fails is
reported and skipped; the exit code is 13 when any workbook failed.

Examples:
  # Preview the documents without touching the database
  emisctl cpd load --dry-run

  # Load from another directory without the confirmation prompt
  emisctl cpd load ./incoming --yes`,
	Args: OptionalDirectory,
	RunE: runCPDLoad,
}

var cpdGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate sample CPD workbooks from the template",
	Long: `Generate fills copies of CPD-source-data-workbook.xlsx with synthetic
attendance rows, one workbook per year and CPD type listed on the template's
Lists sheet. About half of the rows use real teachers from the cache written
by 'emisctl teachers fetch'.

Examples:
  emisctl cpd generate --from 2020 --to 2025
  emisctl cpd generate --seed 42 --rows 10`,
	Args: cobra.NoArgs,
	RunE: runCPDGenerate,
}

type cpdLoadFlagValues struct {
	dryRun bool
	yes    bool
}

type cpdGenerateFlagValues struct {
	from, to     int
	rows         int
	seed         uint64
	template     string
	teacherCache string
}

var (
	cpdLoadFlags     cpdLoadFlagValues
	cpdGenerateFlags cpdGenerateFlagValues
)

func init() {
	rootCmd.AddCommand(cpdCmd)
	cpdCmd.AddCommand(cpdLoadCmd, cpdGenerateCmd)

	cpdLoadCmd.Flags().BoolVar(&cpdLoadFlags.dryRun, "dry-run", false,
		"Print each document instead of calling the database")
	cpdLoadCmd.Flags().BoolVarP(&cpdLoadFlags.yes, "yes", "y", false,
		"Skip the confirmation prompt")

	thisYear := time.Now().Year()
	cpdGenerateCmd.Flags().IntVar(&cpdGenerateFlags.from, "from", 2020, "First year to generate")
	cpdGenerateCmd.Flags().IntVar(&cpdGenerateFlags.to, "to", thisYear, "Last year to generate")
	cpdGenerateCmd.Flags().IntVar(&cpdGenerateFlags.rows, "rows", generator.DefaultRowsPerFile, "Rows per workbook")
	cpdGenerateCmd.Flags().Uint64Var(&cpdGenerateFlags.seed, "seed", 0,
		"Random seed for reproducible output (default: time based)")
	cpdGenerateCmd.Flags().StringVar(&cpdGenerateFlags.template, "template", "",
		"Template workbook (default: <cpd_directory>/"+emis.CPDTemplateFile+")")
	cpdGenerateCmd.Flags().StringVar(&cpdGenerateFlags.teacherCache, "teachers", "",
		"Teacher cache (default: <cache_directory>/"+emis.TeacherCacheFile+")")
	_ = cpdGenerateCmd.RegisterFlagCompletionFunc("template", completeXLSX)
}

func runCPDLoad(cmd *cobra.Command, args []string) error {
	required := []string{"cpd_directory"}
	if len(args) == 1 {
		required = nil
	}
	env, err := newEnvironment(cmd, required...)
	if err != nil {
		return err
	}
	defer env.close()

	dir := env.cfg.CPDDirectory
	if len(args) == 1 {
		dir = args[0]
	}

	fsys := os.DirFS(dir)
	files, err := loader.Discover(fsys)
	if err != nil {
		return fmt.Errorf("%w: cpd directory %s: %w", emis.ErrInvalidConfig, dir, err)
	}
	if len(files) == 0 {
		env.logger.Info("No CPD workbooks found in %s", dir)
		return nil
	}
	env.logger.Info("Found %d CPD workbook(s) in %s", len(files), dir)

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	var writer loader.Writer = loader.PrintWriter{W: env.out}
	if !cpdLoadFlags.dryRun {
		if err := env.cfg.RequireUploadUser(); err != nil {
			return err
		}
		store, conn, closeDB, err := env.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := approve(ctx, cpdLoadFlags.yes, conn.Database, fmt.Sprintf("load %d CPD workbook(s)", len(files))); err != nil {
			return err
		}
		writer = store
	}

	summary, err := loader.New(fsys, writer, env.logger, env.cfg.UploadUser()).LoadAll(ctx, files)
	printLoadSummary(env, summary)
	if err != nil {
		return err
	}
	return bulkError(summary.Failed, summary.Total, "workbooks", emis.ErrExecutionFailed)
}

func printLoadSummary(env *environment, s loader.Summary) {
	lines := make([]tui.SummaryLine, 0, len(s.Failures))
	for _, f := range s.Failures {
		lines = append(lines, tui.SummaryLine{Item: f.File, Reason: f.Err.Error()})
	}
	title := fmt.Sprintf("CPD load: %d workbook(s) in %s", s.Total, s.Duration.Round(time.Millisecond))
	if s.Skipped > 0 {
		title += fmt.Sprintf(", %d duplicate(s) skipped", s.Skipped)
	}
	fmt.Fprintln(os.Stderr, tui.RenderSummary(title, s.Succeeded, lines))
}

func runCPDGenerate(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd, "cpd_directory")
	if err != nil {
		return err
	}
	defer env.close()

	if cpdGenerateFlags.rows < 1 {
		return fmt.Errorf("%w: --rows must be at least 1", emis.ErrUsage)
	}
	templatePath := cpdGenerateFlags.template
	if templatePath == "" {
		templatePath = filepath.Join(env.cfg.CPDDirectory, emis.CPDTemplateFile)
	}

	lists, err := readTemplateLists(templatePath)
	if err != nil {
		return err
	}

	cachePath := cpdGenerateFlags.teacherCache
	if cachePath == "" {
		cachePath = filepath.Join(env.cfg.CacheDir(), emis.TeacherCacheFile)
	}
	cached, err := teachers.Load(cachePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		env.logger.Info("No teacher cache at %s; all rows use synthetic teachers (run 'emisctl teachers fetch')", cachePath)
	}
	valid := teachers.FilterValid(cached)
	env.logger.Verbose("Loaded %d valid teachers from %s", len(valid), cachePath)

	seed := cpdGenerateFlags.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	env.logger.Verbose("Random seed: %d", seed)

	g := generator.NewSeeded(lists, valid, seed)
	g.RowsPerFile = cpdGenerateFlags.rows

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	progress := tui.NewProgress(os.Stderr, "Generating", tui.IsInteractive())
	written, err := generator.Run(ctx, g, generator.Options{
		TemplatePath: templatePath,
		OutDir:       env.cfg.CPDDirectory,
		FromYear:     cpdGenerateFlags.from,
		ToYear:       cpdGenerateFlags.to,
		OnFile: func(done, total int, path string) {
			progress.Step(done, total, filepath.Base(path))
		},
	})
	env.logger.Info("Wrote %d workbook(s) to %s", len(written), env.cfg.CPDDirectory)
	return err
}

func readTemplateLists(path string) (generator.Lists, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return generator.Lists{}, fmt.Errorf("%w: template %s: %w", emis.ErrInvalidConfig, path, err)
	}
	defer f.Close()
	return generator.ReadLists(f)
}
