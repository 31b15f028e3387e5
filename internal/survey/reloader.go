// Package survey regenerates school survey PDFs through the EMIS API and saves them locally.
package survey

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pacific-emis/emisctl/internal/emisapi"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Downloader fetches one survey PDF. *emisapi.Client satisfies it.
type Downloader interface {
	DownloadSurveyPDF(ctx context.Context, schNo string, year int, w io.Writer) (int64, error)
}

// SchoolsForYear keeps the schools whose survey year is year.
func SchoolsForYear(schools []emisapi.School, year int) []emisapi.School {
	var out []emisapi.School
	for _, s := range schools {
		if s.SvyYear == year {
			out = append(out, s)
		}
	}
	return out
}

// FileName returns "{name}-{schNo}-{year}.pdf" with spaces and slashes in the name replaced by dashes.
func FileName(schName, schNo string, year int) string {
	safe := strings.NewReplacer(" ", "-", "/", "-").Replace(schName)
	return fmt.Sprintf("%s-%s-%d.pdf", safe, schNo, year)
}

// Failure records a school whose PDF could not be saved.
type Failure struct {
	SchNo string
	Err   error
}

// Summary reports a reload run.
type Summary struct {
	Attempted  int
	Downloaded int
	Failed     int
	Failures   []Failure
}

// Reloader downloads survey PDFs into a directory.
type Reloader struct {
	client Downloader
	outDir string
	logger emis.Logger

	// OnProgress, if set, is called after each school with the number done so far.
	OnProgress func(done, total int)
}

func NewReloader(client Downloader, outDir string, logger emis.Logger) *Reloader {
	return &Reloader{client: client, outDir: outDir, logger: logger}
}

// Reload downloads the PDF of every school for year. A failed school is logged
// and skipped; only context cancellation aborts the run.
func (r *Reloader) Reload(ctx context.Context, schools []emisapi.School, year int) (Summary, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	var summary Summary
	for i, school := range schools {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Attempted++

		path, err := r.reloadOne(ctx, school, year)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{SchNo: school.SchNo, Err: err})
			r.logger.Error("Failed to download PDF for school %s: %v", school.SchNo, err)
		} else {
			summary.Downloaded++
			r.logger.Verbose("Saved %s", path)
		}
		if r.OnProgress != nil {
			r.OnProgress(i+1, len(schools))
		}
	}
	return summary, nil
}

// reloadOne streams into a temporary file and renames it once complete, so a
// failed download never leaves a partial PDF behind.
func (r *Reloader) reloadOne(ctx context.Context, school emisapi.School, year int) (string, error) {
	tmp, err := os.CreateTemp(r.outDir, ".download-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := r.client.DownloadSurveyPDF(ctx, school.SchNo, year, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(r.outDir, FileName(school.SchName, school.SchNo, year))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
