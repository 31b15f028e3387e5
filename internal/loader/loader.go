// Package loader bulk-loads CPD workbooks into the EMIS database.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/internal/checksum"
	"github.com/pacific-emis/emisctl/internal/workbook"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Writer persists one CPD document. *db.Store satisfies it.
type Writer interface {
	LoadTeacherCPD(ctx context.Context, load emis.CPDLoad) error
}

// Discover lists the .xlsx files at the top level of fsys, skipping the
// source template, sorted by name.
func Discover(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".xlsx") || strings.HasPrefix(name, emis.CPDTemplatePrefix) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// Failure records one workbook that could not be loaded.
type Failure struct {
	File string
	Err  error
}

// Summary reports the outcome of LoadAll. Skipped counts workbooks whose
// content matched an earlier file in the run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Failures  []Failure
}

// Loader turns workbooks into CPDLoad requests and hands them to a Writer.
type Loader struct {
	fsys   fs.FS
	writer Writer
	logger emis.Logger
	user   string

	newReference func() string
	now          func() time.Time
}

// New creates a Loader reading workbooks from fsys. user is recorded against each upload.
func New(fsys fs.FS, writer Writer, logger emis.Logger, user string) *Loader {
	return &Loader{
		fsys:         fsys,
		writer:       writer,
		logger:       logger,
		user:         user,
		newReference: uuid.NewString,
		now:          time.Now,
	}
}

// LoadAll loads every file in order. A failing file is logged and skipped;
// only context cancellation stops the run early. A workbook with the same
// content as one already seen in this run is not loaded again.
func (l *Loader) LoadAll(ctx context.Context, files []string) (Summary, error) {
	start := l.now()
	summary := Summary{Total: len(files)}
	seen := checksum.NewSeen()

	for i, name := range files {
		if err := ctx.Err(); err != nil {
			summary.Duration = l.now().Sub(start)
			return summary, err
		}

		l.logger.Info("(%d/%d) Loading: %s", i+1, len(files), name)
		load, err := l.Prepare(name)
		if err == nil {
			if prev, dup := seen.Add(load.Checksum, name); dup {
				summary.Skipped++
				l.logger.Info("Skipping %s: same content as %s", name, prev)
				continue
			}
			err = l.write(ctx, load)
		}
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{File: name, Err: err})
			l.logger.Error("Failed %s: %v", name, err)
			continue
		}
		summary.Succeeded++
		l.logger.Verbose("Loaded %s (sha256 %s)", name, load.Checksum)
	}

	summary.Duration = l.now().Sub(start)
	return summary, nil
}

// LoadOne transforms a single workbook and passes it to the writer.
func (l *Loader) LoadOne(ctx context.Context, name string) error {
	load, err := l.Prepare(name)
	if err != nil {
		return err
	}
	return l.write(ctx, load)
}

func (l *Loader) write(ctx context.Context, load emis.CPDLoad) error {
	if err := l.writer.LoadTeacherCPD(ctx, load); err != nil {
		return fmt.Errorf("%w: %w", emis.ErrExecutionFailed, err)
	}
	return nil
}

// Prepare opens a workbook and builds its CPDLoad request.
func (l *Loader) Prepare(name string) (emis.CPDLoad, error) {
	content, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return emis.CPDLoad{}, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return emis.CPDLoad{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	doc, err := workbook.ToDocument(wb)
	if err != nil {
		return emis.CPDLoad{}, err
	}
	xml, err := doc.XML()
	if err != nil {
		return emis.CPDLoad{}, fmt.Errorf("serialize: %w", err)
	}

	return emis.CPDLoad{
		Source:        path.Base(name),
		XML:           xml,
		FileReference: l.newReference(),
		User:          l.user,
		CPDCode:       doc.CPDName,
		CPDYear:       doc.CPDYear,
		Checksum:      checksum.Sum(content),
	}, nil
}

// PrintWriter writes each document to W instead of the database (--dry-run).
type PrintWriter struct {
	W io.Writer
}

func (p PrintWriter) LoadTeacherCPD(_ context.Context, load emis.CPDLoad) error {
	_, err := fmt.Fprintf(p.W, "-- %s (cpdCode=%s, cpdYear=%d, fileReference=%s, user=%s)\n%s\n",
		load.Source, load.CPDCode, load.CPDYear, load.FileReference, load.User, load.XML)
	return err
}
