package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/internal/teachers"
	"github.com/pacific-emis/emisctl/internal/workbook"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Defaults for generated files.
const (
	DefaultRowsPerFile = 30
	Location           = "South Tarawa"
	hoursPerDay        = 8
	realTeacherChance  = 0.5
	disabilityChance   = 0.1
	absenceChance      = 0.1
	completionRate     = 0.8
)

var durations = []int{5, 10, 15}

// Row is one generated attendance row keyed by CPD data header.
type Row map[string]any

// Batch is the content of one generated workbook.
type Batch struct {
	CPDType string
	Year    int
	Format  string
	Focus   string
	Start   time.Time
	Days    int
	Rows    []Row
}

// End is the last day of the course.
func (b Batch) End() time.Time {
	return b.Start.AddDate(0, 0, b.Days-1)
}

// Generator synthesizes CPD batches from template lists and cached teachers.
type Generator struct {
	lists       Lists
	teachers    []teachers.Teacher
	rng         *rand.Rand
	RowsPerFile int
}

// New returns a Generator drawing from rng. Only valid teachers are used.
func New(lists Lists, cached []teachers.Teacher, rng *rand.Rand) *Generator {
	return &Generator{
		lists:       lists,
		teachers:    teachers.FilterValid(cached),
		rng:         rng,
		RowsPerFile: DefaultRowsPerFile,
	}
}

// NewSeeded returns a Generator whose output depends only on seed.
func NewSeeded(lists Lists, cached []teachers.Teacher, seed uint64) *Generator {
	return New(lists, cached, rand.New(rand.NewPCG(seed, seed)))
}

// Batch generates the rows of one file. Format, focus and duration are fixed per file.
func (g *Generator) Batch(cpdType string, year int) Batch {
	b := Batch{
		CPDType: cpdType,
		Year:    year,
		Format:  pick(g.rng, g.lists.Formats),
		Focus:   pick(g.rng, g.lists.Focuses),
		Start:   time.Date(year, time.May, 5, 0, 0, 0, 0, time.UTC),
		Days:    pick(g.rng, durations),
	}
	for i := 1; i <= g.RowsPerFile; i++ {
		b.Rows = append(b.Rows, g.row(b, i))
	}
	return b
}

func (g *Generator) row(b Batch, i int) Row {
	r := Row{
		workbook.HeaderCPDName:       b.CPDType,
		workbook.HeaderCPDFormat:     b.Format,
		workbook.HeaderCPDFocus:      b.Focus,
		workbook.HeaderLocation:      Location,
		workbook.HeaderYear:          b.Year,
		workbook.HeaderStartDate:     b.Start,
		workbook.HeaderEndDate:       b.End(),
		workbook.HeaderDurationDays:  b.Days,
		workbook.HeaderDurationHours: b.Days * hoursPerDay,
	}

	if g.rng.Float64() < realTeacherChance && len(g.teachers) > 0 {
		t := pick(g.rng, g.teachers)
		r[workbook.HeaderPFNumber] = string(t.Payroll)
		r[workbook.HeaderFirstName] = t.Given
		r[workbook.HeaderLastName] = t.Surname
		r[workbook.HeaderGender] = t.Gender()
	} else {
		r[workbook.HeaderPFNumber] = 1000000 + g.rng.IntN(9000000)
		r[workbook.HeaderFirstName] = "TeacherFirst" + strconv.Itoa(i)
		r[workbook.HeaderLastName] = "TeacherLast" + strconv.Itoa(i)
		r[workbook.HeaderGender] = pick(g.rng, g.lists.Genders)
	}

	r[workbook.HeaderDisability] = yesNo(g.rng.Float64() < disabilityChance)
	r[workbook.HeaderYearsTeaching] = pick(g.rng, g.lists.YearsTeaching)

	attended := 0
	for d := 1; d <= workbook.MaxAttendedDays; d++ {
		header := workbook.AttendedDayHeader(d)
		if d > b.Days {
			r[header] = ""
			continue
		}
		present := g.rng.Float64() >= absenceChance
		if present {
			attended++
		}
		r[header] = yesNo(present)
	}
	rate := float64(attended) / float64(b.Days)
	r[workbook.HeaderAttendanceRate] = rate
	r[workbook.HeaderAttendance80] = yesNo(rate >= completionRate)
	r[workbook.HeaderCompletion] = yesNo(rate >= completionRate)
	r[workbook.HeaderSchool] = pick(g.rng, g.lists.Schools)
	return r
}

// FileName is the output name for a CPD type and year.
func FileName(cpdType string, year int) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(cpdType)
	return fmt.Sprintf("CPD-%s-%d.xlsx", safe, year)
}

// WriteBatch saves a copy of the template at outPath with the CPD data rows
// replaced by b. Values are placed by header; headers without a value stay empty.
func WriteBatch(templatePath, outPath string, b Batch) error {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	columns, err := Columns(f)
	if err != nil {
		return err
	}
	if err := clearData(f); err != nil {
		return err
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return err
	}

	for i, row := range b.Rows {
		values := make([]interface{}, len(columns))
		for c, h := range columns {
			values[c] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(emis.CPDSheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		for c, h := range columns {
			if _, isDate := row[h].(time.Time); !isDate {
				continue
			}
			dateCell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(emis.CPDSheetName, dateCell, dateCell, dateStyle); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(outPath)
}

// clearData removes every row below the header.
func clearData(f *excelize.File) error {
	rows, err := f.GetRows(emis.CPDSheetName)
	if err != nil {
		return err
	}
	for r := len(rows); r >= 2; r-- {
		if err := f.RemoveRow(emis.CPDSheetName, r); err != nil {
			return err
		}
	}
	return nil
}

// Options control Run.
type Options struct {
	TemplatePath string
	OutDir       string
	FromYear     int
	ToYear       int
	// OnFile is called after each file is written.
	OnFile func(done, total int, path string)
}

// Run writes one workbook per year in [FromYear, ToYear] and per CPD type of
// the template, returning the written paths.
func Run(ctx context.Context, g *Generator, opts Options) ([]string, error) {
	if opts.FromYear > opts.ToYear {
		return nil, fmt.Errorf("%w: from year %d is after to year %d", emis.ErrUsage, opts.FromYear, opts.ToYear)
	}

	total := (opts.ToYear - opts.FromYear + 1) * len(g.lists.CPDTypes)
	var written []string
	for year := opts.FromYear; year <= opts.ToYear; year++ {
		for _, cpdType := range g.lists.CPDTypes {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			path := filepath.Join(opts.OutDir, FileName(cpdType, year))
			if err := WriteBatch(opts.TemplatePath, path, g.Batch(cpdType, year)); err != nil {
				return written, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			written = append(written, path)
			if opts.OnFile != nil {
				opts.OnFile(len(written), total, path)
			}
		}
	}
	return written, nil
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
