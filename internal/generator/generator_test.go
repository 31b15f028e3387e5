package generator

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/internal/teachers"
	"github.com/pacific-emis/emisctl/internal/workbook"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

var testHeaders = []string{
	workbook.HeaderCPDName, workbook.HeaderCPDFormat, workbook.HeaderCPDFocus, workbook.HeaderLocation,
	workbook.HeaderYear, workbook.HeaderStartDate, workbook.HeaderEndDate, workbook.HeaderDurationDays,
	workbook.HeaderDurationHours, workbook.HeaderPFNumber, workbook.HeaderFirstName, workbook.HeaderLastName,
	workbook.HeaderGender, workbook.HeaderDisability, workbook.HeaderYearsTeaching, workbook.HeaderAttendanceRate,
	workbook.HeaderAttendance80, workbook.HeaderCompletion, workbook.HeaderSchool,
}

func allHeaders() []interface{} {
	var out []interface{}
	for _, h := range testHeaders {
		out = append(out, h)
	}
	for d := 1; d <= workbook.MaxAttendedDays; d++ {
		out = append(out, workbook.AttendedDayHeader(d))
	}
	return out
}

func setColumn(t *testing.T, f *excelize.File, header string, title string, values ...string) {
	t.Helper()
	col, row, err := excelize.CellNameToCoordinates(header)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(emis.ListsSheetName, header, title))
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(col, row+1+i)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(emis.ListsSheetName, cell, v))
	}
}

// writeTemplate creates a template with a stale data row that generation must replace.
func writeTemplate(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", emis.CPDSheetName))
	headers := allHeaders()
	require.NoError(t, f.SetSheetRow(emis.CPDSheetName, "A1", &headers))
	stale := []interface{}{"Stale", "x"}
	require.NoError(t, f.SetSheetRow(emis.CPDSheetName, "A2", &stale))

	_, err := f.NewSheet(emis.ListsSheetName)
	require.NoError(t, err)
	setColumn(t, f, "C4", "CPD Type", "Induction", "Subject/Content")
	setColumn(t, f, "E4", "Format", "Workshop", "Online")
	setColumn(t, f, "G4", "Focus", "Literacy")
	setColumn(t, f, "K4", "School", "KIR101", "KIR102")
	setColumn(t, f, "M4", "Gender", "Male", "Female")
	setColumn(t, f, "A15", "Years", "0-5", "6-10", "11+")

	path := filepath.Join(t.TempDir(), emis.CPDTemplateFile)
	require.NoError(t, f.SaveAs(path))
	return path
}

func openFile(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestReadLists(t *testing.T) {
	f := openFile(t, writeTemplate(t))

	lists, err := ReadLists(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Induction", "Subject/Content"}, lists.CPDTypes)
	assert.Equal(t, []string{"Workshop", "Online"}, lists.Formats)
	assert.Equal(t, []string{"Literacy"}, lists.Focuses)
	assert.Equal(t, []string{"KIR101", "KIR102"}, lists.Schools)
	assert.Equal(t, []string{"Male", "Female"}, lists.Genders)
	assert.Equal(t, []string{"0-5", "6-10", "11+"}, lists.YearsTeaching)

	columns, err := Columns(f)
	require.NoError(t, err)
	assert.Len(t, columns, len(testHeaders)+workbook.MaxAttendedDays)
}

func TestReadLists_EmptyAndMissing(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := ReadLists(f)
	assert.ErrorIs(t, err, emis.ErrSheetNotFound)

	_, err = f.NewSheet(emis.ListsSheetName)
	require.NoError(t, err)
	setColumn(t, f, "C4", "CPD Type", "Induction")
	_, err = ReadLists(f)
	assert.ErrorIs(t, err, ErrEmptyList)
	assert.ErrorContains(t, err, "below A15")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "CPD-Subject_Content-2024.xlsx", FileName("Subject/Content", 2024))
	assert.Equal(t, "CPD-School_based_training-2020.xlsx", FileName("School based training", 2020))
}

func testLists() Lists {
	return Lists{
		CPDTypes:      []string{"Induction"},
		Formats:       []string{"Workshop"},
		Focuses:       []string{"Literacy"},
		Schools:       []string{"KIR101"},
		Genders:       []string{"Male", "Female"},
		YearsTeaching: []string{"0-5"},
	}
}

func TestBatch_Rules(t *testing.T) {
	cached := []teachers.Teacher{
		{Payroll: "0012345", Given: "Teera", Surname: "Kaure", Sex: "M"},
		{Payroll: "", Given: "Invalid", Surname: "Teacher", Sex: "F"},
	}
	g := NewSeeded(testLists(), cached, 42)
	g.RowsPerFile = 200

	b := g.Batch("Induction", 2023)
	require.Len(t, b.Rows, 200)
	assert.Contains(t, []int{5, 10, 15}, b.Days)
	assert.Equal(t, "2023-05-05", b.Start.Format("2006-01-02"))
	assert.Equal(t, b.Start.AddDate(0, 0, b.Days-1), b.End())

	realCount := 0
	for i, r := range b.Rows {
		assert.Equal(t, b.Days*8, r[workbook.HeaderDurationHours])
		assert.Equal(t, Location, r[workbook.HeaderLocation])

		if r[workbook.HeaderPFNumber] == "0012345" {
			realCount++
			assert.Equal(t, "Male", r[workbook.HeaderGender])
		} else {
			pf, ok := r[workbook.HeaderPFNumber].(int)
			require.True(t, ok, "synthetic PF numbers are ints")
			assert.GreaterOrEqual(t, pf, 1000000)
			assert.LessOrEqual(t, pf, 9999999)
			assert.Equal(t, "TeacherFirst"+strconv.Itoa(i+1), r[workbook.HeaderFirstName])
		}

		yes := 0
		for d := 1; d <= workbook.MaxAttendedDays; d++ {
			v := r[workbook.AttendedDayHeader(d)]
			if d > b.Days {
				assert.Equal(t, "", v)
				continue
			}
			assert.Contains(t, []string{"Yes", "No"}, v)
			if v == "Yes" {
				yes++
			}
		}
		rate := float64(yes) / float64(b.Days)
		assert.InDelta(t, rate, r[workbook.HeaderAttendanceRate], 1e-9)
		want := "No"
		if rate >= 0.8 {
			want = "Yes"
		}
		assert.Equal(t, want, r[workbook.HeaderAttendance80])
		assert.Equal(t, want, r[workbook.HeaderCompletion])
	}
	assert.Greater(t, realCount, 0)
	assert.Less(t, realCount, 200)
}

func TestBatch_Reproducible(t *testing.T) {
	a := NewSeeded(testLists(), nil, 7).Batch("Induction", 2020)
	b := NewSeeded(testLists(), nil, 7).Batch("Induction", 2020)
	assert.Equal(t, a, b)
}

func TestRun_WritesLoadableWorkbooks(t *testing.T) {
	template := writeTemplate(t)
	lists, err := ReadLists(openFile(t, template))
	require.NoError(t, err)

	out := t.TempDir()
	g := NewSeeded(lists, nil, 1)
	g.RowsPerFile = 3

	var progress []int
	paths, err := Run(context.Background(), g, Options{
		TemplatePath: template,
		OutDir:       out,
		FromYear:     2024,
		ToYear:       2025,
		OnFile:       func(done, total int, _ string) { progress = append(progress, done*10+total) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "CPD-Induction-2024.xlsx"),
		filepath.Join(out, "CPD-Subject_Content-2024.xlsx"),
		filepath.Join(out, "CPD-Induction-2025.xlsx"),
		filepath.Join(out, "CPD-Subject_Content-2025.xlsx"),
	}, paths)
	assert.Equal(t, []int{14, 24, 34, 44}, progress)

	doc, err := workbook.ToDocument(openFile(t, paths[1]))
	require.NoError(t, err)
	assert.Equal(t, "Subject/Content", doc.CPDName)
	assert.Equal(t, 2024, doc.CPDYear)
	require.Len(t, doc.Rows, 3, "the stale template row is replaced")

	start, ok := doc.Rows[0].Get("StartDate")
	require.True(t, ok)
	want := workbook.DayCount(time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, strconv.Itoa(want), start)
	loc, _ := doc.Rows[2].Get("Location")
	assert.Equal(t, Location, loc)
}

func TestRun_Errors(t *testing.T) {
	g := NewSeeded(testLists(), nil, 1)
	_, err := Run(context.Background(), g, Options{FromYear: 2025, ToYear: 2024})
	assert.ErrorIs(t, err, emis.ErrUsage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	paths, err := Run(ctx, g, Options{OutDir: t.TempDir(), FromYear: 2024, ToYear: 2024})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)

	_, err = Run(context.Background(), g, Options{
		TemplatePath: filepath.Join(t.TempDir(), "missing.xlsx"),
		OutDir:       t.TempDir(),
		FromYear:     2024,
		ToYear:       2024,
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
