package workbook

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// newWorkbook builds an in-memory workbook whose CPD data sheet holds rows
// starting at A1. A nil row leaves that sheet row empty.
func newWorkbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.SetSheetName("Sheet1", emis.CPDSheetName))
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(emis.CPDSheetName, cell, &row))
	}
	return f
}

func TestToDocument_SingleRowAndBlankRow(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"CPD Name", "Year"},
		[]interface{}{"Literacy", 2024},
		[]interface{}{"", ""},
	)

	doc, err := ToDocument(f)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, 0, doc.Rows[0].Index)

	out, err := doc.XML()
	require.NoError(t, err)
	assert.Equal(t,
		`<ListObject FirstRow="2" cpdName="Literacy" cpdYear="2024"><row Index="0" CPDName="Literacy" Year="2024"></row></ListObject>`,
		out)
}

func TestToDocument_BlankRowsConsumeIndex(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"CPD Name", "Year", "Gender"},
		[]interface{}{"Numeracy", 2023, "Male"},
		nil,
		[]interface{}{"Numeracy", 2023, "Female"},
		nil,
		[]interface{}{"Numeracy", 2023, ""},
	)

	doc, err := ToDocument(f)
	require.NoError(t, err)

	var indexes []int
	for _, r := range doc.Rows {
		indexes = append(indexes, r.Index)
	}
	assert.Equal(t, []int{0, 2, 4}, indexes)

	gender, ok := doc.Rows[2].Get("Gender")
	assert.True(t, ok, "empty mapped cells still produce an attribute")
	assert.Equal(t, "", gender)
}

func TestToDocument_HeadersAreTrimmedAndUnknownDropped(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"  CPD Name ", "Year", "Notes", "", "School"},
		[]interface{}{"Leadership", 2022, "internal only", "x", "  Bairiki Primary  "},
	)

	doc, err := ToDocument(f)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)

	want := []Attr{
		{"CPDName", "Leadership"},
		{"Year", "2022"},
		{"School", "Bairiki Primary"},
	}
	if diff := cmp.Diff(want, doc.Rows[0].Attrs); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestToDocument_Dates(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"CPD Name", "Year", HeaderStartDate, HeaderEndDate},
		[]interface{}{"Science", 2024, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), "2024-05-19"},
		[]interface{}{"Science", 2024, 1, "1899-12-31"},
		[]interface{}{"Science", 2024, 45417.75, ""},
	)

	doc, err := ToDocument(f)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 3)

	start, _ := doc.Rows[0].Get("StartDate")
	end, _ := doc.Rows[0].Get("EndDate")
	assert.Equal(t, "45417", start)
	assert.Equal(t, "45431", end)

	start, _ = doc.Rows[1].Get("StartDate")
	end, _ = doc.Rows[1].Get("EndDate")
	assert.Equal(t, "1", start, "epoch plus one day")
	assert.Equal(t, "1", end)

	start, _ = doc.Rows[2].Get("StartDate")
	end, _ = doc.Rows[2].Get("EndDate")
	assert.Equal(t, "45417", start, "time of day is dropped")
	assert.Equal(t, "", end)
}

func TestToDocument_ValueFormatting(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"CPD Name", "Year", "Teacher PF Number", "Attendance Rate", "Duration in Hours", "Disability"},
		[]interface{}{"ICT", 2025, "0012345", 0.8, 40, true},
	)

	doc, err := ToDocument(f)
	require.NoError(t, err)
	row := doc.Rows[0]

	pf, _ := row.Get("TeacherPFNumber")
	rate, _ := row.Get("AttendanceRate")
	hours, _ := row.Get("DurationHours")
	disability, _ := row.Get("Disability")
	assert.Equal(t, "0012345", pf, "text cells are kept verbatim")
	assert.Equal(t, "0.8", rate)
	assert.Equal(t, "40", hours)
	assert.Equal(t, "True", disability)
}

func TestToDocument_Failures(t *testing.T) {
	t.Run("missing sheet", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		_, err := ToDocument(f)
		assert.ErrorIs(t, err, emis.ErrSheetNotFound)
	})

	t.Run("header only", func(t *testing.T) {
		f := newWorkbook(t, []interface{}{"CPD Name", "Year"})
		_, err := ToDocument(f)
		assert.ErrorIs(t, err, emis.ErrNoDataRows)
	})

	t.Run("missing year", func(t *testing.T) {
		f := newWorkbook(t,
			[]interface{}{"CPD Name", "Year"},
			[]interface{}{"Literacy", ""},
		)
		_, err := ToDocument(f)
		assert.ErrorIs(t, err, emis.ErrMissingMetadata)
	})

	t.Run("bad date", func(t *testing.T) {
		f := newWorkbook(t,
			[]interface{}{"CPD Name", "Year", HeaderStartDate},
			[]interface{}{"Literacy", 2024, "next tuesday"},
		)
		_, err := ToDocument(f)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestDocument_XMLEscapes(t *testing.T) {
	doc := &Document{
		CPDName: `Reading & "Writing"`,
		CPDYear: 2024,
		Rows:    []Row{{Index: 0, Attrs: []Attr{{"School", "St Mary's <Annex>"}}}},
	}
	out, err := doc.XML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<ListObject FirstRow="2" cpdName="Reading &amp; &#34;Writing&#34;" cpdYear="2024">`), out)
	assert.Contains(t, out, `School="St Mary&#39;s &lt;Annex&gt;"`)
}

func TestAttributeFor(t *testing.T) {
	attr, ok := AttributeFor("Attended Day 15")
	assert.True(t, ok)
	assert.Equal(t, "AttendedDay15", attr)

	_, ok = AttributeFor("Attended Day 16")
	assert.False(t, ok)

	attr, ok = AttributeFor("80% Attendance")
	assert.True(t, ok)
	assert.Equal(t, "Percent80Attendance", attr)
}

func TestDayCount(t *testing.T) {
	assert.Equal(t, 0, DayCount(Epoch))
	assert.Equal(t, 1, DayCount(Epoch.AddDate(0, 0, 1)))
	assert.Equal(t, 45417, DayCount(time.Date(2024, 5, 5, 13, 30, 0, 0, time.UTC)))
}
