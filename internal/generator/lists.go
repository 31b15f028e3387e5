// Package generator fills copies of the CPD template workbook with synthetic
// attendance data for testing the CPD load.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// ErrEmptyList is returned when a dropdown list of the template has no values.
var ErrEmptyList = errors.New("template list is empty")

// Header cells of the dropdown lists on the Lists sheet. Values start one row below.
const (
	cpdTypesCell      = "C4"
	formatsCell       = "E4"
	focusesCell       = "G4"
	schoolsCell       = "K4"
	gendersCell       = "M4"
	yearsTeachingCell = "A15"
)

// Lists are the dropdown values of the template.
type Lists struct {
	CPDTypes      []string
	Formats       []string
	Focuses       []string
	Schools       []string
	Genders       []string
	YearsTeaching []string
}

// ReadLists reads every dropdown list from the Lists sheet. All lists must be non-empty.
func ReadLists(f *excelize.File) (Lists, error) {
	if idx, err := f.GetSheetIndex(emis.ListsSheetName); err != nil || idx < 0 {
		return Lists{}, fmt.Errorf("%w: %s", emis.ErrSheetNotFound, emis.ListsSheetName)
	}

	var lists Lists
	targets := []struct {
		cell string
		dst  *[]string
	}{
		{cpdTypesCell, &lists.CPDTypes},
		{formatsCell, &lists.Formats},
		{focusesCell, &lists.Focuses},
		{schoolsCell, &lists.Schools},
		{gendersCell, &lists.Genders},
		{yearsTeachingCell, &lists.YearsTeaching},
	}

	var errs []error
	for _, t := range targets {
		values, err := listBelow(f, t.cell)
		if err != nil {
			return Lists{}, err
		}
		if len(values) == 0 {
			errs = append(errs, fmt.Errorf("%w: below %s", ErrEmptyList, t.cell))
		}
		*t.dst = values
	}
	return lists, errors.Join(errs...)
}

// listBelow collects the values under header until the first empty cell.
func listBelow(f *excelize.File, header string) ([]string, error) {
	col, row, err := excelize.CellNameToCoordinates(header)
	if err != nil {
		return nil, err
	}
	var values []string
	for r := row + 1; ; r++ {
		cell, err := excelize.CoordinatesToCellName(col, r)
		if err != nil {
			return nil, err
		}
		v, err := f.GetCellValue(emis.ListsSheetName, cell)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(v) == "" {
			return values, nil
		}
		values = append(values, v)
	}
}

// Columns returns the trimmed header row of the CPD data sheet.
func Columns(f *excelize.File) ([]string, error) {
	if idx, err := f.GetSheetIndex(emis.CPDSheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", emis.ErrSheetNotFound, emis.CPDSheetName)
	}
	rows, err := f.GetRows(emis.CPDSheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", emis.ErrMissingMetadata, emis.CPDSheetName)
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}
