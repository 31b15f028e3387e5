// Package workbook turns a CPD data workbook into the ListObject document
// accepted by the teacher CPD load procedure.
package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// ToDocument reads the CPD data sheet of f.
//
// Row 1 holds the headers. Every following row that has at least one value
// becomes a Row; blank rows are skipped but still consume an Index. Each mapped
// header contributes an attribute, "" when the cell is empty.
func ToDocument(f *excelize.File) (*Document, error) {
	if idx, err := f.GetSheetIndex(emis.CPDSheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", emis.CPDSheetName, emis.ErrSheetNotFound)
	}

	rows, err := f.GetRows(emis.CPDSheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", emis.CPDSheetName, err)
	}
	if len(rows) == 0 {
		return nil, emis.ErrNoDataRows
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := rows[1:]
	if !hasValues(data) {
		return nil, emis.ErrNoDataRows
	}

	cpdName, cpdYear, err := metadata(headers, data[0])
	if err != nil {
		return nil, err
	}

	doc := &Document{CPDName: cpdName, CPDYear: cpdYear}
	for i, cells := range data {
		if isBlank(cells) {
			continue
		}
		row := Row{Index: i}
		sheetRow := i + 2

		for col, header := range headers {
			if header == "" {
				continue
			}
			attr, ok := AttributeFor(header)
			if !ok {
				continue
			}

			raw := ""
			if col < len(cells) {
				raw = cells[col]
			}
			numeric := false
			if raw != "" {
				if numeric, err = isNumeric(f, col+1, sheetRow); err != nil {
					return nil, err
				}
			}

			var value string
			if isDateHeader(header) {
				value, err = dayCountCell(raw, numeric)
				if err != nil {
					cell, _ := excelize.CoordinatesToCellName(col+1, sheetRow)
					return nil, fmt.Errorf("%s %s: %w", header, cell, err)
				}
			} else {
				value, err = cellText(f, raw, numeric, col+1, sheetRow)
				if err != nil {
					return nil, err
				}
			}
			row.set(attr, strings.TrimSpace(value))
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

// metadata extracts the CPD name and year from the first data row.
func metadata(headers, first []string) (string, int, error) {
	lookup := func(name string) string {
		for i, h := range headers {
			if h == name && i < len(first) {
				return strings.TrimSpace(first[i])
			}
		}
		return ""
	}

	name := lookup(HeaderCPDName)
	rawYear := lookup(HeaderYear)
	if name == "" || rawYear == "" {
		return "", 0, fmt.Errorf("first data row lacks %s or %s: %w", HeaderCPDName, HeaderYear, emis.ErrMissingMetadata)
	}

	year, err := strconv.ParseFloat(rawYear, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s %q is not a number: %w", HeaderYear, rawYear, emis.ErrMissingMetadata)
	}
	return name, int(math.Trunc(year)), nil
}

// isNumeric reports whether the cell stores a number. excelize leaves the type
// unset for plain numeric cells.
func isNumeric(f *excelize.File, col, row int) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	t, err := f.GetCellType(emis.CPDSheetName, cell)
	if err != nil {
		return false, err
	}
	return t == excelize.CellTypeNumber || t == excelize.CellTypeUnset, nil
}

func cellText(f *excelize.File, raw string, numeric bool, col, row int) (string, error) {
	if raw == "" {
		return "", nil
	}
	if numeric {
		return formatNumber(raw), nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	t, err := f.GetCellType(emis.CPDSheetName, cell)
	if err != nil {
		return "", err
	}
	if t == excelize.CellTypeBool {
		if raw == "1" {
			return "True", nil
		}
		return "False", nil
	}
	return raw, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func hasValues(rows [][]string) bool {
	for _, r := range rows {
		if !isBlank(r) {
			return true
		}
	}
	return false
}
