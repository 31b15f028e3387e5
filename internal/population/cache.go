package population

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/pacific-emis/emisctl/internal/unpop"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// File names written into the population directory.
const (
	RawDataFile   = "population_data.json"
	FinalXLSXFile = "population_data_final.xlsx"
	ModelsSQLFile = "insert_population_models.sql"
	RowsSQLFile   = "insert_population.sql"
)

// SaveRaw caches downloaded observations as JSON.
func SaveRaw(path string, points []unpop.DataPoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(points)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadRaw reads observations written by SaveRaw.
func LoadRaw(path string) ([]unpop.DataPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read population cache (run `emisctl population fetch` first): %w", err)
	}
	var points []unpop.DataPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parse population cache %s: %w", path, err)
	}
	return points, nil
}

// ExportXLSX writes records to a single-sheet workbook with a header row.
func ExportXLSX(path string, records []emis.PopulationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Population"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []interface{}{"popmodCode", "popYear", "popAge", "popM", "popF"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		row := []interface{}{r.ModelCode, r.Year, r.Age, r.Male, r.Female}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}
