package population

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pacific-emis/emisctl/internal/unpop"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

type cellKey struct {
	model string
	year  int
	age   int
}

// Reshape pivots observations into one record per (model, year, age) with
// male and female counts. Values are rounded half to even before summing,
// "100+" style ages lose the plus, and "Both sexes" observations are ignored.
func Reshape(points []unpop.DataPoint, codes map[string]string) ([]emis.PopulationRecord, error) {
	cells := make(map[cellKey]*emis.PopulationRecord)
	var order []cellKey

	for _, p := range points {
		if p.Sex != "Male" && p.Sex != "Female" {
			continue
		}
		code, ok := codes[p.VariantShortName]
		if !ok {
			return nil, fmt.Errorf("variant %q has no model code", p.VariantShortName)
		}
		year, err := strconv.Atoi(strings.TrimSpace(p.TimeLabel))
		if err != nil {
			return nil, fmt.Errorf("timeLabel %q: %w", p.TimeLabel, err)
		}
		age, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(p.AgeLabel), "+"))
		if err != nil {
			return nil, fmt.Errorf("ageLabel %q: %w", p.AgeLabel, err)
		}

		key := cellKey{model: code, year: year, age: age}
		rec, ok := cells[key]
		if !ok {
			rec = &emis.PopulationRecord{ModelCode: code, Year: year, Age: age}
			cells[key] = rec
			order = append(order, key)
		}
		count := int(math.RoundToEven(p.Value))
		if p.Sex == "Male" {
			rec.Male += count
		} else {
			rec.Female += count
		}
	}

	out := make([]emis.PopulationRecord, 0, len(order))
	for _, k := range order {
		out = append(out, *cells[k])
	}
	sortRecords(out)
	return out, nil
}

// sortRecords orders by (model, year, age).
func sortRecords(records []emis.PopulationRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ModelCode != b.ModelCode {
			return a.ModelCode < b.ModelCode
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Age < b.Age
	})
}
