package population

import (
	"fmt"
	"sort"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

type gridKey struct {
	year int
	age  int
}

// FillForward completes every non-reference model over the reference grid.
//
// The grid is every distinct reference year crossed with every distinct
// reference age. Each other model keeps its own value where it has one and
// takes the reference value otherwise; its rows outside the grid are dropped.
// Reference rows pass through unchanged. A grid cell that neither the model
// nor the reference has fails with ErrIncompleteReference. The result is
// sorted by (model, year, age).
func FillForward(records []emis.PopulationRecord, reference string) ([]emis.PopulationRecord, error) {
	ref := make(map[gridKey]emis.PopulationRecord)
	years := make(map[int]bool)
	ages := make(map[int]bool)
	byModel := make(map[string]map[gridKey]emis.PopulationRecord)
	var out []emis.PopulationRecord

	for _, r := range records {
		k := gridKey{r.Year, r.Age}
		if r.ModelCode == reference {
			ref[k] = r
			years[r.Year] = true
			ages[r.Age] = true
			out = append(out, r)
			continue
		}
		if byModel[r.ModelCode] == nil {
			byModel[r.ModelCode] = make(map[gridKey]emis.PopulationRecord)
		}
		byModel[r.ModelCode][k] = r
	}
	if len(ref) == 0 {
		return nil, fmt.Errorf("reference model %s has no rows: %w", reference, emis.ErrIncompleteReference)
	}

	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Strings(models)

	gridYears, gridAges := sortedKeys(years), sortedKeys(ages)
	for _, model := range models {
		observed := byModel[model]
		for _, y := range gridYears {
			for _, a := range gridAges {
				k := gridKey{y, a}
				if r, ok := observed[k]; ok {
					out = append(out, r)
					continue
				}
				r, ok := ref[k]
				if !ok {
					return nil, fmt.Errorf("%s year %d age %d missing in both %s and reference %s: %w",
						model, y, a, model, reference, emis.ErrIncompleteReference)
				}
				out = append(out, emis.PopulationRecord{ModelCode: model, Year: y, Age: a, Male: r.Male, Female: r.Female})
			}
		}
	}

	sortRecords(out)
	return out, nil
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
