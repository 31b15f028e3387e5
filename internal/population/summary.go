package population

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// YearTotal is the population of one model in one year.
type YearTotal struct {
	Model  string
	Year   int
	Male   int
	Female int
	Total  int
}

// ModelTrend summarizes the yearly totals of one model.
type ModelTrend struct {
	Model     string
	FirstYear int
	LastYear  int
	Min       float64
	Max       float64
	Mean      float64
	// Growth is the relative change from the first to the last year.
	Growth float64
}

// Summarize totals male and female counts per model and year, ordered by (model, year).
func Summarize(records []emis.PopulationRecord) []YearTotal {
	type key struct {
		model string
		year  int
	}
	male := make(map[key][]float64)
	female := make(map[key][]float64)
	var order []key
	for _, r := range records {
		k := key{r.ModelCode, r.Year}
		if _, ok := male[k]; !ok {
			order = append(order, k)
		}
		male[k] = append(male[k], float64(r.Male))
		female[k] = append(female[k], float64(r.Female))
	}

	out := make([]YearTotal, 0, len(order))
	for _, k := range order {
		m, _ := stats.Sum(male[k])
		f, _ := stats.Sum(female[k])
		out = append(out, YearTotal{Model: k.model, Year: k.year, Male: int(m), Female: int(f), Total: int(m + f)})
	}
	sortTotals(out)
	return out
}

// Trends reduces yearly totals to one ModelTrend per model.
func Trends(totals []YearTotal) []ModelTrend {
	var out []ModelTrend
	for start := 0; start < len(totals); {
		end := start
		for end < len(totals) && totals[end].Model == totals[start].Model {
			end++
		}
		series := make([]float64, 0, end-start)
		for _, t := range totals[start:end] {
			series = append(series, float64(t.Total))
		}

		trend := ModelTrend{
			Model:     totals[start].Model,
			FirstYear: totals[start].Year,
			LastYear:  totals[end-1].Year,
		}
		trend.Min, _ = stats.Min(series)
		trend.Max, _ = stats.Max(series)
		trend.Mean, _ = stats.Mean(series)
		if first := series[0]; first != 0 {
			trend.Growth = (series[len(series)-1] - first) / first
		}
		out = append(out, trend)
		start = end
	}
	return out
}

func sortTotals(totals []YearTotal) {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Model != totals[j].Model {
			return totals[i].Model < totals[j].Model
		}
		return totals[i].Year < totals[j].Year
	})
}
