// Package population reshapes UN population projections into EMIS
// Population and PopulationModel rows.
package population

import (
	"fmt"
	"sort"

	"github.com/pacific-emis/emisctl/internal/unpop"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// MedianVariant is always numbered first.
const MedianVariant = "Median"

// Model is one projection variant.
type Model struct {
	Code    string
	Label   string // variantLabel
	Variant string // variant
}

// Record renders the model as a PopulationModel row.
func (m Model) Record() emis.PopulationModel {
	return emis.PopulationModel{
		Code:        m.Code,
		Name:        "UNPD 2024 Variant - " + m.Label,
		Description: "UN Population Division - Indicator Population by 1-year age groups and sex - 2024 Revision Projection Variant " + m.Variant,
	}
}

// Variants returns the distinct variant short names in first-seen order.
func Variants(points []unpop.DataPoint) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range points {
		if !seen[p.VariantShortName] {
			seen[p.VariantShortName] = true
			out = append(out, p.VariantShortName)
		}
	}
	return out
}

// AssignModelCodes numbers variants as {prefix}1, {prefix}2, ... with Median
// first and the rest in alphabetical order.
func AssignModelCodes(variants []string, prefix string) map[string]string {
	codes := make(map[string]string, len(variants))
	var rest []string
	for _, v := range variants {
		if v == MedianVariant {
			continue
		}
		if _, dup := codes[v]; dup {
			continue
		}
		codes[v] = ""
		rest = append(rest, v)
	}
	sort.Strings(rest)

	next := 1
	for _, v := range variants {
		if v == MedianVariant {
			codes[MedianVariant] = fmt.Sprintf("%s%d", prefix, next)
			next++
			break
		}
	}
	for _, v := range rest {
		codes[v] = fmt.Sprintf("%s%d", prefix, next)
		next++
	}
	return codes
}

// Models returns the distinct (code, label, variant) triples sorted by code.
func Models(points []unpop.DataPoint, codes map[string]string) []Model {
	seen := make(map[Model]bool)
	var out []Model
	for _, p := range points {
		m := Model{Code: codes[p.VariantShortName], Label: p.VariantLabel, Variant: p.Variant}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
