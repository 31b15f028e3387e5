package population

import (
	"github.com/pacific-emis/emisctl/internal/unpop"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Result is the output of Build.
type Result struct {
	Models  []Model
	Records []emis.PopulationRecord
}

// Build numbers the variants of points with prefix, reshapes them and fills
// every model forward from reference.
func Build(points []unpop.DataPoint, prefix, reference string) (Result, error) {
	codes := AssignModelCodes(Variants(points), prefix)

	reshaped, err := Reshape(points, codes)
	if err != nil {
		return Result{}, err
	}
	filled, err := FillForward(reshaped, reference)
	if err != nil {
		return Result{}, err
	}
	return Result{Models: Models(points, codes), Records: filled}, nil
}

// ModelRecords renders models as PopulationModel rows.
func ModelRecords(models []Model) []emis.PopulationModel {
	out := make([]emis.PopulationModel, len(models))
	for i, m := range models {
		out[i] = m.Record()
	}
	return out
}
