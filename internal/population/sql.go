package population

import (
	"fmt"
	"io"
	"strings"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

const (
	populationInsert = "INSERT INTO [dbo].[Population] ([popmodCode],[popYear],[popAge],[popM],[popF]) VALUES ('%s', %d, %d, %d, %d);"
	modelInsert      = "INSERT INTO [dbo].[PopulationModel] ([popmodCode],[popmodName],[popmodDesc],[popmodDefault],[popmodEFA]) VALUES ('%s', 'UNPD 2024 Variant - %s', 'UN Population Division - Indicator Population by 1-year age groups and sex - 2024 Revision Projection Variant %s', 0, 0);"
)

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// WriteInsertSQL writes one Population INSERT per record, newline separated
// with no trailing newline.
func WriteInsertSQL(w io.Writer, records []emis.PopulationRecord) error {
	for i, r := range records {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, populationInsert, quote(r.ModelCode), r.Year, r.Age, r.Male, r.Female); err != nil {
			return err
		}
	}
	return nil
}

// WriteModelSQL writes one PopulationModel INSERT per model in the given order.
func WriteModelSQL(w io.Writer, models []Model) error {
	for i, m := range models {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, modelInsert, quote(m.Code), quote(m.Label), quote(m.Variant)); err != nil {
			return err
		}
	}
	return nil
}
