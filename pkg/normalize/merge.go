// Package normalize turns parsed order exports into the deduplicated entity
// sets written by the ingestion repository.
package normalize

import (
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/dahlia/pkg/models"
)

var nullSentinels = []string{"", "NaN", "nan", "NULL", "null", "None", "N/A", "NA"}

// IsNull reports whether a cell holds one of the null-like sentinels.
func IsNull(value string) bool {
	return ectolinq.Contains(nullSentinels, strings.TrimSpace(value))
}

// Merge concatenates tables under the union of their columns in first seen
// order. Absent columns and null sentinels become nil.
func Merge(tables []*models.Table) *models.Table {
	merged := &models.Table{}
	seen := map[string]bool{}
	for _, table := range tables {
		for _, column := range table.Columns {
			if !seen[column] {
				seen[column] = true
				merged.Columns = append(merged.Columns, column)
			}
		}
	}

	for _, table := range tables {
		for _, record := range table.Records {
			fields := make(map[string]*string, len(merged.Columns))
			for _, column := range merged.Columns {
				value := record.Fields[column]
				if value == nil || IsNull(*value) {
					fields[column] = nil
					continue
				}
				fields[column] = value
			}
			merged.Records = append(merged.Records, models.RawRecord{
				Source: record.Source,
				Line:   record.Line,
				Fields: fields,
			})
		}
	}

	return merged
}
