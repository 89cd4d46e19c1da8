package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// Metadata builds the order's meta_data bag. Every key is present; missing
// values are nil.
func Metadata(record models.RawRecord) map[string]any {
	meta := make(map[string]any, len(models.MetadataColumns))
	for _, column := range models.MetadataColumns {
		value := record.Get(column.Column)
		if value == nil {
			meta[column.Key] = nil
			continue
		}
		// phone numbers keep leading zeros and formatting
		if column.Column == models.ColPhoneNumber {
			meta[column.Key] = strings.TrimSpace(*value)
			continue
		}
		meta[column.Key] = scalar(*value)
	}
	return meta
}

// scalar reads a cell as a bool, integer or finite float, falling back to the string.
func scalar(raw string) any {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return value
}
