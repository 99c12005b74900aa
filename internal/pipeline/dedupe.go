package pipeline

import (
	"strings"

	"go-data-processor/internal/model"
)

// Deduplicate keeps the first record observed for each distinct composite
// key, in original order, and drops later duplicates. Applying it twice
// with the same fields yields the same result as applying it once.
func Deduplicate(in []model.DataRecord, fields []string) []model.DataRecord {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.DataRecord, 0, len(in))

	for _, rec := range in {
		key := compositeKey(rec, fields)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// compositeKey joins the listed field values with a separator that cannot
// appear in a rendered scalar. Missing fields contribute a distinct marker
// so {"a": ""} and {} key differently.
func compositeKey(rec model.DataRecord, fields []string) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		if v, ok := rec.Field(field); ok {
			parts[i] = model.TypeName(v) + ":" + model.Stringify(v)
		} else {
			parts[i] = "\x00missing"
		}
	}
	return strings.Join(parts, "\x1f")
}
