package pipeline

import (
	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

// Join merges into each record the fields of the first record in the named
// source set whose on-field matches. Unmatched records and records the join
// key cannot be read from pass through unmerged (left-outer semantics).
// Fields already present on the left record are never overwritten.
func Join(in []model.DataRecord, source, on string, lookup SourceLookup) ([]model.DataRecord, []model.ProcessingError, error) {
	right, ok := lookup.Get(source)
	if !ok {
		return nil, nil, errors.Wrapf(model.ErrNotFound, "join source %q", source)
	}

	// First match wins per key, matching the ordered semantics of the set.
	index := make(map[string]map[string]interface{}, len(right))
	for _, rec := range right {
		v, present := rec.Field(on)
		if !present {
			continue
		}
		key := model.TypeName(v) + ":" + model.Stringify(v)
		if _, seen := index[key]; seen {
			continue
		}
		if fields, isObject := rec.Fields(); isObject {
			index[key] = fields
		}
	}

	out := make([]model.DataRecord, 0, len(in))
	for _, rec := range in {
		v, present := rec.Field(on)
		if !present {
			out = append(out, rec)
			continue
		}
		match, found := index[model.TypeName(v)+":"+model.Stringify(v)]
		if !found {
			out = append(out, rec)
			continue
		}
		merged, _ := rec.CopyFields()
		for k, rv := range match {
			if _, exists := merged[k]; !exists {
				merged[k] = rv
			}
		}
		out = append(out, rec.WithData(merged))
	}
	return out, nil, nil
}
