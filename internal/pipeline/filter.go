package pipeline

import "go-data-processor/internal/model"

// Filter keeps the records for which the condition evaluates to true
// against the record's data. Records the condition cannot see (non-object
// payloads) are evaluated with an empty environment, so field references
// behave as missing and drop the record.
func Filter(in []model.DataRecord, condition string) ([]model.DataRecord, []model.ProcessingError, error) {
	program, err := compile(condition)
	if err != nil {
		return nil, nil, err
	}

	out := make([]model.DataRecord, 0, len(in))
	for _, rec := range in {
		env, _ := rec.Fields()
		if env == nil {
			env = map[string]interface{}{}
		}
		if evalBool(program, env) {
			out = append(out, rec)
		}
	}
	return out, nil, nil
}
