package pipeline

import (
	"fmt"

	"go-data-processor/internal/model"
)

type group struct {
	keyFields map[string]interface{}
	records   []model.DataRecord
}

// Aggregate partitions records by the composite key formed from the
// group_by fields and emits exactly one output record per distinct key, in
// first-seen order. The group key fields are copied into the output data
// along with one field per requested function. Non-numeric values are
// excluded from numeric functions rather than failing the stage.
func Aggregate(in []model.DataRecord, groupBy []string, functions []model.AggregateFunction) ([]model.DataRecord, []model.ProcessingError, error) {
	groups := make(map[string]*group)
	var order []string

	for _, rec := range in {
		key := compositeKey(rec, groupBy)
		g, ok := groups[key]
		if !ok {
			keyFields := make(map[string]interface{}, len(groupBy))
			for _, field := range groupBy {
				if v, present := rec.Field(field); present {
					keyFields[field] = v
				} else {
					keyFields[field] = nil
				}
			}
			g = &group{keyFields: keyFields}
			groups[key] = g
			order = append(order, key)
		}
		g.records = append(g.records, rec)
	}

	var perrs []model.ProcessingError
	out := make([]model.DataRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		data := make(map[string]interface{}, len(g.keyFields)+len(functions))
		for k, v := range g.keyFields {
			data[k] = v
		}
		for _, fn := range functions {
			perrs = append(perrs, applyFunction(data, g.records, fn)...)
		}
		out = append(out, model.NewRecord("aggregated", data))
	}
	return out, perrs, nil
}

func applyFunction(data map[string]interface{}, records []model.DataRecord, fn model.AggregateFunction) []model.ProcessingError {
	switch fn.Type {
	case model.AggCount:
		data["count"] = len(records)
	case model.AggSum:
		if sum, n := sumField(records, fn.Field); n > 0 {
			data["sum_"+fn.Field] = sum
		}
	case model.AggAverage:
		if sum, n := sumField(records, fn.Field); n > 0 {
			data["avg_"+fn.Field] = sum / float64(n)
		}
	case model.AggMin:
		if v, ok := extremeField(records, fn.Field, func(a, b float64) bool { return a < b }); ok {
			data["min_"+fn.Field] = v
		}
	case model.AggMax:
		if v, ok := extremeField(records, fn.Field, func(a, b float64) bool { return a > b }); ok {
			data["max_"+fn.Field] = v
		}
	case model.AggCustom:
		return applyCustomFunction(data, records, fn)
	default:
		return []model.ProcessingError{
			model.NewProcessingError("aggregate_error", fmt.Sprintf("unknown aggregate function %q", fn.Type), ""),
		}
	}
	return nil
}

// applyCustomFunction evaluates a named expression per record. Numeric
// results are summed under the function name; a lone non-numeric result
// keeps the last value seen.
func applyCustomFunction(data map[string]interface{}, records []model.DataRecord, fn model.AggregateFunction) []model.ProcessingError {
	program, err := compile(fn.Expression)
	if err != nil {
		return []model.ProcessingError{
			model.NewProcessingError("aggregate_error", err.Error(), ""),
		}
	}

	var perrs []model.ProcessingError
	var sum float64
	numeric := 0
	var last interface{}
	for _, rec := range records {
		env, _ := rec.Fields()
		if env == nil {
			env = map[string]interface{}{}
		}
		result, evalErr := eval(program, env)
		if evalErr != nil {
			perrs = append(perrs, model.NewProcessingError("aggregate_error", evalErr.Error(), rec.ID))
			continue
		}
		if n, ok := model.Numeric(result); ok {
			sum += n
			numeric++
		}
		last = result
	}

	switch {
	case numeric > 0:
		data[fn.Name] = sum
	case last != nil:
		data[fn.Name] = last
	}
	return perrs
}

func sumField(records []model.DataRecord, field string) (float64, int) {
	var sum float64
	n := 0
	for _, rec := range records {
		if v, ok := rec.Field(field); ok {
			if num, numeric := model.Numeric(v); numeric {
				sum += num
				n++
			}
		}
	}
	return sum, n
}

func extremeField(records []model.DataRecord, field string, better func(a, b float64) bool) (float64, bool) {
	var best float64
	found := false
	for _, rec := range records {
		if v, ok := rec.Field(field); ok {
			if num, numeric := model.Numeric(v); numeric {
				if !found || better(num, best) {
					best = num
					found = true
				}
			}
		}
	}
	return best, found
}
