package pipeline

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

// Transform replaces the named field of every record that carries it with
// the result of evaluating the expression against the record. The current
// field value is bound as "value" alongside the record's other fields.
// Records lacking the field pass through unchanged. Evaluation is
// independent per record, so the work fans out across workerCount
// goroutines when parallel workers are configured.
func Transform(ctx context.Context, in []model.DataRecord, field, expression string, workerCount int) ([]model.DataRecord, []model.ProcessingError, error) {
	program, err := compile(expression)
	if err != nil {
		return nil, nil, err
	}
	if workerCount < 1 {
		workerCount = 1
	}

	out := make([]model.DataRecord, len(in))
	perWorker := make([][]model.ProcessingError, workerCount)

	apply := func(i int) *model.ProcessingError {
		rec := in[i]
		fields, ok := rec.CopyFields()
		if !ok {
			out[i] = rec
			return nil
		}
		current, present := fields[field]
		if !present {
			out[i] = rec
			return nil
		}

		env := make(map[string]interface{}, len(fields)+1)
		for k, v := range fields {
			env[k] = v
		}
		env["value"] = current

		result, evalErr := eval(program, env)
		if evalErr != nil {
			out[i] = rec
			perr := model.NewProcessingError("transform_error", evalErr.Error(), rec.ID)
			return &perr
		}
		fields[field] = result
		out[i] = rec.WithData(fields)
		return nil
	}

	if workerCount == 1 {
		for i := range in {
			if ctx.Err() != nil {
				break
			}
			if perr := apply(i); perr != nil {
				perWorker[0] = append(perWorker[0], *perr)
			}
		}
	} else {
		var wg sync.WaitGroup
		wg.Add(workerCount)
		for w := 0; w < workerCount; w++ {
			go func(worker int) {
				defer wg.Done()
				for i := worker; i < len(in); i += workerCount {
					if ctx.Err() != nil {
						return
					}
					if perr := apply(i); perr != nil {
						perWorker[worker] = append(perWorker[worker], *perr)
					}
				}
			}(w)
		}
		wg.Wait()
	}

	// An expired context leaves the tail of out unprocessed; the partial
	// sequence must never be reported as a stage result.
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "transform interrupted")
	}

	var perrs []model.ProcessingError
	for _, errs := range perWorker {
		perrs = append(perrs, errs...)
	}
	return out, perrs, nil
}
