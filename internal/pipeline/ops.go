// Package pipeline implements the per-operation transformation semantics:
// each handler consumes an ordered record sequence and produces a new one,
// never mutating record sets held elsewhere.
package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

// SourceLookup resolves named record sets for Join stages. Satisfied by
// *store.RecordStore.
type SourceLookup interface {
	Get(source string) ([]model.DataRecord, bool)
}

// Options carries per-job tuning relevant to a single stage.
type Options struct {
	// Workers bounds the goroutines used for per-record work in stages
	// that have no cross-record dependency (transform). <=1 means serial.
	Workers int
}

// Apply runs one operation over the record sequence. Per-record issues come
// back as ProcessingErrors on the stage result; the error return is reserved
// for stage-fatal conditions that abort the remaining pipeline.
func Apply(ctx context.Context, op model.Operation, in []model.DataRecord, lookup SourceLookup, opts Options) ([]model.DataRecord, []model.ProcessingError, error) {
	switch op.Type {
	case model.OpFilter:
		return Filter(in, op.Condition)
	case model.OpTransform:
		return Transform(ctx, in, op.Field, op.Expression, opts.Workers)
	case model.OpSort:
		return Sort(in, op.Fields, op.Ascending), nil, nil
	case model.OpDeduplicate:
		return Deduplicate(in, op.Fields), nil, nil
	case model.OpAggregate:
		return Aggregate(in, op.GroupBy, op.Functions)
	case model.OpJoin:
		return Join(in, op.Source, op.On, lookup)
	case model.OpValidate:
		return in, Validate(in, op.Rules), nil
	default:
		return nil, nil, errors.Wrapf(model.ErrParse, "unknown operation type %q", op.Type)
	}
}
