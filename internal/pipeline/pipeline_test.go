package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-data-processor/internal/model"
)

func rec(fields map[string]interface{}) model.DataRecord {
	return model.NewRecord("test", fields)
}

func fieldOf(t *testing.T, r model.DataRecord, name string) interface{} {
	t.Helper()
	v, ok := r.Field(name)
	require.True(t, ok, "field %s missing", name)
	return v
}

func TestFilterKeepsMatching(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"amount": 150, "status": "active"}),
		rec(map[string]interface{}{"amount": 50, "status": "active"}),
		rec(map[string]interface{}{"amount": 200, "status": "closed"}),
	}

	out, perrs, err := Filter(in, `amount > 100 && status == "active"`)
	require.NoError(t, err)
	assert.Empty(t, perrs)
	require.Len(t, out, 1)
	assert.Equal(t, 150, fieldOf(t, out[0], "amount"))
}

func TestFilterMissingFieldIsFalse(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"amount": 150}),
		rec(map[string]interface{}{"other": 1}),
		model.NewRecord("test", "scalar payload"),
	}

	out, _, err := Filter(in, `amount > 100`)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
}

func TestFilterAlwaysTrueKeepsEverything(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"a": 1}),
		model.NewRecord("test", []interface{}{1.0, 2.0}),
	}
	out, _, err := Filter(in, `true`)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestFilterBadConditionIsStageFatal(t *testing.T) {
	_, _, err := Filter(nil, `amount >`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrParse))
}

func TestTransformReplacesField(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"price": 10, "qty": 3}),
		rec(map[string]interface{}{"qty": 5}), // no price: passes through
	}

	out, perrs, err := Transform(context.Background(), in, "price", `value * qty`, 1)
	require.NoError(t, err)
	assert.Empty(t, perrs)
	require.Len(t, out, 2)

	assert.Equal(t, 30, fieldOf(t, out[0], "price"))
	_, hasPrice := out[1].Field("price")
	assert.False(t, hasPrice)
	assert.Equal(t, 5, fieldOf(t, out[1], "qty"))
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	in := []model.DataRecord{rec(map[string]interface{}{"name": "alice"})}

	out, _, err := Transform(context.Background(), in, "name", `upper(value)`, 1)
	require.NoError(t, err)

	assert.Equal(t, "ALICE", fieldOf(t, out[0], "name"))
	assert.Equal(t, "alice", fieldOf(t, in[0], "name"), "input record mutated")
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[0].Source, out[0].Source)
}

func TestTransformParallelPreservesOrder(t *testing.T) {
	var in []model.DataRecord
	for i := 0; i < 100; i++ {
		in = append(in, rec(map[string]interface{}{"n": i}))
	}

	out, perrs, err := Transform(context.Background(), in, "n", `value + 1`, 8)
	require.NoError(t, err)
	assert.Empty(t, perrs)
	require.Len(t, out, 100)
	for i, r := range out {
		assert.Equal(t, i+1, fieldOf(t, r, "n"))
	}
}

func TestTransformEvalErrorRecordsIssue(t *testing.T) {
	in := []model.DataRecord{rec(map[string]interface{}{"price": "abc"})}

	out, perrs, err := Transform(context.Background(), in, "price", `value * 2`, 1)
	require.NoError(t, err)
	require.Len(t, perrs, 1)
	assert.Equal(t, "transform_error", perrs[0].ErrorType)
	assert.Equal(t, in[0].ID, perrs[0].RecordID)
	// Record passes through unchanged.
	assert.Equal(t, "abc", fieldOf(t, out[0], "price"))
}

func TestTransformExpiredContextIsStageFatal(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"n": 1}),
		rec(map[string]interface{}{"n": 2}),
		rec(map[string]interface{}{"n": 3}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An interrupted stage must fail, never hand back a partial sequence
	// padded with zero-value records.
	for _, workers := range []int{1, 4} {
		out, perrs, err := Transform(ctx, in, "n", `value + 1`, workers)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Nil(t, out)
		assert.Empty(t, perrs)
	}
}

func TestSortAscendingNumeric(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"amount": 3}),
		rec(map[string]interface{}{"amount": 1}),
		rec(map[string]interface{}{"amount": 2}),
	}

	out := Sort(in, []string{"amount"}, true)
	require.Len(t, out, 3)
	assert.Equal(t, 1, fieldOf(t, out[0], "amount"))
	assert.Equal(t, 2, fieldOf(t, out[1], "amount"))
	assert.Equal(t, 3, fieldOf(t, out[2], "amount"))

	// Input order untouched.
	assert.Equal(t, 3, fieldOf(t, in[0], "amount"))
}

func TestSortDescendingAppliesToWholeKey(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"group": "a", "amount": 1}),
		rec(map[string]interface{}{"group": "b", "amount": 2}),
		rec(map[string]interface{}{"group": "a", "amount": 3}),
	}

	out := Sort(in, []string{"group", "amount"}, false)
	assert.Equal(t, "b", fieldOf(t, out[0], "group"))
	assert.Equal(t, 3, fieldOf(t, out[1], "amount"))
	assert.Equal(t, 1, fieldOf(t, out[2], "amount"))
}

func TestSortIsStable(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"k": 1, "tag": "first"}),
		rec(map[string]interface{}{"k": 1, "tag": "second"}),
		rec(map[string]interface{}{"k": 0, "tag": "third"}),
		rec(map[string]interface{}{"k": 1, "tag": "fourth"}),
	}

	out := Sort(in, []string{"k"}, true)
	assert.Equal(t, "third", fieldOf(t, out[0], "tag"))
	assert.Equal(t, "first", fieldOf(t, out[1], "tag"))
	assert.Equal(t, "second", fieldOf(t, out[2], "tag"))
	assert.Equal(t, "fourth", fieldOf(t, out[3], "tag"))
}

func TestSortMissingFieldRanksFirst(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"amount": 5}),
		rec(map[string]interface{}{}),
	}

	out := Sort(in, []string{"amount"}, true)
	_, present := out[0].Field("amount")
	assert.False(t, present)
}

func TestSortMixedTypesFallBackToStrings(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"v": "banana"}),
		rec(map[string]interface{}{"v": 10}),
		rec(map[string]interface{}{"v": "apple"}),
	}

	out := Sort(in, []string{"v"}, true)
	// "10" < "apple" < "banana" lexicographically.
	assert.Equal(t, 10, fieldOf(t, out[0], "v"))
	assert.Equal(t, "apple", fieldOf(t, out[1], "v"))
	assert.Equal(t, "banana", fieldOf(t, out[2], "v"))
}

func TestDeduplicateKeepsFirst(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"email": "a@x.com", "n": 1}),
		rec(map[string]interface{}{"email": "b@x.com", "n": 2}),
		rec(map[string]interface{}{"email": "a@x.com", "n": 3}),
	}

	out := Deduplicate(in, []string{"email"})
	require.Len(t, out, 2)
	assert.Equal(t, 1, fieldOf(t, out[0], "n"))
	assert.Equal(t, 2, fieldOf(t, out[1], "n"))
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"a": 1, "b": "x"}),
		rec(map[string]interface{}{"a": 1, "b": "y"}),
		rec(map[string]interface{}{"a": 1, "b": "x"}),
		rec(map[string]interface{}{"a": 2}),
	}

	once := Deduplicate(in, []string{"a", "b"})
	twice := Deduplicate(once, []string{"a", "b"})
	assert.Equal(t, once, twice)
}

func TestDeduplicateDistinguishesMissingFromEmpty(t *testing.T) {
	in := []model.DataRecord{
		rec(map[string]interface{}{"a": ""}),
		rec(map[string]interface{}{}),
	}
	out := Deduplicate(in, []string{"a"})
	assert.Len(t, out, 2)
}

type fakeLookup map[string][]model.DataRecord

func (f fakeLookup) Get(source string) ([]model.DataRecord, bool) {
	records, ok := f[source]
	return records, ok
}

func TestJoinLeftOuter(t *testing.T) {
	customers := []model.DataRecord{
		rec(map[string]interface{}{"customer_id": 1, "name": "alice"}),
		rec(map[string]interface{}{"customer_id": 1, "name": "shadowed"}), // first match wins
		rec(map[string]interface{}{"customer_id": 2, "name": "bob"}),
	}
	orders := []model.DataRecord{
		rec(map[string]interface{}{"customer_id": 1, "amount": 10}),
		rec(map[string]interface{}{"customer_id": 3, "amount": 20}),
		rec(map[string]interface{}{"amount": 30}), // no join key
	}

	out, perrs, err := Join(orders, "customers", "customer_id", fakeLookup{"customers": customers})
	require.NoError(t, err)
	assert.Empty(t, perrs)
	require.Len(t, out, 3)

	assert.Equal(t, "alice", fieldOf(t, out[0], "name"))
	assert.Equal(t, 10, fieldOf(t, out[0], "amount"))

	_, hasName := out[1].Field("name")
	assert.False(t, hasName, "unmatched record must pass through unmerged")
	_, hasName = out[2].Field("name")
	assert.False(t, hasName)

	// Left records are not mutated in place.
	_, hasName = orders[0].Field("name")
	assert.False(t, hasName)
}

func TestJoinNeverOverwritesLeftFields(t *testing.T) {
	right := []model.DataRecord{rec(map[string]interface{}{"id": 1, "status": "right"})}
	left := []model.DataRecord{rec(map[string]interface{}{"id": 1, "status": "left"})}

	out, _, err := Join(left, "right", "id", fakeLookup{"right": right})
	require.NoError(t, err)
	assert.Equal(t, "left", fieldOf(t, out[0], "status"))
}

func TestJoinUnknownSourceFails(t *testing.T) {
	_, _, err := Join(nil, "missing", "id", fakeLookup{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestApplyDispatch(t *testing.T) {
	in := []model.DataRecord{rec(map[string]interface{}{"amount": 2})}

	out, perrs, err := Apply(context.Background(), model.Operation{Type: model.OpFilter, Condition: "true"}, in, fakeLookup{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, perrs)
	assert.Len(t, out, 1)

	_, _, err = Apply(context.Background(), model.Operation{Type: "explode"}, in, fakeLookup{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrParse))
}
