package pipeline

import (
	"sort"

	"go-data-processor/internal/model"
)

// Sort orders records by the listed fields, primary first with later fields
// breaking ties. Numeric values compare as numbers, everything else compares
// lexicographically on its string form, and a missing field sorts as the
// minimal value. The single ascending flag applies to the whole key. The
// sort is stable: equal keys keep their original relative order.
func Sort(in []model.DataRecord, fields []string, ascending bool) []model.DataRecord {
	out := make([]model.DataRecord, len(in))
	copy(out, in)

	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareRecords(out[i], out[j], fields)
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return out
}

func compareRecords(a, b model.DataRecord, fields []string) int {
	for _, field := range fields {
		av, aok := a.Field(field)
		bv, bok := b.Field(field)
		if cmp := compareValues(av, aok, bv, bok); cmp != 0 {
			return cmp
		}
	}
	return 0
}

// compareValues orders two field values; absent values rank below every
// present value.
func compareValues(a interface{}, aok bool, b interface{}, bok bool) int {
	if !aok || !bok {
		switch {
		case aok == bok:
			return 0
		case !aok:
			return -1
		default:
			return 1
		}
	}

	an, aNum := model.Numeric(a)
	bn, bNum := model.Numeric(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	as, bs := model.Stringify(a), model.Stringify(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
