// Package patch implements the reconciliation core used by the profile
// save pipeline: deep-merging partial updates into a previous record,
// pruning unintended empty values, and diffing down to a minimal patch.
package patch

import (
	"reflect"
	"strings"
)

// Options controls how BuildSafePatch treats empty arrays.
type Options struct {
	// AllowEmptyArrays lists field names permitted to carry an explicit
	// empty array in the resulting patch. Empty arrays on any other field
	// are treated as unintended defaults and dropped.
	AllowEmptyArrays []string
}

// DeepMerge merges source into target and returns a new record. Keys whose
// values are plain objects on both sides merge recursively; everything else
// (arrays included) is replaced wholesale by the incoming value. Neither
// input is mutated.
func DeepMerge(target, source map[string]any) map[string]any {
	if source == nil {
		return target
	}

	out := make(map[string]any, len(target)+len(source))
	for k, v := range target {
		out[k] = v
	}
	for k, v := range source {
		existing, existingIsMap := asRecord(out[k])
		incoming, incomingIsMap := asRecord(v)
		if existingIsMap && incomingIsMap {
			out[k] = DeepMerge(existing, incoming)
			continue
		}
		out[k] = v
	}

	return out
}

// PruneEmptyDeep removes whitespace-only strings and objects that are empty
// after recursive pruning. Arrays are pruned element-wise but an empty array
// itself survives; whether it belongs in a patch is the caller's decision.
// Explicit nulls pass through: null means "clear this field", not "absent".
func PruneEmptyDeep(value any) any {
	pruned, _ := pruneValue(value)
	return pruned
}

func pruneValue(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			if pruned, keep := pruneValue(elem); keep {
				out[k] = pruned
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []any:
		out := make([]any, 0, len(v))
		for _, elem := range v {
			if pruned, keep := pruneValue(elem); keep {
				out = append(out, pruned)
			}
		}
		return out, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		return v, true
	default:
		return value, true
	}
}

// BuildSafePatch computes the minimal intentional patch between prev and
// next. The candidate is deep-merged over prev first, so a form that only
// loaded part of a nested object cannot wipe the keys it never saw. The
// merged record is then pruned and diffed key-by-key against prev; only
// genuinely changed values survive. Absent keys are "untouched", never an
// instruction to clear; clearing a scalar requires an explicit null and
// clearing an array requires the field to be whitelisted in opts.
func BuildSafePatch(prev, next map[string]any, opts Options) map[string]any {
	merged := make(map[string]any, len(prev)+len(next))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range next {
		existing, existingIsMap := asRecord(prev[k])
		incoming, incomingIsMap := asRecord(v)
		if existingIsMap && incomingIsMap {
			merged[k] = DeepMerge(existing, incoming)
			continue
		}
		merged[k] = v
	}

	cleaned, _ := PruneEmptyDeep(merged).(map[string]any)

	allowEmpty := make(map[string]struct{}, len(opts.AllowEmptyArrays))
	for _, field := range opts.AllowEmptyArrays {
		allowEmpty[field] = struct{}{}
	}

	result := make(map[string]any)
	for k, cleanedValue := range cleaned {
		prevValue, hadPrev := prev[k]
		if hadPrev && Equal(prevValue, cleanedValue) {
			continue
		}
		if isEmptyArray(cleanedValue) {
			if _, ok := allowEmpty[k]; !ok {
				continue
			}
		}
		result[k] = cleanedValue
	}

	return result
}

// Equal reports structural equality between two JSON-shaped values. Map key
// order is irrelevant, slices compare element-wise, and numeric values
// compare by magnitude regardless of Go type (JSON decoding yields float64
// while domain code produces int64).
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if am, ok := asRecord(a); ok {
		bm, ok := asRecord(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, exists := bm[k]
			if !exists || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Slice || bv.Kind() == reflect.Slice {
		if av.Kind() != reflect.Slice || bv.Kind() != reflect.Slice {
			return false
		}
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !Equal(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}

	return a == b
}

func asRecord(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok && m != nil
}

func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isEmptyArray(value any) bool {
	if value == nil {
		return false
	}
	v := reflect.ValueOf(value)
	return v.Kind() == reflect.Slice && v.Len() == 0
}
