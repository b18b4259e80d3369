package profiles

import "strings"

// The normalizers are pure and total: any input shape produces a usable
// output, never an error. They run on the candidate before merging so the
// diff only ever sees cleaned values.

// NormalizeSocialLinks trims every string handle; empty-after-trim becomes
// an explicit null. The whatsapp handle keeps digits only, preserving their
// order, so "+52 55 1234" stores as "52551234".
func NormalizeSocialLinks(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for key, value := range in {
		text, isString := value.(string)
		if !isString {
			out[key] = value
			continue
		}
		trimmed := strings.TrimSpace(text)
		if key == "whatsapp" {
			trimmed = digitsOnly(trimmed)
		}
		if trimmed == "" {
			out[key] = nil
			continue
		}
		out[key] = trimmed
	}
	return out
}

// NormalizeAnswers trims free-form answer strings, turning empty ones into
// explicit nulls. Non-string values pass through unchanged.
func NormalizeAnswers(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for key, value := range in {
		if text, isString := value.(string); isString {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				out[key] = nil
			} else {
				out[key] = trimmed
			}
			continue
		}
		out[key] = value
	}
	return out
}

// EnsureIDList coerces an arbitrary value into a list of ids. Non-list
// input collapses to an empty list; elements that do not read as positive
// numbers are dropped.
func EnsureIDList(value any) []int64 {
	switch v := value.(type) {
	case []int64:
		out := make([]int64, 0, len(v))
		for _, id := range v {
			if id > 0 {
				out = append(out, id)
			}
		}
		return out
	case []int:
		out := make([]int64, 0, len(v))
		for _, id := range v {
			if id > 0 {
				out = append(out, int64(id))
			}
		}
		return out
	case []float64:
		out := make([]int64, 0, len(v))
		for _, id := range v {
			if id > 0 {
				out = append(out, int64(id))
			}
		}
		return out
	case []any:
		out := make([]int64, 0, len(v))
		for _, elem := range v {
			if id, ok := toID(elem); ok {
				out = append(out, id)
			}
		}
		return out
	}
	return []int64{}
}

// CoerceEmptyToNulls is the shallow form of the empty-string rule, applied
// to flat form payloads before sending.
func CoerceEmptyToNulls(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for key, value := range in {
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			out[key] = nil
			continue
		}
		out[key] = value
	}
	return out
}

func ensureStringList(value any) []string {
	switch v := value.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			text, isString := elem.(string)
			if !isString {
				continue
			}
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return []string{}
}

func toID(value any) (int64, bool) {
	switch n := value.(type) {
	case float64:
		if n <= 0 || n != n {
			return 0, false
		}
		return int64(n), true
	case int:
		if n <= 0 {
			return 0, false
		}
		return int64(n), true
	case int64:
		if n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}
