package profiles

const (
	fieldDanceRole  = "dance_role"
	fieldRitmos     = "ritmos"
	fieldZonas      = "zonas"
	fieldPremios    = "premios"
	fieldRespuestas = "respuestas"
	fieldRedes      = "redes"
	fieldFotos      = "fotos"
	fieldOnboarding = "onboarding_completed"
)

// Array fields allowed to be emptied explicitly. Everything else treats an
// empty array as an unintended default and drops it from the patch.
var allowedEmptyArrayFields = []string{fieldRitmos, fieldZonas, fieldPremios}

// Fields owned by other flows. The save pipeline strips them from every
// candidate unconditionally; this is an invariant, not caller discipline.
var forbiddenFields = []string{fieldFotos, fieldOnboarding}

// Fields the server owns outright.
var immutableFields = []string{"user_id", "created_at", "updated_at"}

var objectFields = map[string]struct{}{
	fieldRespuestas: {},
	fieldRedes:      {},
}

// MergeProfile combines a partial update with the current profile record.
// With no current record the update stands alone. Array fields follow
// provide-or-keep: an incoming array replaces the stored one entirely (even
// when empty), an absent one keeps it — never a union. The nested object
// fields merge shallow key-wise so keys edited by a different screen
// survive. Scalars take the incoming value when provided.
func MergeProfile(current, update map[string]any) map[string]any {
	cleaned := make(map[string]any, len(update))
	for k, v := range update {
		cleaned[k] = v
	}
	for _, k := range immutableFields {
		delete(cleaned, k)
	}

	if len(current) == 0 {
		return cleaned
	}

	out := make(map[string]any, len(current)+len(cleaned))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range cleaned {
		if _, isObject := objectFields[k]; isObject {
			incoming, incomingIsMap := v.(map[string]any)
			existing, existingIsMap := current[k].(map[string]any)
			if incomingIsMap && existingIsMap {
				out[k] = shallowMergeRecords(existing, incoming)
				continue
			}
		}
		out[k] = v
	}

	return out
}

func shallowMergeRecords(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func nestedRecord(value any) map[string]any {
	if m, ok := value.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}
