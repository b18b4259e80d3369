package dto

// ProfileSaveResponse reports what the save pipeline actually did.
// Patch and UpdatedAt are empty when NoChange is set.
type ProfileSaveResponse struct {
	NoChange     bool           `json:"no_change"`
	Patch        map[string]any `json:"patch,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
	UsedFallback bool           `json:"used_fallback"`
}
