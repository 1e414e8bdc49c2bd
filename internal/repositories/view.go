package repositories

import "github.com/desertthunder/shopx/internal/models"

// ViewModeKey is the client_state key holding the video list mode.
const ViewModeKey = "videos_view_mode"

// ViewPreference persists the video list [models.ViewMode].
type ViewPreference struct {
	state    *StateRepository
	fallback models.ViewMode
}

// NewViewPreference creates a [ViewPreference]. fallback is returned when nothing valid is stored.
func NewViewPreference(state *StateRepository, fallback models.ViewMode) *ViewPreference {
	if _, ok := models.ParseViewMode(string(fallback)); !ok {
		fallback = models.ViewCards
	}
	return &ViewPreference{state: state, fallback: fallback}
}

// Get returns the stored mode. Missing or unknown values yield the fallback.
func (v *ViewPreference) Get() (models.ViewMode, error) {
	raw, ok, err := v.state.Get(ViewModeKey)
	if err != nil {
		return v.fallback, err
	}
	if !ok {
		return v.fallback, nil
	}
	mode, known := models.ParseViewMode(raw)
	if !known {
		return v.fallback, nil
	}
	return mode, nil
}

// Set stores mode.
func (v *ViewPreference) Set(mode models.ViewMode) error {
	return v.state.Set(ViewModeKey, string(mode))
}
