package model

// TimeSlot is a transient, derived value: regenerated on every query, never
// persisted. Only the chosen start time survives into the booking draft.
type TimeSlot struct {
	Start           TimeOfDay `json:"start"`
	End             TimeOfDay `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Available       bool      `json:"available"`
}
