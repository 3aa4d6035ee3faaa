package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/pkg/fallback"
)

// State is a wizard step. Transitions are strictly guarded: a step can only
// be entered once every field it depends on is present.
type State string

const (
	StateDateSelection    State = "date_selection"
	StateDoctorSelection  State = "doctor_selection"
	StateTimeSlot         State = "time_slot"
	StateServiceSelection State = "service_selection"
	StateNotes            State = "notes"
	StateCompleted        State = "completed"
)

var statePredecessor = map[State]State{
	StateDoctorSelection:  StateDateSelection,
	StateTimeSlot:         StateDoctorSelection,
	StateServiceSelection: StateTimeSlot,
	StateNotes:            StateServiceSelection,
}

// Draft is the working state of the wizard: created empty when the workflow
// opens, mutated step by step, destroyed on cancel or successful submit.
type Draft struct {
	Date         *time.Time       `json:"date,omitempty"`
	DoctorID     *uuid.UUID       `json:"doctor_id,omitempty"`
	SlotStart    *model.TimeOfDay `json:"slot_start,omitempty"`
	ServiceID    *uuid.UUID       `json:"service_id,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	PatientEmail string           `json:"patient_email,omitempty"`
}

// Session is one open booking wizard. Single-writer by construction: steps
// are sequential and the client holds exactly one session at a time.
type Session struct {
	ID             uuid.UUID            `json:"id"`
	State          State                `json:"state"`
	Draft          Draft                `json:"draft"`
	OnDuty         []model.DoctorOnDuty `json:"on_duty,omitempty"`
	AvailableSlots []model.TimeSlot     `json:"available_slots,omitempty"`
	// DataTier records which source produced the current availability data
	// so degraded (approximate) data is distinguishable downstream.
	DataTier  fallback.Tier `json:"data_tier,omitempty"`
	Degraded  bool          `json:"degraded"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		State:     StateDateSelection,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) markAvailability(tier fallback.Tier) {
	s.DataTier = tier
	s.Degraded = tier.Degraded()
}
