package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// ConflictGuard is the final, authoritative check before a booking is
// committed. Slot generation already filtered against the ledger once, but
// the ledger may have changed between browsing and submitting, so the guard
// re-runs on a fresh snapshot at submission time. It is the only defense
// against two sessions racing for the same slot; a rejection here is an
// expected, recoverable outcome.
type ConflictGuard struct{}

// Validate rejects the draft interval when any pending or confirmed
// appointment for the same doctor and date overlaps it. Cancelled and
// completed appointments do not block.
func (ConflictGuard) Validate(doctorID uuid.UUID, date time.Time, start, end model.TimeOfDay, existing []*model.Appointment) error {
	for _, apt := range existing {
		if apt == nil || apt.DoctorID != doctorID {
			continue
		}
		if !sameDate(apt.Date, date) {
			continue
		}
		if !apt.Status.Blocking() {
			continue
		}
		if apt.Overlaps(start, end) {
			return apperrors.SlotConflict("slot no longer available")
		}
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
