package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopewell-clinic/booking-api/internal/model"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

func tod(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	parsed, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return parsed
}

func TestConflictGuard(t *testing.T) {
	guard := ConflictGuard{}
	doctorID := uuid.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	existing := func(status model.AppointmentStatus, start, end string) []*model.Appointment {
		return []*model.Appointment{{
			DoctorID:  doctorID,
			Date:      date,
			StartTime: tod(t, start),
			EndTime:   tod(t, end),
			Status:    status,
		}}
	}

	t.Run("overlapping pending blocks", func(t *testing.T) {
		err := guard.Validate(doctorID, date, tod(t, "10:00"), tod(t, "10:30"), existing(model.AppointmentStatusPending, "10:00", "10:30"))
		assert.True(t, apperrors.IsSlotConflict(err))
	})

	t.Run("overlapping confirmed blocks", func(t *testing.T) {
		err := guard.Validate(doctorID, date, tod(t, "10:15"), tod(t, "10:45"), existing(model.AppointmentStatusConfirmed, "10:00", "10:30"))
		assert.True(t, apperrors.IsSlotConflict(err))
	})

	t.Run("cancelled frees the slot", func(t *testing.T) {
		err := guard.Validate(doctorID, date, tod(t, "10:00"), tod(t, "10:30"), existing(model.AppointmentStatusCancelled, "10:00", "10:30"))
		assert.NoError(t, err)
	})

	t.Run("completed frees the slot", func(t *testing.T) {
		err := guard.Validate(doctorID, date, tod(t, "10:00"), tod(t, "10:30"), existing(model.AppointmentStatusCompleted, "10:00", "10:30"))
		assert.NoError(t, err)
	})

	t.Run("back to back is not a conflict", func(t *testing.T) {
		err := guard.Validate(doctorID, date, tod(t, "10:30"), tod(t, "11:00"), existing(model.AppointmentStatusPending, "10:00", "10:30"))
		assert.NoError(t, err)
	})

	t.Run("other doctor does not block", func(t *testing.T) {
		other := existing(model.AppointmentStatusPending, "10:00", "10:30")
		other[0].DoctorID = uuid.New()
		err := guard.Validate(doctorID, date, tod(t, "10:00"), tod(t, "10:30"), other)
		assert.NoError(t, err)
	})

	t.Run("other date does not block", func(t *testing.T) {
		other := existing(model.AppointmentStatusPending, "10:00", "10:30")
		other[0].Date = date.AddDate(0, 0, 1)
		err := guard.Validate(doctorID, date, tod(t, "10:00"), tod(t, "10:30"), other)
		assert.NoError(t, err)
	})
}
