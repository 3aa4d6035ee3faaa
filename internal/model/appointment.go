package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Blocking reports whether an appointment in this status occupies its
// interval for conflict purposes. Cancelled and completed bookings free
// their slot.
func (s AppointmentStatus) Blocking() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

type Appointment struct {
	Base
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ServiceID    uuid.UUID         `db:"service_id" json:"service_id"`
	Date         time.Time         `db:"date" json:"date"`
	StartTime    TimeOfDay         `db:"start_time" json:"start_time"`
	EndTime      TimeOfDay         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	PatientEmail string            `db:"patient_email" json:"patient_email,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// Overlaps reports whether the appointment's [start, end) intersects the
// given interval on the same day.
func (a *Appointment) Overlaps(start, end TimeOfDay) bool {
	return Overlaps(a.StartTime, a.EndTime, start, end)
}

type CreateAppointmentRequest struct {
	DoctorID     uuid.UUID `json:"doctor_id" validate:"required"`
	ServiceID    uuid.UUID `json:"service_id" validate:"required"`
	Date         string    `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    TimeOfDay `json:"start_time"`
	Notes        string    `json:"notes" validate:"max=500"`
	PatientEmail string    `json:"patient_email" validate:"omitempty,email"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	ServiceID uuid.UUID
	Status    AppointmentStatus
	DateFrom  time.Time
	DateTo    time.Time
}
