package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftDay is one weekday's recurring availability for a doctor. A doctor
// owns at most one ShiftDay per weekday. When IsActive, StartTime < EndTime;
// when a break is set, StartTime <= BreakStart < BreakEnd <= EndTime.
type ShiftDay struct {
	Base
	DoctorID   uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	DayOfWeek  time.Weekday `db:"day_of_week" json:"day_of_week"`
	IsActive   bool         `db:"is_active" json:"is_active"`
	StartTime  TimeOfDay    `db:"start_time" json:"start_time"`
	EndTime    TimeOfDay    `db:"end_time" json:"end_time"`
	BreakStart *TimeOfDay   `db:"break_start" json:"break_start,omitempty"`
	BreakEnd   *TimeOfDay   `db:"break_end" json:"break_end,omitempty"`
}

// HasBreak reports whether both break bounds are present.
func (s *ShiftDay) HasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil
}

// DutyWindow is the working interval a doctor holds on one concrete date,
// derived from the weekday's ShiftDay.
type DutyWindow struct {
	Start      TimeOfDay  `json:"start"`
	End        TimeOfDay  `json:"end"`
	BreakStart *TimeOfDay `json:"break_start,omitempty"`
	BreakEnd   *TimeOfDay `json:"break_end,omitempty"`
}

func (w DutyWindow) HasBreak() bool {
	return w.BreakStart != nil && w.BreakEnd != nil
}

// ShiftDayInput is the write shape for schedule updates.
type ShiftDayInput struct {
	DayOfWeek  time.Weekday `json:"day_of_week" validate:"min=0,max=6"`
	IsActive   bool         `json:"is_active"`
	StartTime  TimeOfDay    `json:"start_time"`
	EndTime    TimeOfDay    `json:"end_time"`
	BreakStart *TimeOfDay   `json:"break_start,omitempty"`
	BreakEnd   *TimeOfDay   `json:"break_end,omitempty"`
}
