package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
)

// DutySource resolves a doctor's working window for a date.
type DutySource interface {
	DutyWindow(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DutyWindow, error)
}

// LedgerReader reads the existing bookings for a doctor and date.
type LedgerReader interface {
	ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
}

// Service composes the duty window, the appointment ledger and the generator
// into the availability query the booking flow consumes.
type Service struct {
	duty   DutySource
	ledger LedgerReader
	gen    *Generator
}

func NewService(duty DutySource, ledger LedgerReader, gen *Generator) *Service {
	return &Service{duty: duty, ledger: ledger, gen: gen}
}

func (s *Service) Generator() *Generator {
	return s.gen
}

// AvailableSlots returns the bookable slots for one doctor, date and service
// duration. An off-duty doctor yields an empty list, not an error.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, durationMinutes int) ([]model.TimeSlot, error) {
	window, err := s.duty.DutyWindow(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve duty window: %w", err)
	}
	if window == nil {
		return []model.TimeSlot{}, nil
	}

	booked, err := s.ledger.ListForDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read appointment ledger: %w", err)
	}

	return s.gen.Generate(window, durationMinutes, booked), nil
}

// SlotFits re-checks a single chosen start against the live window and
// ledger. The booking flow calls this when the service (and so the true
// duration) becomes known after the slot was picked, and once more before
// submission.
func (s *Service) SlotFits(ctx context.Context, doctorID uuid.UUID, date time.Time, start model.TimeOfDay, durationMinutes int) (bool, error) {
	window, err := s.duty.DutyWindow(ctx, doctorID, date)
	if err != nil {
		return false, fmt.Errorf("failed to resolve duty window: %w", err)
	}
	if window == nil {
		return false, nil
	}

	booked, err := s.ledger.ListForDoctorDate(ctx, doctorID, date)
	if err != nil {
		return false, fmt.Errorf("failed to read appointment ledger: %w", err)
	}

	return Fits(window, start, durationMinutes, booked), nil
}
