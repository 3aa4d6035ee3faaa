package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/repository"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// Service owns the appointment store. Creation always re-checks conflicts
// against the database, the authoritative snapshot; slot-level filtering
// upstream is advisory only.
type Service struct {
	repo     repository.AppointmentRepository
	services repository.ServiceRepository
	logger   *zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, services repository.ServiceRepository, logger *zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		services: services,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, apt *model.Appointment) error {
	if err := s.validate(apt); err != nil {
		return err
	}

	hasConflict, err := s.repo.CheckConflict(ctx, apt.DoctorID, apt.Date, apt.StartTime, apt.EndTime, nil)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if hasConflict {
		return apperrors.SlotConflict("slot no longer available")
	}

	apt.ID = uuid.New()
	if apt.Status == "" {
		apt.Status = model.AppointmentStatusPending
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", apt.ID.String()).
		Str("doctor_id", apt.DoctorID.String()).
		Str("date", apt.Date.Format(model.DateOnly)).
		Str("start", apt.StartTime.String()).
		Msg("appointment created")
	return nil
}

// CreateFromRequest resolves the service duration and computes the end time
// before persisting. Used by the direct REST surface; the wizard computes
// its own interval.
func (s *Service) CreateFromRequest(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	service, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if service.DurationMinutes <= 0 {
		return nil, apperrors.Validation("service has no usable duration")
	}

	date, err := time.Parse(model.DateOnly, req.Date)
	if err != nil {
		return nil, apperrors.Validationf("invalid date %q", req.Date)
	}

	apt := &model.Appointment{
		DoctorID:     req.DoctorID,
		ServiceID:    req.ServiceID,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.StartTime.AddMinutes(service.DurationMinutes),
		Status:       model.AppointmentStatusPending,
		Notes:        req.Notes,
		PatientEmail: req.PatientEmail,
	}
	if err := s.Create(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status != model.AppointmentStatusPending {
		return apperrors.Validationf("only pending appointments can be confirmed, status is %s", apt.Status)
	}
	apt.Status = model.AppointmentStatusConfirmed
	return s.repo.Update(ctx, apt)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return apperrors.Validation("appointment is already cancelled")
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return apperrors.Validation("cannot cancel a completed appointment")
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason
	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", id.String()).
		Str("reason", reason).
		Msg("appointment cancelled")
	return nil
}

// ListForDoctorDate is the ledger read the booking core uses.
func (s *Service) ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	return s.repo.ListForDoctorDate(ctx, doctorID, date)
}

func (s *Service) validate(apt *model.Appointment) error {
	if apt.DoctorID == uuid.Nil {
		return apperrors.Validation("doctor ID is required")
	}
	if apt.ServiceID == uuid.Nil {
		return apperrors.Validation("service ID is required")
	}
	if apt.Date.IsZero() {
		return apperrors.Validation("date is required")
	}
	if apt.EndTime <= apt.StartTime {
		return apperrors.Validation("appointment end must follow its start")
	}
	return nil
}
