package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/repository"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

const (
	scheduleCacheTTL     = 5 * time.Minute
	scheduleCacheCleanup = 10 * time.Minute
)

// Service answers duty questions from the weekly recurring schedule: is
// doctor D on duty on date X, and within what window.
type Service struct {
	repo   repository.ShiftRepository
	cache  *gocache.Cache
	logger *zerolog.Logger
}

func NewService(repo repository.ShiftRepository, logger *zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  gocache.New(scheduleCacheTTL, scheduleCacheCleanup),
		logger: logger,
	}
}

// FilterOptions controls duty filtering. The default is fail-closed: a
// doctor whose duty cannot be verified is treated as not on duty. FailOpen
// is an explicit opt-in for callers that must show every doctor even when
// the schedule is unavailable; such doctors get DefaultWindow.
type FilterOptions struct {
	FailOpen      bool
	DefaultWindow model.DutyWindow
}

func (s *Service) GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.ShiftDay, error) {
	key := doctorID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.ShiftDay), nil
	}

	days, err := s.repo.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift schedule: %w", err)
	}

	s.cache.Set(key, days, gocache.DefaultExpiration)
	return days, nil
}

// UpdateSchedule validates and replaces the doctor's weekly schedule.
func (s *Service) UpdateSchedule(ctx context.Context, doctorID uuid.UUID, inputs []*model.ShiftDayInput) ([]*model.ShiftDay, error) {
	if err := validateScheduleInputs(inputs); err != nil {
		return nil, err
	}

	days := make([]*model.ShiftDay, 0, len(inputs))
	for _, in := range inputs {
		days = append(days, &model.ShiftDay{
			DoctorID:   doctorID,
			DayOfWeek:  in.DayOfWeek,
			IsActive:   in.IsActive,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			BreakStart: in.BreakStart,
			BreakEnd:   in.BreakEnd,
		})
	}

	if err := s.repo.ReplaceSchedule(ctx, doctorID, days); err != nil {
		return nil, fmt.Errorf("failed to replace shift schedule: %w", err)
	}

	s.cache.Delete(doctorID.String())
	return days, nil
}

// DutyWindow maps the date's weekday onto the doctor's ShiftDay. A missing
// or inactive record means off duty: (nil, nil).
func (s *Service) DutyWindow(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DutyWindow, error) {
	schedule, err := s.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	weekday := date.Weekday()
	for _, day := range schedule {
		if day.DayOfWeek != weekday {
			continue
		}
		if !day.IsActive {
			return nil, nil
		}
		return &model.DutyWindow{
			Start:      day.StartTime,
			End:        day.EndTime,
			BreakStart: day.BreakStart,
			BreakEnd:   day.BreakEnd,
		}, nil
	}
	return nil, nil
}

// FilterOnDuty returns only doctors holding a duty window on the date, each
// annotated with that window. Doctors whose schedule cannot be read are
// excluded (fail-closed) unless opts.FailOpen is set.
func (s *Service) FilterOnDuty(ctx context.Context, doctors []*model.Doctor, date time.Time, opts *FilterOptions) ([]model.DoctorOnDuty, error) {
	if opts == nil {
		opts = &FilterOptions{}
	}

	onDuty := make([]model.DoctorOnDuty, 0, len(doctors))
	for _, doctor := range doctors {
		if !doctor.Active {
			continue
		}

		window, err := s.DutyWindow(ctx, doctor.ID, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if opts.FailOpen {
				s.logger.Warn().
					Err(err).
					Str("doctor_id", doctor.ID.String()).
					Msg("duty lookup failed, including doctor with default window")
				onDuty = append(onDuty, model.DoctorOnDuty{Doctor: *doctor, Window: opts.DefaultWindow})
				continue
			}
			s.logger.Warn().
				Err(err).
				Str("doctor_id", doctor.ID.String()).
				Msg("duty lookup failed, excluding doctor")
			continue
		}
		if window == nil {
			continue
		}

		onDuty = append(onDuty, model.DoctorOnDuty{Doctor: *doctor, Window: *window})
	}
	return onDuty, nil
}

func validateScheduleInputs(inputs []*model.ShiftDayInput) error {
	seen := make(map[time.Weekday]bool, len(inputs))
	for _, in := range inputs {
		if in.DayOfWeek < time.Sunday || in.DayOfWeek > time.Saturday {
			return apperrors.Validationf("invalid day of week %d", in.DayOfWeek)
		}
		if seen[in.DayOfWeek] {
			return apperrors.Validationf("duplicate shift day %s", in.DayOfWeek)
		}
		seen[in.DayOfWeek] = true

		if !in.IsActive {
			continue
		}
		if !in.StartTime.Valid() || !in.EndTime.Valid() {
			return apperrors.Validationf("shift times for %s out of range", in.DayOfWeek)
		}
		if in.StartTime >= in.EndTime {
			return apperrors.Validationf("shift start must precede end on %s", in.DayOfWeek)
		}
		if (in.BreakStart == nil) != (in.BreakEnd == nil) {
			return apperrors.Validationf("break on %s must have both start and end", in.DayOfWeek)
		}
		if in.BreakStart != nil {
			if *in.BreakStart >= *in.BreakEnd {
				return apperrors.Validationf("break start must precede break end on %s", in.DayOfWeek)
			}
			if *in.BreakStart < in.StartTime || *in.BreakEnd > in.EndTime {
				return apperrors.Validationf("break on %s must fall inside the shift window", in.DayOfWeek)
			}
		}
	}
	return nil
}
