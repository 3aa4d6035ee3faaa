package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// DoctorRepository reads the clinic roster. The booking core never
	// mutates doctors.
	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		ListActive(ctx context.Context) ([]*model.Doctor, error)
	}

	// ShiftRepository stores the weekly recurring schedule, one row per
	// doctor per weekday.
	ShiftRepository interface {
		GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.ShiftDay, error)
		ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, days []*model.ShiftDay) error
	}

	ServiceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		List(ctx context.Context) ([]*model.Service, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListAll(ctx context.Context) ([]*model.Appointment, error)
		ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		CheckConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end model.TimeOfDay, excludeID *uuid.UUID) (bool, error)
	}
)
