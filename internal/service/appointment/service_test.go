package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopewell-clinic/booking-api/internal/model"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	byID     map[uuid.UUID]*model.Appointment
	conflict bool
	created  []*model.Appointment
	updated  []*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.created = append(r.created, apt)
	r.byID[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.updated = append(r.updated, apt)
	r.byID[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0, len(r.byID))
	for _, apt := range r.byID {
		out = append(out, apt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return r.List(ctx, nil)
}

func (r *fakeAppointmentRepo) ListForDoctorDate(context.Context, uuid.UUID, time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) CheckConflict(context.Context, uuid.UUID, time.Time, model.TimeOfDay, model.TimeOfDay, *uuid.UUID) (bool, error) {
	return r.conflict, nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (r *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, apperrors.NotFound("service", nil)
	}
	return s, nil
}

func (r *fakeServiceRepo) List(context.Context) ([]*model.Service, error) {
	out := make([]*model.Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, nil
}

func newTestService(repo *fakeAppointmentRepo, services *fakeServiceRepo) *Service {
	nop := zerolog.Nop()
	return NewService(repo, services, &nop)
}

func validAppointment() *model.Appointment {
	return &model.Appointment{
		DoctorID:  uuid.New(),
		ServiceID: uuid.New(),
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: model.TimeOfDay(10 * 60),
		EndTime:   model.TimeOfDay(11 * 60),
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakeServiceRepo{})

	apt := validAppointment()
	require.NoError(t, svc.Create(context.Background(), apt))

	require.Len(t, repo.created, 1)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
}

func TestCreateConflict(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.conflict = true
	svc := newTestService(repo, &fakeServiceRepo{})

	err := svc.Create(context.Background(), validAppointment())
	assert.True(t, apperrors.IsSlotConflict(err))
	assert.Empty(t, repo.created)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeAppointmentRepo(), &fakeServiceRepo{})

	apt := validAppointment()
	apt.DoctorID = uuid.Nil
	assert.True(t, apperrors.IsValidation(svc.Create(context.Background(), apt)))

	apt = validAppointment()
	apt.EndTime = apt.StartTime
	assert.True(t, apperrors.IsValidation(svc.Create(context.Background(), apt)))
}

func TestCreateFromRequest(t *testing.T) {
	repo := newFakeAppointmentRepo()
	serviceID := uuid.New()
	services := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{
		serviceID: {Base: model.Base{ID: serviceID}, Name: "Consultation", DurationMinutes: 45, Active: true},
	}}
	svc := newTestService(repo, services)

	apt, err := svc.CreateFromRequest(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  uuid.New(),
		ServiceID: serviceID,
		Date:      "2026-03-02",
		StartTime: model.TimeOfDay(10 * 60),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay(10*60+45), apt.EndTime, "end time derives from the service duration")

	_, err = svc.CreateFromRequest(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  uuid.New(),
		ServiceID: serviceID,
		Date:      "02/03/2026",
		StartTime: model.TimeOfDay(10 * 60),
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateFromRequest(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  uuid.New(),
		ServiceID: uuid.New(),
		Date:      "2026-03-02",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConfirm(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakeServiceRepo{})

	apt := validAppointment()
	require.NoError(t, svc.Create(context.Background(), apt))

	require.NoError(t, svc.Confirm(context.Background(), apt.ID))
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)

	err := svc.Confirm(context.Background(), apt.ID)
	assert.True(t, apperrors.IsValidation(err), "a confirmed appointment cannot be confirmed again")
}

func TestCancel(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakeServiceRepo{})

	apt := validAppointment()
	require.NoError(t, svc.Create(context.Background(), apt))

	require.NoError(t, svc.Cancel(context.Background(), apt.ID, "patient request"))
	assert.Equal(t, model.AppointmentStatusCancelled, apt.Status)
	require.NotNil(t, apt.CancelReason)
	assert.Equal(t, "patient request", *apt.CancelReason)

	err := svc.Cancel(context.Background(), apt.ID, "again")
	assert.True(t, apperrors.IsValidation(err))

	apt.Status = model.AppointmentStatusCompleted
	err = svc.Cancel(context.Background(), apt.ID, "too late")
	assert.True(t, apperrors.IsValidation(err))
}
