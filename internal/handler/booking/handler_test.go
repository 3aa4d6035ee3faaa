package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/service/booking"
	"github.com/hopewell-clinic/booking-api/internal/service/shift"
	"github.com/hopewell-clinic/booking-api/internal/service/slot"
)

type stubUpstream struct {
	onDuty []model.DoctorOnDuty
	slots  []model.TimeSlot
}

func (s *stubUpstream) GetDoctorsOnDuty(context.Context, time.Time) ([]model.DoctorOnDuty, error) {
	return s.onDuty, nil
}

func (s *stubUpstream) GetAllDoctors(context.Context) ([]*model.Doctor, error) {
	return nil, nil
}

func (s *stubUpstream) GetAvailableSlots(context.Context, uuid.UUID, time.Time) ([]model.TimeSlot, error) {
	return s.slots, nil
}

func (s *stubUpstream) GetAllAppointments(context.Context) ([]*model.Appointment, error) {
	return nil, nil
}

type stubRoster struct{}

func (stubRoster) ListActive(context.Context) ([]*model.Doctor, error) {
	return nil, nil
}

type stubLedger struct {
	appointments []*model.Appointment
}

func (s *stubLedger) ListForDoctorDate(context.Context, uuid.UUID, time.Time) ([]*model.Appointment, error) {
	return s.appointments, nil
}

type stubDuty struct {
	windows map[uuid.UUID]*model.DutyWindow
}

func (s *stubDuty) DutyWindow(_ context.Context, doctorID uuid.UUID, _ time.Time) (*model.DutyWindow, error) {
	return s.windows[doctorID], nil
}

func (s *stubDuty) FilterOnDuty(_ context.Context, doctors []*model.Doctor, _ time.Time, _ *shift.FilterOptions) ([]model.DoctorOnDuty, error) {
	onDuty := make([]model.DoctorOnDuty, 0, len(doctors))
	for _, d := range doctors {
		if window := s.windows[d.ID]; window != nil {
			onDuty = append(onDuty, model.DoctorOnDuty{Doctor: *d, Window: *window})
		}
	}
	return onDuty, nil
}

type stubCatalog struct {
	services map[uuid.UUID]*model.Service
}

func (s *stubCatalog) GetService(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, fmt.Errorf("unknown service %s", id)
	}
	return svc, nil
}

type stubSubmitter struct {
	created []*model.Appointment
}

func (s *stubSubmitter) Create(_ context.Context, apt *model.Appointment) error {
	s.created = append(s.created, apt)
	return nil
}

type stubNotifier struct{}

func (stubNotifier) BookingConfirmed(context.Context, *model.Appointment) error {
	return nil
}

type handlerEnv struct {
	engine    *gin.Engine
	ledger    *stubLedger
	submit    *stubSubmitter
	doctorID  uuid.UUID
	serviceID uuid.UUID
	date      time.Time
}

func htod(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	parsed, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return parsed
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctor := model.Doctor{Base: model.Base{ID: uuid.New()}, Name: "Dr. Chen", Active: true}
	window := &model.DutyWindow{Start: htod(t, "09:00"), End: htod(t, "17:00")}
	serviceID := uuid.New()

	grid := make([]model.TimeSlot, 0, 4)
	for _, s := range []string{"09:00", "09:30", "10:00", "10:30"} {
		start := htod(t, s)
		grid = append(grid, model.TimeSlot{
			Start: start, End: start.AddMinutes(30), DurationMinutes: 30, Available: true,
		})
	}

	upstream := &stubUpstream{
		onDuty: []model.DoctorOnDuty{{Doctor: doctor, Window: *window}},
		slots:  grid,
	}
	duty := &stubDuty{windows: map[uuid.UUID]*model.DutyWindow{doctor.ID: window}}
	ledger := &stubLedger{}
	catalog := &stubCatalog{services: map[uuid.UUID]*model.Service{
		serviceID: {Base: model.Base{ID: serviceID}, Name: "Consultation", DurationMinutes: 60, Active: true},
	}}
	submit := &stubSubmitter{}

	nop := zerolog.Nop()
	gen := slot.NewGenerator(30, &nop, nil)
	slots := slot.NewService(duty, ledger, gen)

	workflow := booking.NewWorkflow(
		upstream, stubRoster{}, ledger, duty, slots, catalog,
		submit, stubNotifier{}, booking.NewMemoryStore(time.Hour),
		booking.Config{Granularity: 30, NotesMaxLength: 500, FetchTimeout: time.Second},
		&nop, nil,
	)

	engine := gin.New()
	NewHandler(workflow).RegisterRoutes(engine.Group("/api/v1"))

	// Tomorrow, normalized to the date-only wire format.
	date, err := time.Parse(model.DateOnly, time.Now().AddDate(0, 0, 1).Format(model.DateOnly))
	require.NoError(t, err)

	return &handlerEnv{
		engine:    engine,
		ledger:    ledger,
		submit:    submit,
		doctorID:  doctor.ID,
		serviceID: serviceID,
		date:      date,
	}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

type sessionEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID             uuid.UUID        `json:"id"`
		State          booking.State    `json:"state"`
		AvailableSlots []model.TimeSlot `json:"available_slots"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionEnvelope {
	t.Helper()
	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

// advance drives the wizard through the HTTP surface up to the notes step
// and returns the session ID.
func (e *handlerEnv) advance(t *testing.T) uuid.UUID {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeSession(t, rec).Data.ID

	base := fmt.Sprintf("/api/v1/bookings/%s", id)
	steps := []struct {
		path string
		body any
	}{
		{base + "/date", gin.H{"date": e.date.Format(model.DateOnly)}},
		{base + "/doctor", gin.H{"doctor_id": e.doctorID}},
		{base + "/slot", gin.H{"start": "10:00"}},
		{base + "/service", gin.H{"service_id": e.serviceID}},
		{base + "/notes", gin.H{"notes": "first visit"}},
	}
	for _, step := range steps {
		rec := e.do(t, http.MethodPost, step.path, step.body)
		require.Equal(t, http.StatusOK, rec.Code, "step %s: %s", step.path, rec.Body.String())
	}
	return id
}

func TestHandlerWizardFlow(t *testing.T) {
	e := newHandlerEnv(t)
	id := e.advance(t)

	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/submit", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeSession(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, booking.StateCompleted, envelope.Data.State)

	require.Len(t, e.submit.created, 1)
	apt := e.submit.created[0]
	assert.Equal(t, e.doctorID, apt.DoctorID)
	assert.Equal(t, htod(t, "10:00"), apt.StartTime)
	assert.Equal(t, htod(t, "11:00"), apt.EndTime)
}

func TestHandlerSubmitConflictKeepsSession(t *testing.T) {
	e := newHandlerEnv(t)
	id := e.advance(t)

	// Another booking took the interval between listing and submission.
	e.ledger.appointments = []*model.Appointment{{
		DoctorID:  e.doctorID,
		Date:      e.date,
		StartTime: htod(t, "10:00"),
		EndTime:   htod(t, "11:00"),
		Status:    model.AppointmentStatusPending,
	}}

	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/submit", id), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	envelope := decodeSession(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "slot_conflict", envelope.Error.Code)
	assert.Equal(t, booking.StateNotes, envelope.Data.State, "the draft survives a conflicted submit")
	assert.Empty(t, e.submit.created)
}

func TestHandlerStepGuardReturnsSession(t *testing.T) {
	e := newHandlerEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeSession(t, rec).Data.ID

	// A doctor before a date violates the step order.
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/doctor", id), gin.H{"doctor_id": e.doctorID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeSession(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "validation", envelope.Error.Code)
	assert.Equal(t, booking.StateDateSelection, envelope.Data.State)
}

func TestHandlerRejectsMalformedSessionID(t *testing.T) {
	e := newHandlerEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRejectsMalformedDate(t *testing.T) {
	e := newHandlerEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeSession(t, rec).Data.ID

	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/date", id), gin.H{"date": "31-12-2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
