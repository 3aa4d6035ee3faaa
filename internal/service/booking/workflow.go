package booking

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/service/shift"
	"github.com/hopewell-clinic/booking-api/internal/service/slot"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
	"github.com/hopewell-clinic/booking-api/pkg/fallback"
	"github.com/hopewell-clinic/booking-api/pkg/metrics"
)

// Upstream is the scheduling service the workflow prefers for availability
// data. Each operation has a coarser counterpart used as the fallback tier.
type Upstream interface {
	GetDoctorsOnDuty(ctx context.Context, date time.Time) ([]model.DoctorOnDuty, error)
	GetAllDoctors(ctx context.Context) ([]*model.Doctor, error)
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error)
	GetAllAppointments(ctx context.Context) ([]*model.Appointment, error)
}

// Roster reads the local clinic roster, the last-resort doctor source.
type Roster interface {
	ListActive(ctx context.Context) ([]*model.Doctor, error)
}

// Ledger reads existing bookings for the submission-time conflict check.
type Ledger interface {
	ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
}

// CatalogReader resolves booking services (reference data).
type CatalogReader interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

// Submitter persists the finished booking.
type Submitter interface {
	Create(ctx context.Context, appointment *model.Appointment) error
}

// Notifier delivers the booking confirmation. Failures are logged, never
// fatal to the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, appointment *model.Appointment) error
}

// DutyFilter is the shift calendar surface the workflow needs.
type DutyFilter interface {
	DutyWindow(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DutyWindow, error)
	FilterOnDuty(ctx context.Context, doctors []*model.Doctor, date time.Time, opts *shift.FilterOptions) ([]model.DoctorOnDuty, error)
}

// Config carries the workflow knobs.
type Config struct {
	Granularity    int
	NotesMaxLength int
	// FetchTimeout bounds each data source individually, so a hung
	// primary cannot starve the tiers behind it.
	FetchTimeout time.Duration
	// DefaultWindow is the synthesized duty window used when every real
	// data source has failed.
	DefaultWindow model.DutyWindow
}

// Workflow drives the booking wizard: date, doctor, time, service, notes,
// submit. One draft per session, strictly sequential steps, guarded
// transitions. Availability fetches run through tiered fallback so an
// upstream outage degrades the data instead of stalling the wizard.
type Workflow struct {
	upstream Upstream
	roster   Roster
	ledger   Ledger
	duty     DutyFilter
	slots    *slot.Service
	catalog  CatalogReader
	submit   Submitter
	notifier Notifier
	store    SessionStore
	guard    ConflictGuard
	cfg      Config
	logger   *zerolog.Logger
	metrics  *metrics.Metrics
}

func NewWorkflow(
	upstream Upstream,
	roster Roster,
	ledger Ledger,
	duty DutyFilter,
	slots *slot.Service,
	catalog CatalogReader,
	submit Submitter,
	notifier Notifier,
	store SessionStore,
	cfg Config,
	logger *zerolog.Logger,
	m *metrics.Metrics,
) *Workflow {
	if cfg.Granularity <= 0 {
		cfg.Granularity = 30
	}
	if cfg.NotesMaxLength <= 0 {
		cfg.NotesMaxLength = 500
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.DefaultWindow.End <= cfg.DefaultWindow.Start {
		start, _ := model.ParseTimeOfDay("09:00")
		end, _ := model.ParseTimeOfDay("17:00")
		cfg.DefaultWindow = model.DutyWindow{Start: start, End: end}
	}
	return &Workflow{
		upstream: upstream,
		roster:   roster,
		ledger:   ledger,
		duty:     duty,
		slots:    slots,
		catalog:  catalog,
		submit:   submit,
		notifier: notifier,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
	}
}

// Open starts a new wizard session with an empty draft.
func (w *Workflow) Open(ctx context.Context, patientEmail string) (*Session, error) {
	session := newSession()
	session.Draft.PatientEmail = patientEmail
	if err := w.store.Save(ctx, session); err != nil {
		return nil, err
	}
	if w.metrics != nil {
		w.metrics.ActiveDrafts.Inc()
	}
	return session, nil
}

// Get returns the current session state for the surrounding application.
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return w.store.Get(ctx, id)
}

// SelectDate records the date and loads the on-duty doctors for it. A new
// date invalidates any chosen doctor and slot; they are date-dependent.
func (w *Workflow) SelectDate(ctx context.Context, id uuid.UUID, date time.Time) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateDateSelection {
		return session, apperrors.Validationf("cannot select a date in step %s", session.State)
	}
	if beforeToday(date) {
		return session, apperrors.Validation("date cannot be in the past")
	}

	day := truncateToDate(date)
	session.Draft.Date = &day
	session.Draft.DoctorID = nil
	session.Draft.SlotStart = nil
	session.AvailableSlots = nil

	result, err := w.fetchOnDutyDoctors(ctx, day)
	if err != nil {
		return session, err
	}
	session.OnDuty = result.Data
	session.markAvailability(result.Tier)
	session.State = StateDoctorSelection

	return w.save(ctx, session)
}

// SelectDoctor records the doctor and loads the slot grid. A new doctor
// invalidates any chosen slot.
func (w *Workflow) SelectDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateDoctorSelection {
		return session, apperrors.Validationf("cannot select a doctor in step %s", session.State)
	}
	if session.Draft.Date == nil {
		return session, apperrors.Validation("select a date first")
	}
	if !onDutyContains(session.OnDuty, doctorID) {
		return session, apperrors.Validation("doctor is not on duty on the selected date")
	}

	session.Draft.DoctorID = &doctorID
	session.Draft.SlotStart = nil

	result, err := w.fetchSlots(ctx, doctorID, *session.Draft.Date)
	if err != nil {
		return session, err
	}
	session.AvailableSlots = result.Data
	session.markAvailability(result.Tier)
	session.State = StateTimeSlot

	return w.save(ctx, session)
}

// SelectSlot records the chosen start time. Only starts present in the
// currently offered grid are accepted; the slot itself is transient and is
// not retained.
func (w *Workflow) SelectSlot(ctx context.Context, id uuid.UUID, start model.TimeOfDay) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateTimeSlot {
		return session, apperrors.Validationf("cannot select a time in step %s", session.State)
	}
	if !slotListed(session.AvailableSlots, start) {
		return session, apperrors.Validation("time is not among the offered slots")
	}

	session.Draft.SlotStart = &start
	session.State = StateServiceSelection

	return w.save(ctx, session)
}

// SelectService records the service and re-validates the chosen slot
// against the service's true duration. Slots were generated before the
// duration was known, so a slot that no longer fits sends the wizard back
// to time selection with a refreshed grid.
func (w *Workflow) SelectService(ctx context.Context, id, serviceID uuid.UUID) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateServiceSelection {
		return session, apperrors.Validationf("cannot select a service in step %s", session.State)
	}
	if session.Draft.Date == nil || session.Draft.DoctorID == nil || session.Draft.SlotStart == nil {
		return session, apperrors.Validation("date, doctor and time must be chosen first")
	}

	service, err := w.catalog.GetService(ctx, serviceID)
	if err != nil {
		return session, err
	}
	if service.DurationMinutes <= 0 {
		return session, apperrors.Validation("service has no usable duration")
	}

	fits, err := w.slots.SlotFits(ctx, *session.Draft.DoctorID, *session.Draft.Date, *session.Draft.SlotStart, service.DurationMinutes)
	if err != nil {
		return session, err
	}
	if !fits {
		session.Draft.SlotStart = nil
		session.State = StateTimeSlot
		if result, ferr := w.fetchSlots(ctx, *session.Draft.DoctorID, *session.Draft.Date); ferr == nil {
			session.AvailableSlots = result.Data
			session.markAvailability(result.Tier)
		}
		if _, serr := w.save(ctx, session); serr != nil {
			return session, serr
		}
		return session, apperrors.Validation("selected time cannot accommodate this service, choose another slot")
	}

	session.Draft.ServiceID = &serviceID
	session.State = StateNotes

	return w.save(ctx, session)
}

// SetNotes records the optional free-text notes, bounded in length.
func (w *Workflow) SetNotes(ctx context.Context, id uuid.UUID, notes string) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateNotes {
		return session, apperrors.Validationf("cannot set notes in step %s", session.State)
	}
	if utf8.RuneCountInString(notes) > w.cfg.NotesMaxLength {
		return session, apperrors.Validationf("notes must not exceed %d characters", w.cfg.NotesMaxLength)
	}

	session.Draft.Notes = notes
	return w.save(ctx, session)
}

// Submit recomputes the end time, re-runs the conflict guard against a
// fresh ledger snapshot and persists the booking. A conflict leaves the
// draft intact, refreshes the slot grid and reports a recoverable error:
// "free when listed, taken when submitted" is expected, not a bug.
func (w *Workflow) Submit(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateNotes {
		return session, apperrors.Validationf("cannot submit in step %s", session.State)
	}
	draft := session.Draft
	if draft.Date == nil || draft.DoctorID == nil || draft.SlotStart == nil || draft.ServiceID == nil {
		return session, apperrors.Validation("booking draft is incomplete")
	}

	service, err := w.catalog.GetService(ctx, *draft.ServiceID)
	if err != nil {
		return session, err
	}

	start := *draft.SlotStart
	end := start.AddMinutes(service.DurationMinutes)

	existing, err := w.ledger.ListForDoctorDate(ctx, *draft.DoctorID, *draft.Date)
	if err != nil {
		return session, err
	}
	if err := w.guard.Validate(*draft.DoctorID, *draft.Date, start, end, existing); err != nil {
		return w.rejectConflict(ctx, session, err)
	}

	appointment := &model.Appointment{
		DoctorID:     *draft.DoctorID,
		ServiceID:    *draft.ServiceID,
		Date:         *draft.Date,
		StartTime:    start,
		EndTime:      end,
		Status:       model.AppointmentStatusPending,
		Notes:        draft.Notes,
		PatientEmail: draft.PatientEmail,
	}
	if err := w.submit.Create(ctx, appointment); err != nil {
		if apperrors.IsSlotConflict(err) {
			return w.rejectConflict(ctx, session, err)
		}
		if w.metrics != nil {
			w.metrics.BookingSubmissions.WithLabelValues("error").Inc()
		}
		return session, err
	}

	if w.notifier != nil {
		if err := w.notifier.BookingConfirmed(ctx, appointment); err != nil {
			w.logger.Warn().
				Err(err).
				Str("appointment_id", appointment.ID.String()).
				Msg("booking confirmation notification failed")
		}
	}

	session.State = StateCompleted
	session.UpdatedAt = time.Now()
	if err := w.store.Delete(ctx, session.ID); err != nil {
		w.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to discard completed session")
	}
	if w.metrics != nil {
		w.metrics.ActiveDrafts.Dec()
		w.metrics.BookingSubmissions.WithLabelValues("completed").Inc()
	}

	w.logger.Info().
		Str("session_id", session.ID.String()).
		Str("appointment_id", appointment.ID.String()).
		Str("doctor_id", appointment.DoctorID.String()).
		Str("start", start.String()).
		Msg("booking submitted")

	return session, nil
}

// GoBack moves the wizard one step back. Entered fields are preserved;
// invalidation happens only when a backward-affecting field is re-chosen.
func (w *Workflow) GoBack(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, ok := statePredecessor[session.State]
	if !ok {
		return session, apperrors.Validationf("cannot go back from step %s", session.State)
	}
	session.State = prev
	return w.save(ctx, session)
}

// Cancel discards the whole draft.
func (w *Workflow) Cancel(ctx context.Context, id uuid.UUID) error {
	if _, err := w.store.Get(ctx, id); err != nil {
		return err
	}
	if err := w.store.Delete(ctx, id); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.ActiveDrafts.Dec()
		w.metrics.BookingSubmissions.WithLabelValues("cancelled").Inc()
	}
	return nil
}

func (w *Workflow) rejectConflict(ctx context.Context, session *Session, cause error) (*Session, error) {
	if w.metrics != nil {
		w.metrics.SlotConflicts.Inc()
		w.metrics.BookingSubmissions.WithLabelValues("conflict").Inc()
	}
	w.logger.Info().
		Str("session_id", session.ID.String()).
		Msg("submission rejected, slot taken since listing")

	// Refresh the grid from the now-current ledger so the taken start is
	// gone from the offer.
	if result, err := w.fetchSlots(ctx, *session.Draft.DoctorID, *session.Draft.Date); err == nil {
		session.AvailableSlots = result.Data
		session.markAvailability(result.Tier)
	}
	if _, err := w.save(ctx, session); err != nil {
		return session, err
	}
	return session, cause
}

// fetchOnDutyDoctors resolves the doctor list through the tiered chain:
// the upstream on-duty endpoint, then the coarse all-doctors endpoint with
// local duty filtering, then the local roster with local duty filtering.
func (w *Workflow) fetchOnDutyDoctors(ctx context.Context, date time.Time) (fallback.Result[[]model.DoctorOnDuty], error) {
	chain := fallback.Chain[[]model.DoctorOnDuty]{
		Name:    "doctors_on_duty",
		Timeout: w.cfg.FetchTimeout,
		Primary: func(ctx context.Context) ([]model.DoctorOnDuty, error) {
			return w.upstream.GetDoctorsOnDuty(ctx, date)
		},
		Secondary: func(ctx context.Context) ([]model.DoctorOnDuty, error) {
			doctors, err := w.upstream.GetAllDoctors(ctx)
			if err != nil {
				return nil, err
			}
			return w.duty.FilterOnDuty(ctx, doctors, date, nil)
		},
		Synth: func(ctx context.Context) ([]model.DoctorOnDuty, error) {
			doctors, err := w.roster.ListActive(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("roster unavailable, offering no doctors")
				return []model.DoctorOnDuty{}, nil
			}
			return w.duty.FilterOnDuty(ctx, doctors, date, nil)
		},
		Logger:    w.logger,
		OnDegrade: w.onDegrade,
	}

	result, err := chain.Resolve(ctx)
	if err == nil {
		w.observeResolution(chain.Name, result.Tier)
	}
	return result, err
}

// fetchSlots resolves the slot grid: the upstream availability endpoint,
// then the full appointment dump filtered client-side against the local
// duty window, then a synthesized default-hours grid. Slots are generated
// at granularity duration here; the true service duration is re-checked
// once the service step is reached.
func (w *Workflow) fetchSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (fallback.Result[[]model.TimeSlot], error) {
	chain := fallback.Chain[[]model.TimeSlot]{
		Name:    "available_slots",
		Timeout: w.cfg.FetchTimeout,
		Primary: func(ctx context.Context) ([]model.TimeSlot, error) {
			return w.upstream.GetAvailableSlots(ctx, doctorID, date)
		},
		Secondary: func(ctx context.Context) ([]model.TimeSlot, error) {
			appointments, err := w.upstream.GetAllAppointments(ctx)
			if err != nil {
				return nil, err
			}
			window, err := w.duty.DutyWindow(ctx, doctorID, date)
			if err != nil {
				return nil, err
			}
			booked := filterLedger(appointments, doctorID, date)
			return w.slots.Generator().Generate(window, w.cfg.Granularity, booked), nil
		},
		Synth: func(ctx context.Context) ([]model.TimeSlot, error) {
			window := w.cfg.DefaultWindow
			return w.slots.Generator().Generate(&window, w.cfg.Granularity, nil), nil
		},
		Logger:    w.logger,
		OnDegrade: w.onDegrade,
	}

	result, err := chain.Resolve(ctx)
	if err == nil {
		w.observeResolution(chain.Name, result.Tier)
	}
	return result, err
}

func (w *Workflow) onDegrade(chain string, tier fallback.Tier, cause error) {
	if w.metrics != nil {
		w.metrics.FallbackDegradation.WithLabelValues(chain, string(tier)).Inc()
	}
	_ = cause // already logged by the chain
}

func (w *Workflow) observeResolution(chain string, tier fallback.Tier) {
	if w.metrics != nil {
		w.metrics.FallbackResolutions.WithLabelValues(chain, string(tier)).Inc()
	}
}

func (w *Workflow) save(ctx context.Context, session *Session) (*Session, error) {
	session.UpdatedAt = time.Now()
	if err := w.store.Save(ctx, session); err != nil {
		return session, err
	}
	return session, nil
}

func filterLedger(appointments []*model.Appointment, doctorID uuid.UUID, date time.Time) []*model.Appointment {
	filtered := make([]*model.Appointment, 0)
	for _, apt := range appointments {
		if apt == nil || apt.DoctorID != doctorID || !sameDate(apt.Date, date) {
			continue
		}
		filtered = append(filtered, apt)
	}
	return filtered
}

func onDutyContains(onDuty []model.DoctorOnDuty, doctorID uuid.UUID) bool {
	for _, d := range onDuty {
		if d.Doctor.ID == doctorID {
			return true
		}
	}
	return false
}

func slotListed(slots []model.TimeSlot, start model.TimeOfDay) bool {
	for _, s := range slots {
		if s.Start == start && s.Available {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func beforeToday(t time.Time) bool {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Location())
	return truncateToDate(t).Before(today)
}
