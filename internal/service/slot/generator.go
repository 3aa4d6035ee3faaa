package slot

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/pkg/metrics"
)

// Generator discretizes a duty window into bookable time slots for one
// doctor, one date, one service duration.
//
// Candidates start at the window start and advance by the configured
// granularity. A candidate survives when its whole occupied interval
// [t, t+duration) fits before the window end, misses the break, and misses
// every blocking appointment. Durations need not be multiples of the
// granularity: a 45-minute service still yields candidates every 30 minutes,
// filtered only by the fit rules.
type Generator struct {
	granularity int
	logger      *zerolog.Logger
	metrics     *metrics.Metrics
}

// NewGenerator builds a generator with the given granularity in minutes
// (30 when non-positive). metrics may be nil.
func NewGenerator(granularityMinutes int, logger *zerolog.Logger, m *metrics.Metrics) *Generator {
	if granularityMinutes <= 0 {
		granularityMinutes = 30
	}
	return &Generator{
		granularity: granularityMinutes,
		logger:      logger,
		metrics:     m,
	}
}

func (g *Generator) Granularity() int {
	return g.granularity
}

// Generate never fails: invalid input (inverted or out-of-range window,
// non-positive duration) logs an anomaly and yields no slots, so a bad
// schedule row cannot abort the booking flow. Output is chronological with
// distinct start times, and identical inputs give identical output.
func (g *Generator) Generate(window *model.DutyWindow, durationMinutes int, booked []*model.Appointment) []model.TimeSlot {
	started := time.Now()
	slots := g.generate(window, durationMinutes, booked)
	if g.metrics != nil {
		g.metrics.SlotGenerationLatency.Observe(time.Since(started).Seconds())
		g.metrics.SlotsGenerated.Observe(float64(len(slots)))
	}
	return slots
}

func (g *Generator) generate(window *model.DutyWindow, durationMinutes int, booked []*model.Appointment) []model.TimeSlot {
	slots := make([]model.TimeSlot, 0)
	if window == nil {
		return slots
	}
	if !window.Start.Valid() || window.End <= window.Start || window.End > model.MinutesPerDay {
		g.logger.Warn().
			Str("window_start", window.Start.String()).
			Str("window_end", window.End.String()).
			Msg("invalid duty window, no slots generated")
		return slots
	}
	if durationMinutes <= 0 {
		g.logger.Warn().
			Int("duration_minutes", durationMinutes).
			Msg("invalid service duration, no slots generated")
		return slots
	}
	if window.HasBreak() && (*window.BreakStart >= *window.BreakEnd ||
		*window.BreakStart < window.Start || *window.BreakEnd > window.End) {
		g.logger.Warn().
			Str("break_start", window.BreakStart.String()).
			Str("break_end", window.BreakEnd.String()).
			Msg("invalid break window, no slots generated")
		return slots
	}

	step := model.TimeOfDay(g.granularity)
	for start := window.Start; start.AddMinutes(durationMinutes) <= window.End; start += step {
		end := start.AddMinutes(durationMinutes)

		if window.HasBreak() && model.Overlaps(start, end, *window.BreakStart, *window.BreakEnd) {
			continue
		}
		if conflictsWithBooked(start, end, booked) {
			continue
		}

		slots = append(slots, model.TimeSlot{
			Start:           start,
			End:             end,
			DurationMinutes: durationMinutes,
			Available:       true,
		})
	}
	return slots
}

// Fits reports whether one concrete interval satisfies the same rules slot
// generation applies: inside the window, clear of the break, clear of every
// blocking appointment. Used to re-validate a chosen slot once the service
// duration is known, and again at submission.
func Fits(window *model.DutyWindow, start model.TimeOfDay, durationMinutes int, booked []*model.Appointment) bool {
	if window == nil || durationMinutes <= 0 {
		return false
	}
	end := start.AddMinutes(durationMinutes)
	if start < window.Start || end > window.End {
		return false
	}
	if window.HasBreak() && model.Overlaps(start, end, *window.BreakStart, *window.BreakEnd) {
		return false
	}
	return !conflictsWithBooked(start, end, booked)
}

func conflictsWithBooked(start, end model.TimeOfDay, booked []*model.Appointment) bool {
	for _, apt := range booked {
		if apt == nil || !apt.Status.Blocking() {
			continue
		}
		if apt.Overlaps(start, end) {
			return true
		}
	}
	return false
}
