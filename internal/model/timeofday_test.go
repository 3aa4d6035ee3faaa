package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), got)

	got, err = ParseTimeOfDay("14:15:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(14*60+15), got)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("nonsense")
	assert.Error(t, err)
}

func TestTimeOfDayString(t *testing.T) {
	tod, err := ParseTimeOfDay("08:05")
	require.NoError(t, err)
	assert.Equal(t, "08:05", tod.String())
}

func TestTimeOfDayJSON(t *testing.T) {
	type wrapper struct {
		At TimeOfDay `json:"at"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"at":"13:45"}`), &w))
	assert.Equal(t, TimeOfDay(13*60+45), w.At)

	encoded, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"13:45"}`, string(encoded))
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	tod := TimeOfDay(10*60 + 30)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC), tod.At(date))
}

func TestOverlapsHalfOpen(t *testing.T) {
	ten := TimeOfDay(10 * 60)
	eleven := TimeOfDay(11 * 60)
	noon := TimeOfDay(12 * 60)

	assert.True(t, Overlaps(ten, noon, eleven, noon))
	assert.True(t, Overlaps(ten, eleven, ten, eleven))

	// Back-to-back intervals share a boundary but do not overlap.
	assert.False(t, Overlaps(ten, eleven, eleven, noon))
	assert.False(t, Overlaps(eleven, noon, ten, eleven))
}

func TestAppointmentStatusBlocking(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Blocking())
	assert.True(t, AppointmentStatusConfirmed.Blocking())
	assert.False(t, AppointmentStatusCancelled.Blocking())
	assert.False(t, AppointmentStatusCompleted.Blocking())
}
