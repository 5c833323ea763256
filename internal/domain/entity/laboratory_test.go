package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinuteOfDay(t *testing.T) {
	m, err := ParseMinuteOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, MinuteOfDay(510), m)
	assert.Equal(t, "08:30", m.String())

	_, err = ParseMinuteOfDay("25:00")
	assert.Error(t, err, "hora fuera de rango")

	_, err = ParseMinuteOfDay("ocho y media")
	assert.Error(t, err)
}

func TestSchedulePolicy_Validate(t *testing.T) {
	var days [7]DayPolicy
	for i := 0; i < 7; i++ {
		days[i] = DayPolicy{Weekday: time.Weekday(i), IsOpen: true, OpensAt: 480, ClosesAt: 1200}
	}
	policy := SchedulePolicy{Version: 1, Days: days}
	require.NoError(t, policy.Validate())

	// Apertura igual o posterior al cierre es incoherente.
	policy.Days[2].OpensAt = 1200
	assert.Error(t, policy.Validate())

	// La posición debe corresponder al día.
	policy.Days[2].OpensAt = 480
	policy.Days[3].Weekday = time.Friday
	assert.Error(t, policy.Validate())
}

// Semántica semiabierta de la ventana: contigua no solapa.
func TestReservationRequest_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	req := &ReservationRequest{StartsAt: base, EndsAt: base.Add(2 * time.Hour)}

	assert.True(t, req.Overlaps(base.Add(time.Hour), base.Add(3*time.Hour)), "solape parcial")
	assert.True(t, req.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
	assert.False(t, req.Overlaps(base.Add(2*time.Hour), base.Add(4*time.Hour)), "contigua por la derecha")
	assert.False(t, req.Overlaps(base.Add(-2*time.Hour), base), "contigua por la izquierda")
}

func TestReservationRequest_Commits(t *testing.T) {
	for state, commits := range map[string]bool{
		RequestStatePending:   true,
		RequestStateApproved:  true,
		RequestStateInReview:  false,
		RequestStateRejected:  false,
		RequestStateCancelled: false,
		RequestStateCompleted: false,
	} {
		req := &ReservationRequest{State: state}
		assert.Equal(t, commits, req.Commits(), "estado %s", state)
	}
}
