package punch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timeclock/punch"
)

func TestValidate_TransitionTable(t *testing.T) {
	accepted := map[punch.Kind][]punch.Kind{
		punch.KindClockIn:    {punch.KindClockOut, punch.KindBreakEnd, punch.KindNone},
		punch.KindClockOut:   {punch.KindClockIn, punch.KindBreakEnd},
		punch.KindBreakStart: {punch.KindClockIn, punch.KindBreakEnd},
		punch.KindBreakEnd:   {punch.KindBreakStart, punch.KindClockOut},
	}
	previous := append([]punch.Kind{punch.KindNone}, punch.Kinds...)

	for _, requested := range punch.Kinds {
		for _, last := range previous {
			want := false
			for _, k := range accepted[requested] {
				if k == last {
					want = true
				}
			}

			err := punch.Validate(last, requested)
			if want {
				assert.NoError(t, err, "%s after %s should be accepted", requested, last)
				continue
			}

			var seqErr *punch.InvalidSequenceError
			require.ErrorAs(t, err, &seqErr, "%s after %s should be rejected", requested, last)
			assert.Equal(t, last, seqErr.Last)
			assert.Equal(t, requested, seqErr.Requested)
			assert.ErrorIs(t, err, punch.ErrInvalidSequence)
		}
	}
}

func TestValidate_NoPriorPunch_OnlyClockIn(t *testing.T) {
	assert.NoError(t, punch.Validate(punch.KindNone, punch.KindClockIn))

	for _, k := range []punch.Kind{punch.KindClockOut, punch.KindBreakStart, punch.KindBreakEnd} {
		err := punch.Validate(punch.KindNone, k)
		var seqErr *punch.InvalidSequenceError
		require.ErrorAs(t, err, &seqErr)
		assert.Equal(t, "none", seqErr.Last.String())
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	err := punch.Validate(punch.KindNone, punch.Kind("lunch"))
	assert.ErrorIs(t, err, punch.ErrUnknownKind)
}

func TestLastKind(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, punch.KindNone, punch.LastKind(nil))

	events := []punch.Event{
		{Kind: punch.KindBreakStart, At: base.Add(3 * time.Hour)},
		{Kind: punch.KindClockIn, At: base},
		{Kind: punch.KindBreakEnd, At: base.Add(4 * time.Hour)},
	}
	assert.Equal(t, punch.KindBreakEnd, punch.LastKind(events))

	// Same second: the later-inserted event wins.
	tied := []punch.Event{
		{Kind: punch.KindClockIn, At: base},
		{Kind: punch.KindClockOut, At: base},
	}
	assert.Equal(t, punch.KindClockOut, punch.LastKind(tied))
}

func TestParseKind(t *testing.T) {
	cases := map[string]punch.Kind{
		"clock_in":  punch.KindClockIn,
		"Entrada":   punch.KindClockIn,
		"saída":     punch.KindClockOut,
		"PAUSA":     punch.KindBreakStart,
		" Retorno ": punch.KindBreakEnd,
		"break_end": punch.KindBreakEnd,
	}
	for in, want := range cases {
		got, err := punch.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := punch.ParseKind("Almoço")
	assert.ErrorIs(t, err, punch.ErrUnknownKind)
}

func TestDate(t *testing.T) {
	d, err := punch.ParseDate("2025-03-07")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-07", d.String())
	assert.Equal(t, "07/03/2025", d.Label())
	assert.True(t, d.Before(punch.Date{Year: 2025, Month: time.March, Day: 8}))
	assert.False(t, d.Before(d))

	_, err = punch.ParseDate("07/03/2025")
	assert.Error(t, err)
}
