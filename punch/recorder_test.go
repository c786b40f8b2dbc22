package punch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timeclock/punch"
	"github.com/warp/timeclock/punch/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var saoPaulo = time.FixedZone("BRT", -3*60*60)

var here = punch.Location{Latitude: "-23.5505", Longitude: "-46.6333"}

func newTestRecorder(t *testing.T, now time.Time) (*punch.Recorder, *store.Memory, *punch.FixedClock) {
	t.Helper()
	mem := store.NewMemory()
	clock := punch.NewFixedClock(now)
	return punch.NewRecorder(mem, clock, nil), mem, clock
}

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, saoPaulo)
}

func register(t *testing.T, r *punch.Recorder, id, name string) {
	t.Helper()
	_, _, err := r.Register(context.Background(), punch.PersonID(id), name)
	require.NoError(t, err)
}

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRecorder_Register_FirstAndSecond(t *testing.T) {
	r, _, _ := newTestRecorder(t, at(8, 0))
	ctx := context.Background()

	p, created, err := r.Register(ctx, " 12345678901 ", " Ana ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, punch.PersonID("12345678901"), p.ID)
	assert.Equal(t, "Ana", p.Name)

	// Second registration keeps the stored name.
	p, created, err = r.Register(ctx, "12345678901", "Ana Maria")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ana", p.Name)
}

func TestRecorder_Register_Blank(t *testing.T) {
	r, _, _ := newTestRecorder(t, at(8, 0))

	_, _, err := r.Register(context.Background(), "", "Ana")
	assert.ErrorIs(t, err, punch.ErrInvalidPerson)

	_, _, err = r.Register(context.Background(), "123", "  ")
	assert.ErrorIs(t, err, punch.ErrInvalidPerson)
}

// =============================================================================
// PUNCHING
// =============================================================================

func TestRecorder_Punch_FullDay(t *testing.T) {
	// GIVEN: A registered person
	// WHEN: Punching in, break, return, out across the day
	// THEN: Every punch is accepted and stored in order

	r, mem, clock := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	steps := []struct {
		at   time.Time
		kind punch.Kind
	}{
		{at(9, 0), punch.KindClockIn},
		{at(12, 0), punch.KindBreakStart},
		{at(13, 0), punch.KindBreakEnd},
		{at(18, 0), punch.KindClockOut},
	}
	for _, s := range steps {
		clock.Set(s.at)
		e, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: s.kind, Location: here})
		require.NoError(t, err)
		assert.Equal(t, "Ana", e.Name)
		assert.Equal(t, punch.Date{Year: 2025, Month: time.March, Day: 10}, e.Date)
		assert.NotEmpty(t, e.ID)
	}

	all, err := mem.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, s := range steps {
		assert.Equal(t, s.kind, all[i].Kind)
		assert.True(t, s.at.Equal(all[i].At))
	}
}

func TestRecorder_Punch_RejectedClockOutWithoutPriorPunch(t *testing.T) {
	r, mem, _ := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	_, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockOut, Location: here})

	var seqErr *punch.InvalidSequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, punch.KindNone, seqErr.Last)
	assert.Equal(t, "none", seqErr.Last.String())
	assert.Equal(t, punch.PersonID("111"), seqErr.PersonID)

	all, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected punch must not be stored")
}

func TestRecorder_Punch_RejectionNamesLastKind(t *testing.T) {
	r, _, clock := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	_, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	require.NoError(t, err)

	clock.Set(at(10, 0))
	_, err = r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})

	var seqErr *punch.InvalidSequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, punch.KindClockIn, seqErr.Last)
	assert.Contains(t, err.Error(), "Entrada")
}

func TestRecorder_Punch_NewDayStartsFresh(t *testing.T) {
	// GIVEN: A clock-in left open yesterday
	// WHEN: Punching clock-in the next day
	// THEN: Accepted, validation only sees today

	r, _, clock := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	_, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	require.NoError(t, err)

	clock.Set(at(9, 0).AddDate(0, 0, 1))
	_, err = r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	assert.NoError(t, err)
}

func TestRecorder_Punch_OtherPeopleDoNotInterfere(t *testing.T) {
	r, _, _ := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")
	register(t, r, "222", "Bruno")

	_, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	require.NoError(t, err)

	_, err = r.Punch(ctx, punch.PunchRequest{PersonID: "222", Kind: punch.KindClockIn, Location: here})
	assert.NoError(t, err)
}

func TestRecorder_Punch_MissingLocation(t *testing.T) {
	r, mem, _ := newTestRecorder(t, at(9, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	for _, loc := range []punch.Location{{}, {Latitude: "-23.5"}, {Longitude: "-46.6"}} {
		_, err := r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: loc})
		assert.ErrorIs(t, err, punch.ErrMissingLocation)
	}

	all, _ := mem.All(ctx)
	assert.Empty(t, all)
}

func TestRecorder_Punch_UnknownPerson(t *testing.T) {
	r, _, _ := newTestRecorder(t, at(9, 0))

	_, err := r.Punch(context.Background(), punch.PunchRequest{PersonID: "999", Kind: punch.KindClockIn, Location: here})

	var unknown *punch.UnknownPersonError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, punch.PersonID("999"), unknown.PersonID)
	assert.True(t, punch.IsNotFound(err))
}

func TestRecorder_Punch_ConcurrentSamePersonDay(t *testing.T) {
	// GIVEN: A registered person with no punches today
	// WHEN: Many clock_in punches race for the same person-day
	// THEN: Exactly one is accepted and the rest see it as the last punch

	r, mem, _ := newTestRecorder(t, at(9, 0))
	register(t, r, "111", "Ana")
	ctx := context.Background()

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Punch(ctx, punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var seqErr *punch.InvalidSequenceError
		require.ErrorAs(t, err, &seqErr)
		assert.Equal(t, punch.KindClockIn, seqErr.Last)
	}
	assert.Equal(t, 1, accepted)

	day, err := mem.Query(ctx, "111", punch.DateOf(at(9, 0)))
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, punch.KindClockIn, day[0].Kind)
}

func TestRecorder_Punch_TruncatesToSeconds(t *testing.T) {
	r, _, _ := newTestRecorder(t, at(9, 0).Add(1500*time.Millisecond))
	register(t, r, "111", "Ana")

	e, err := r.Punch(context.Background(), punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	require.NoError(t, err)
	assert.Equal(t, "09:00:01", e.TimeLabel())
}

func TestRecorder_Import_Validates(t *testing.T) {
	r, mem, _ := newTestRecorder(t, at(20, 0))
	ctx := context.Background()
	register(t, r, "111", "Ana")

	_, err := r.Import(ctx, punch.Event{PersonID: "111", Kind: punch.KindClockIn, At: at(9, 0), Location: here, ID: "legacy-1"})
	require.NoError(t, err)

	_, err = r.Import(ctx, punch.Event{PersonID: "111", Kind: punch.KindBreakEnd, At: at(10, 0), Location: here})
	assert.ErrorIs(t, err, punch.ErrInvalidSequence)

	all, err := mem.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, punch.EventID("legacy-1"), all[0].ID)
}

// failingRepo fails every append.
type failingRepo struct {
	*store.Memory
}

func (f failingRepo) Append(context.Context, punch.Event) error {
	return errors.New("disk full")
}

func TestRecorder_Punch_StoreFailurePropagates(t *testing.T) {
	repo := failingRepo{Memory: store.NewMemory()}
	r := punch.NewRecorder(repo, punch.NewFixedClock(at(9, 0)), nil)
	register(t, r, "111", "Ana")

	_, err := r.Punch(context.Background(), punch.PunchRequest{PersonID: "111", Kind: punch.KindClockIn, Location: here})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, punch.IsClientError(err))
}
