/*
recorder.go - validate -> append pipeline

REQUEST FLOW (Punch):
  1. Reject if latitude or longitude is missing (before the validator)
  2. Look the person up in the Registry
  3. Under the writer lock: read the clock, load the person-day, Validate
  4. Append a new Event with a fresh ID

CONCURRENCY:
  A single mutex serializes every read-validate-append, for all people.
*/
package punch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PunchRequest is what the UI layer submits.
type PunchRequest struct {
	PersonID PersonID
	Kind     Kind
	Location Location
}

// Recorder registers people and records punches.
type Recorder struct {
	repo   Repository
	clock  Clock
	logger *zap.Logger

	mu sync.Mutex
}

func NewRecorder(repo Repository, clock Clock, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, clock: clock, logger: logger}
}

// Clock returns the clock that defines "today".
func (r *Recorder) Clock() Clock { return r.clock }

// Register creates the person on first sight. created is false when the ID
// was already registered; the stored name is kept.
func (r *Recorder) Register(ctx context.Context, id PersonID, name string) (Person, bool, error) {
	id = PersonID(strings.TrimSpace(string(id)))
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return Person{}, false, ErrInvalidPerson
	}

	p := Person{ID: id, Name: name, CreatedAt: r.clock.Now().UTC().Truncate(time.Second)}
	created, err := r.repo.SavePerson(ctx, p)
	if err != nil {
		return Person{}, false, fmt.Errorf("failed to save person: %w", err)
	}
	if created {
		r.logger.Info("person registered", zap.String("person_id", string(id)))
		return p, true, nil
	}

	existing, err := r.repo.GetPerson(ctx, id)
	if err != nil {
		return Person{}, false, fmt.Errorf("failed to load person: %w", err)
	}
	if existing == nil {
		return Person{}, false, &UnknownPersonError{PersonID: id}
	}
	return *existing, false, nil
}

// Punch validates and records a punch at the clock's current time.
func (r *Recorder) Punch(ctx context.Context, req PunchRequest) (Event, error) {
	if !req.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	if !req.Location.Complete() {
		return Event{}, ErrMissingLocation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.clock.Now().In(r.clock.Location()).Truncate(time.Second)
	return r.recordLocked(ctx, req.PersonID, req.Kind, at, req.Location, "")
}

// Import replays a historical event through the same validator. The event's
// At decides the day; ID is generated when empty.
func (r *Recorder) Import(ctx context.Context, e Event) (Event, error) {
	if !e.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if !e.Location.Complete() {
		return Event{}, ErrMissingLocation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	at := e.At.In(r.clock.Location()).Truncate(time.Second)
	return r.recordLocked(ctx, e.PersonID, e.Kind, at, e.Location, e.ID)
}

func (r *Recorder) recordLocked(ctx context.Context, personID PersonID, kind Kind, at time.Time, loc Location, id EventID) (Event, error) {
	person, err := r.repo.GetPerson(ctx, personID)
	if err != nil {
		return Event{}, fmt.Errorf("failed to load person: %w", err)
	}
	if person == nil {
		return Event{}, &UnknownPersonError{PersonID: personID}
	}

	date := DateOf(at)
	day, err := r.repo.Query(ctx, personID, date)
	if err != nil {
		return Event{}, fmt.Errorf("failed to load punches: %w", err)
	}

	last := LastKind(day)
	if err := Validate(last, kind); err != nil {
		if seqErr, ok := err.(*InvalidSequenceError); ok {
			seqErr.PersonID = personID
			seqErr.Date = date
		}
		r.logger.Warn("punch rejected",
			zap.String("person_id", string(personID)),
			zap.String("date", date.String()),
			zap.Stringer("last", last),
			zap.Stringer("requested", kind),
		)
		return Event{}, err
	}

	if id == "" {
		id = EventID(uuid.NewString())
	}
	e := Event{
		ID:       id,
		PersonID: personID,
		Name:     person.Name,
		Date:     date,
		At:       at,
		Kind:     kind,
		Location: loc,
	}
	if err := r.repo.Append(ctx, e); err != nil {
		return Event{}, fmt.Errorf("failed to append punch: %w", err)
	}

	r.logger.Info("punch recorded",
		zap.String("person_id", string(personID)),
		zap.String("event_id", string(e.ID)),
		zap.Stringer("kind", kind),
		zap.Time("at", at),
	)
	return e, nil
}

// Day returns the punches of one person on one day.
func (r *Recorder) Day(ctx context.Context, personID PersonID, date Date) ([]Event, error) {
	return r.repo.Query(ctx, personID, date)
}
