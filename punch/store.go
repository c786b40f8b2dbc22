/*
store.go - Persistence interfaces for punches and people

APPEND-ONLY CONTRACT:
  The Store exposes exactly one write, Append. There is no Update and no
  Delete. Append does not re-validate: the Recorder has already accepted
  the event.

ORDERING:
  Query returns one person-day ordered by time of day (insertion order
  breaks ties). All returns every event in insertion order, which is time
  order because punches are appended as they happen.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, transactional writes
  - punch/store/memory.go: In-memory for testing
*/
package punch

import "context"

// Store handles persistence of punch events.
type Store interface {
	// Append persists an accepted event. This is the ONLY write operation.
	Append(ctx context.Context, e Event) error

	// Query returns the events of one person on one day.
	Query(ctx context.Context, personID PersonID, date Date) ([]Event, error)

	// All returns every event in insertion order.
	All(ctx context.Context) ([]Event, error)
}

// Registry stores people.
type Registry interface {
	// SavePerson inserts p if its ID is new. An existing record is left
	// untouched and created is false.
	SavePerson(ctx context.Context, p Person) (created bool, err error)

	// GetPerson returns nil, nil when the ID is not registered.
	GetPerson(ctx context.Context, id PersonID) (*Person, error)

	ListPeople(ctx context.Context) ([]Person, error)
}

// Repository is what the Recorder and the API need from a backend.
type Repository interface {
	Store
	Registry
}
