// Package store provides in-memory punch.Store and punch.Registry
// implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/timeclock/punch"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	events []punch.Event
	ids    map[punch.EventID]struct{}
	days   map[dayKey][]int
	people map[punch.PersonID]punch.Person
	order  []punch.PersonID
}

type dayKey struct {
	PersonID punch.PersonID
	Date     punch.Date
}

func NewMemory() *Memory {
	return &Memory{
		ids:    make(map[punch.EventID]struct{}),
		days:   make(map[dayKey][]int),
		people: make(map[punch.PersonID]punch.Person),
	}
}

// Append adds a single event. Append-only; IDs are unique.
func (m *Memory) Append(_ context.Context, e punch.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[e.ID]; ok {
		return fmt.Errorf("punch %s: %w", e.ID, punch.ErrDuplicateEvent)
	}
	m.ids[e.ID] = struct{}{}
	k := dayKey{PersonID: e.PersonID, Date: e.Date}
	m.days[k] = append(m.days[k], len(m.events))
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Query(_ context.Context, personID punch.PersonID, date punch.Date) ([]punch.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.days[dayKey{PersonID: personID, Date: date}]
	result := make([]punch.Event, len(idx))
	for i, j := range idx {
		result[i] = m.events[j]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].At.Before(result[j].At)
	})
	return result, nil
}

func (m *Memory) All(_ context.Context) ([]punch.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]punch.Event, len(m.events))
	copy(result, m.events)
	return result, nil
}

// =============================================================================
// PEOPLE
// =============================================================================

func (m *Memory) SavePerson(_ context.Context, p punch.Person) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[p.ID]; ok {
		return false, nil
	}
	m.people[p.ID] = p
	m.order = append(m.order, p.ID)
	return true, nil
}

func (m *Memory) GetPerson(_ context.Context, id punch.PersonID) (*punch.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.people[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) ListPeople(_ context.Context) ([]punch.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]punch.Person, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.people[id])
	}
	return result, nil
}
