/*
Package punch provides the core of the time clock: punch kinds, the
per-day validation state machine, and the Recorder that appends
accepted punches to a Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: someone who punches, identified by tax ID (CPF)
  - Event: an immutable punch record (who, when, which kind, where)
  - Kind: Entrada / Saída / Pausa / Retorno
  - Date: a civil calendar day in the clock's zone

DESIGN PRINCIPLES:
  1. Immutability: Events are never modified or deleted
  2. Locality: validation only looks at one person on one day
  3. Explicit time: the zone comes from a Clock, never from a global

SEE ALSO:
  - validator.go: Transition rules
  - recorder.go: validate -> append pipeline
  - report/: Hours and balance computed from Events
*/
package punch

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string
type EventID string

// =============================================================================
// PERSON
// =============================================================================

// Person is self-asserted: CPF plus a display name. No deletion path.
type Person struct {
	ID        PersonID
	Name      string
	CreatedAt time.Time
}

// =============================================================================
// KIND - The four punch types
// =============================================================================

type Kind string

const (
	KindNone       Kind = ""
	KindClockIn    Kind = "clock_in"
	KindClockOut   Kind = "clock_out"
	KindBreakStart Kind = "break_start"
	KindBreakEnd   Kind = "break_end"
)

// Kinds lists the punchable kinds in display order.
var Kinds = []Kind{KindClockIn, KindClockOut, KindBreakStart, KindBreakEnd}

var kindLabels = map[Kind]string{
	KindClockIn:    "Entrada",
	KindClockOut:   "Saída",
	KindBreakStart: "Pausa",
	KindBreakEnd:   "Retorno",
}

// Label returns the localized label shown to users and written to exports.
func (k Kind) Label() string {
	if k == KindNone {
		return "none"
	}
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// Valid reports whether k is one of the four punchable kinds.
func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// ParseKind accepts either the code ("clock_out") or the label ("Saída").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, kindLabels[k]) {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// =============================================================================
// DATE - Civil calendar day
// =============================================================================

// Date is a calendar day without a zone. Comparable, so usable as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses the ISO form 2006-01-02.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Label is the dd/mm/yyyy form used by the legacy tables and exports.
func (d Date) Label() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) IsZero() bool { return d == Date{} }

// =============================================================================
// EVENT - Immutable punch record
// =============================================================================

// Location is kept as the raw strings the browser reported.
type Location struct {
	Latitude  string
	Longitude string
}

// Complete reports whether both coordinates were captured.
func (l Location) Complete() bool {
	return strings.TrimSpace(l.Latitude) != "" && strings.TrimSpace(l.Longitude) != ""
}

// Event is one accepted punch. Name is denormalized from the Person.
type Event struct {
	ID       EventID
	PersonID PersonID
	Name     string
	Date     Date
	At       time.Time
	Kind     Kind
	Location Location
}

// TimeLabel is the hh:mm:ss time of day.
func (e Event) TimeLabel() string {
	return e.At.Format("15:04:05")
}
