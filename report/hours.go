/*
Package report derives worked hours and cumulative balance from punches.

Nothing here is stored. Every report is recomputed from the full event
list, so the result depends only on the events and is idempotent.

HOURS ALGORITHM (per person-day):
  Events are sorted by time (stable, so insertion order breaks ties) and
  walked with an "open" marker:
    Entrada, Retorno  -> open = t (an existing open is dropped)
    Saída, Pausa      -> if open: total += t - open; open = none
  A marker still open at the end of the day is discarded.
  Hours = seconds / 3600, rounded to 2 decimals.

SEE ALSO:
  - balance.go: daily totals -> cumulative balance
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timeclock/punch"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// DayKey identifies a person-day.
type DayKey struct {
	PersonID punch.PersonID
	Date     punch.Date
}

// DailyTotal is the worked hours of one person-day.
type DailyTotal struct {
	PersonID punch.PersonID
	Name     string
	Date     punch.Date
	Worked   decimal.Decimal
}

// ComputeHours maps every person-day present in events to its worked hours.
func ComputeHours(events []punch.Event) map[DayKey]decimal.Decimal {
	result := make(map[DayKey]decimal.Decimal)
	for k, day := range groupByDay(events) {
		result[k] = workedHours(day)
	}
	return result
}

// DailyTotals is ComputeHours as rows sorted by person then date. Name comes
// from the first event of the day.
func DailyTotals(events []punch.Event) []DailyTotal {
	groups := groupByDay(events)

	rows := make([]DailyTotal, 0, len(groups))
	for k, day := range groups {
		rows = append(rows, DailyTotal{
			PersonID: k.PersonID,
			Name:     day[0].Name,
			Date:     k.Date,
			Worked:   workedHours(day),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PersonID != rows[j].PersonID {
			return rows[i].PersonID < rows[j].PersonID
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// groupByDay copies events into person-day buckets, each sorted by At.
func groupByDay(events []punch.Event) map[DayKey][]punch.Event {
	groups := make(map[DayKey][]punch.Event)
	for _, e := range events {
		k := DayKey{PersonID: e.PersonID, Date: e.Date}
		groups[k] = append(groups[k], e)
	}
	for _, day := range groups {
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].At.Before(day[j].At)
		})
	}
	return groups
}

func workedHours(day []punch.Event) decimal.Decimal {
	var (
		open  *time.Time
		total time.Duration
	)
	for i := range day {
		e := day[i]
		switch e.Kind {
		case punch.KindClockIn, punch.KindBreakEnd:
			at := e.At
			open = &at
		case punch.KindClockOut, punch.KindBreakStart:
			if open != nil {
				total += e.At.Sub(*open)
				open = nil
			}
		}
	}
	// Dangling open interval is not counted.
	return toHours(total)
}

func toHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Nanoseconds()).Div(nanosPerHour).RoundBank(2)
}
