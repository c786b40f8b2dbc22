package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/timeclock/punch"
)

// DefaultWorkload is the target daily workload in hours.
var DefaultWorkload = decimal.NewFromInt(8)

// BalanceRow is a person's accrued overtime (positive) or deficit (negative).
type BalanceRow struct {
	PersonID punch.PersonID
	Name     string
	Balance  decimal.Decimal
}

// ComputeBalance sums (worked - target) over every day of each person.
//
// Every person in totals must be in people; a missing one is a data-integrity
// failure and returns *punch.UnknownPersonError. Rows come back sorted by
// PersonID, but callers should not rely on the order.
func ComputeBalance(totals map[DayKey]decimal.Decimal, people []punch.Person, target decimal.Decimal) ([]BalanceRow, error) {
	names := make(map[punch.PersonID]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}

	sums := make(map[punch.PersonID]decimal.Decimal)
	for k, worked := range totals {
		sums[k.PersonID] = sums[k.PersonID].Add(worked.Sub(target))
	}

	rows := make([]BalanceRow, 0, len(sums))
	for id, sum := range sums {
		name, ok := names[id]
		if !ok {
			return nil, &punch.UnknownPersonError{PersonID: id}
		}
		rows = append(rows, BalanceRow{
			PersonID: id,
			Name:     name,
			Balance:  sum.RoundBank(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PersonID < rows[j].PersonID })
	return rows, nil
}
