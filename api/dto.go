/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Hours and balances are float64 rounded to 2 decimals; dates are
YYYY-MM-DD, times hh:mm:ss in the configured zone.
*/
package api

import (
	"time"

	"github.com/warp/timeclock/punch"
	"github.com/warp/timeclock/report"
)

// PersonDTO represents a person in API responses.
type PersonDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RegisterRequest is the identity form: CPF plus name.
type RegisterRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RegisterResponse says whether the person is new.
type RegisterResponse struct {
	Person  PersonDTO `json:"person"`
	Created bool      `json:"created"`
}

// PunchRequest is a punch submission. Empty coordinates mean the browser did
// not hand over a location.
type PunchRequest struct {
	Kind      string `json:"kind"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// EventDTO represents a recorded punch.
type EventDTO struct {
	ID        string `json:"id"`
	PersonID  string `json:"person_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	At        string `json:"at"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// DailyTotalDTO is one row of the hours report.
type DailyTotalDTO struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Worked   float64 `json:"worked_hours"`
}

// BalanceDTO is one row of the balance report.
type BalanceDTO struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance_hours"`
}

// BalanceReportDTO wraps the rows with the workload they were computed for.
type BalanceReportDTO struct {
	WorkloadHours float64      `json:"workload_hours"`
	Rows          []BalanceDTO `json:"rows"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	LastKind string `json:"last_kind,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toPersonDTO(p punch.Person) PersonDTO {
	dto := PersonDTO{ID: string(p.ID), Name: p.Name}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toEventDTO(e punch.Event) EventDTO {
	return EventDTO{
		ID:        string(e.ID),
		PersonID:  string(e.PersonID),
		Name:      e.Name,
		Date:      e.Date.String(),
		Time:      e.TimeLabel(),
		At:        e.At.Format(time.RFC3339),
		Kind:      string(e.Kind),
		Label:     e.Kind.Label(),
		Latitude:  e.Location.Latitude,
		Longitude: e.Location.Longitude,
	}
}

func toEventDTOs(events []punch.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	return dtos
}

func toDailyTotalDTO(t report.DailyTotal) DailyTotalDTO {
	return DailyTotalDTO{
		PersonID: string(t.PersonID),
		Name:     t.Name,
		Date:     t.Date.String(),
		Worked:   t.Worked.InexactFloat64(),
	}
}

func toBalanceDTO(r report.BalanceRow) BalanceDTO {
	return BalanceDTO{
		PersonID: string(r.PersonID),
		Name:     r.Name,
		Balance:  r.Balance.InexactFloat64(),
	}
}
