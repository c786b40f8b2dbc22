package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/timeclock/punch"
)

// CSV writes the header and one row per event.
func CSV(w io.Writer, events []punch.Event) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write(Row(e)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// =============================================================================
// LEGACY IMPORT - usuarios.csv / registros.csv
// =============================================================================

// ReadLegacyPeople parses a CPF,Nome table.
func ReadLegacyPeople(r io.Reader) ([]punch.Person, error) {
	records, err := readTable(r, "CPF", "Nome")
	if err != nil {
		return nil, err
	}

	people := make([]punch.Person, 0, len(records))
	for _, rec := range records {
		people = append(people, punch.Person{
			ID:   punch.PersonID(rec["CPF"]),
			Name: rec["Nome"],
		})
	}
	return people, nil
}

// RowError is a legacy row that could not be parsed. Row is 1-based and
// counts the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// ReadLegacyEvents parses a CPF,Nome,Data,Hora,Tipo,Latitude,Longitude
// table. Data is dd/mm/yyyy and Hora hh:mm:ss, both in loc. Rows that fail
// to parse are returned as RowErrors next to the good ones; err is only set
// when the table itself is unreadable.
func ReadLegacyEvents(r io.Reader, loc *time.Location) ([]punch.Event, []*RowError, error) {
	records, err := readTable(r, "CPF", "Nome", "Data", "Hora", "Tipo", "Latitude", "Longitude")
	if err != nil {
		return nil, nil, err
	}

	var rowErrs []*RowError
	events := make([]punch.Event, 0, len(records))
	for i, rec := range records {
		at, err := time.ParseInLocation("02/01/2006 15:04:05", rec["Data"]+" "+rec["Hora"], loc)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: i + 2, Err: fmt.Errorf("invalid date/time: %w", err)})
			continue
		}
		kind, err := punch.ParseKind(rec["Tipo"])
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: i + 2, Err: err})
			continue
		}
		events = append(events, punch.Event{
			ID:       legacyID(rec),
			PersonID: punch.PersonID(rec["CPF"]),
			Name:     rec["Nome"],
			Date:     punch.DateOf(at),
			At:       at,
			Kind:     kind,
			Location: punch.Location{Latitude: rec["Latitude"], Longitude: rec["Longitude"]},
		})
	}
	return events, rowErrs, nil
}

// legacyID derives a stable ID from the row so a second import of the same
// file hits the store's unique constraint instead of duplicating punches.
func legacyID(rec map[string]string) punch.EventID {
	key := strings.Join([]string{rec["CPF"], rec["Data"], rec["Hora"], rec["Tipo"]}, "|")
	return punch.EventID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("timeclock:legacy:"+key)).String())
}

// readTable returns the rows keyed by header name, checking that every
// required column is present.
func readTable(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []map[string]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rec := make(map[string]string, len(required))
		for _, name := range required {
			if i := cols[name]; i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
