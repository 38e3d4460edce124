// Package ingest parses CSV reference and record files into the types
// the gazetteer core consumes. Column roles are declared explicitly by
// the caller through field maps; the core never guesses column names.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Ujwal-Bamb/all-jobs-finder/gazetteer"
)

// FieldMap names the reference dataset columns for each place role.
// Leave optional roles empty to skip them; City, Lat and Lng are
// required.
type FieldMap struct {
	City      string
	StateID   string
	StateName string
	Lat       string
	Lng       string
	Zips      string
}

// DefaultFieldMap matches the uszips.csv layout.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		City:      "city_ascii",
		StateID:   "state_id",
		StateName: "state_name",
		Lat:       "lat",
		Lng:       "lng",
		Zips:      "zips",
	}
}

// RecordFields names the candidate record columns that can carry a
// location hint, in preference order: postal code, then city (with an
// optional state column), then free-form location text.
type RecordFields struct {
	PostalCode string
	City       string
	State      string
	Location   string
}

// DefaultRecordFields matches the jobs.csv layout.
func DefaultRecordFields() RecordFields {
	return RecordFields{
		PostalCode: "zip_code",
		City:       "client_city",
		State:      "state",
	}
}

// Record is one candidate row with all of its columns retained for
// display. It implements gazetteer.Candidate.
type Record struct {
	fields map[string]string
	rf     RecordFields
}

// Get returns the value of a column by normalized name, with "nan"
// placeholders (how the source files mark missing values) mapped to "".
func (r Record) Get(column string) string {
	v := strings.TrimSpace(r.fields[normalizeHeader(column)])
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// LocationHint returns the most precise location text the record
// carries: postal code first, then "city, state", then free-form
// location text. Empty when the record has no usable location.
func (r Record) LocationHint() string {
	if code := r.Get(r.rf.PostalCode); code != "" {
		return code
	}
	if city := r.Get(r.rf.City); city != "" {
		if state := r.Get(r.rf.State); state != "" {
			return city + ", " + state
		}
		return city
	}
	return r.Get(r.rf.Location)
}

// normalizeHeader canonicalizes a column name: trimmed, lowered, spaces
// to underscores. Matches how the source spreadsheets arrive with
// inconsistent header casing.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// header maps normalized column names to their positions.
type header map[string]int

func readHeader(cr *csv.Reader) (header, error) {
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[normalizeHeader(name)] = i
	}
	return h, nil
}

// column returns the position of a mapped column, erroring by name when
// the file does not carry it.
func (h header) column(name string) (int, error) {
	i, ok := h[normalizeHeader(name)]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return i, nil
}

// optional returns the position of a column or -1 when unmapped or not
// present in the file.
func (h header) optional(name string) int {
	if name == "" {
		return -1
	}
	if i, ok := h[normalizeHeader(name)]; ok {
		return i
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadPlaces parses a reference place CSV into rows for
// gazetteer.Build. Coordinates that fail to parse become NaN so the
// builder's own validation skips and counts the row; ReadPlaces itself
// only fails on malformed CSV structure or missing required columns.
func ReadPlaces(r io.Reader, fm FieldMap) ([]gazetteer.PlaceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	cityCol, err := h.column(fm.City)
	if err != nil {
		return nil, err
	}
	latCol, err := h.column(fm.Lat)
	if err != nil {
		return nil, err
	}
	lngCol, err := h.column(fm.Lng)
	if err != nil {
		return nil, err
	}
	stateIDCol := h.optional(fm.StateID)
	stateNameCol := h.optional(fm.StateName)
	zipsCol := h.optional(fm.Zips)

	var rows []gazetteer.PlaceRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading place row: %w", err)
		}

		rows = append(rows, gazetteer.PlaceRecord{
			City:      field(row, cityCol),
			StateID:   field(row, stateIDCol),
			StateName: field(row, stateNameCol),
			Lat:       parseCoord(field(row, latCol)),
			Lng:       parseCoord(field(row, lngCol)),
			Zips:      field(row, zipsCol),
		})
	}
	return rows, nil
}

// parseCoord turns unparseable coordinate text into NaN instead of an
// error, deferring the skip decision to the index builder.
func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ReadRecords parses a candidate record CSV. At least one of the mapped
// location columns must exist in the file; rows themselves are never
// rejected here, since records without a resolvable location are
// filtered later during ranking.
func ReadRecords(r io.Reader, rf RecordFields) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	if h.optional(rf.PostalCode) < 0 && h.optional(rf.City) < 0 && h.optional(rf.Location) < 0 {
		return nil, fmt.Errorf("no location column found: want one of %q, %q or %q",
			rf.PostalCode, rf.City, rf.Location)
	}

	maxIdx := -1
	for _, i := range h {
		if i > maxIdx {
			maxIdx = i
		}
	}
	names := make([]string, maxIdx+1)
	for name, i := range h {
		names[i] = name
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record row: %w", err)
		}

		fields := make(map[string]string, len(row))
		for i, v := range row {
			if i < len(names) {
				fields[names[i]] = v
			}
		}
		records = append(records, Record{fields: fields, rf: rf})
	}
	return records, nil
}

// Candidates converts records to the interface slice gazetteer.Rank
// consumes.
func Candidates(records []Record) []gazetteer.Candidate {
	out := make([]gazetteer.Candidate, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
