// Package gazetteer resolves free-form location text (US postal codes or
// "city, state" strings) against an in-memory reference index and ranks
// location-bearing records by great-circle distance from a resolved origin.
//
// The index is built once from reference place rows and is immutable
// afterwards, so it is safe for unsynchronized concurrent reads.
package gazetteer

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/TomiHiltunen/geohash-golang"
	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinates are finite and within
// [-90,90] / [-180,180].
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// PlaceRecord is a single row of the reference dataset. StateID is the
// two-letter abbreviation and StateName the full name; at least one should
// be present for state-qualified lookups to work, but a row without either
// is still indexed by city name alone. Zips is a free-form blob that is
// scanned for 5-digit postal codes, so both whitespace-separated lists and
// embedded "60602-1234" formats work.
type PlaceRecord struct {
	City      string
	StateID   string
	StateName string
	Lat       float64
	Lng       float64
	Zips      string
}

// Place is an indexed location with display metadata.
type Place struct {
	City  string
	State string // abbreviation when known, otherwise the raw state token
	Coordinates
}

// geohashPrecision gives ~5m cells, plenty for city centroids.
const geohashPrecision = 9

// Geohash returns a compact base-32 cell identifier for the place,
// suitable for display and log output.
func (p Place) Geohash() string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, geohashPrecision)
}

type cityStateKey struct {
	city  string
	state string
}

// config holds tunables applied via Option values.
type config struct {
	fuzzyCutoff float64
}

// defaultFuzzyCutoff is the minimum normalized edit similarity for a
// fuzzy city-name match. Edit distance scores a swapped-letter typo in a
// seven-letter name at 5/7 ~= 0.714, so the default sits just under that
// while still rejecting unrelated strings. Tune with WithFuzzyCutoff.
const defaultFuzzyCutoff = 0.70

// Option is a functional option for configuring an Index.
type Option func(*config)

// WithFuzzyCutoff sets the minimum similarity (0..1) required for a fuzzy
// city-name match. Higher values are stricter.
func WithFuzzyCutoff(cutoff float64) Option {
	return func(c *config) {
		c.fuzzyCutoff = cutoff
	}
}

// Index is an immutable gazetteer lookup structure. Build it once with
// Build; all methods are read-only and safe for concurrent use.
type Index struct {
	byPostalCode map[string]Place
	byCityState  map[cityStateKey]Place
	byCity       map[string][]Place // state-less pool, insertion order
	cityNames    []string           // distinct normalized names, fuzzy pool
	places       []Place            // every indexed place, insertion order
	cellIndex    map[s2.CellID][]int
	rtree        *rtreego.Rtree
	skipped      int
	cfg          config
}

// zipRe extracts every 5-digit run from a postal code blob. A "-NNNN"
// extension is 4 digits and therefore never matches.
var zipRe = regexp.MustCompile(`[0-9]{5}`)

// Build constructs an Index from reference rows. Rows with missing or
// out-of-range coordinates are skipped whole, never partially indexed;
// the count of skipped rows is available via Skipped so callers can log
// it. Build never fails: an empty or fully-malformed input yields a
// usable empty index, and callers wanting fail-fast behavior should
// check Len themselves.
func Build(rows []PlaceRecord, opts ...Option) *Index {
	cfg := config{fuzzyCutoff: defaultFuzzyCutoff}
	for _, opt := range opts {
		opt(&cfg)
	}

	x := &Index{
		byPostalCode: make(map[string]Place),
		byCityState:  make(map[cityStateKey]Place),
		byCity:       make(map[string][]Place),
		cfg:          cfg,
	}

	seenNames := make(map[string]bool)

	for _, row := range rows {
		coords := Coordinates{Lat: row.Lat, Lng: row.Lng}
		city := normalize(row.City)
		if !coords.Valid() || city == "" {
			x.skipped++
			continue
		}

		abbrev, full := stateTokens(row.StateID, row.StateName)

		p := Place{
			City:        strings.TrimSpace(row.City),
			State:       displayState(abbrev, full),
			Coordinates: coords,
		}
		x.places = append(x.places, p)

		if abbrev != "" {
			x.byCityState[cityStateKey{city, normalize(abbrev)}] = p
		}
		if full != "" {
			x.byCityState[cityStateKey{city, normalize(full)}] = p
		}

		x.byCity[city] = append(x.byCity[city], p)
		if !seenNames[city] {
			seenNames[city] = true
			x.cityNames = append(x.cityNames, city)
		}

		// Last write wins on duplicate codes; the reference data defines
		// no better policy for a code bound to two coordinates.
		for _, code := range zipRe.FindAllString(row.Zips, -1) {
			x.byPostalCode[code] = p
		}
	}

	x.buildCellIndex()
	x.buildRtree()
	return x
}

// Len returns the number of indexed places.
func (x *Index) Len() int {
	return len(x.places)
}

// Skipped returns the number of reference rows excluded during Build for
// missing or invalid coordinates.
func (x *Index) Skipped() int {
	return x.skipped
}

// PostalCodeCount returns the number of distinct postal codes indexed.
func (x *Index) PostalCodeCount() int {
	return len(x.byPostalCode)
}

// stateTokens reconciles the two state fields of a row. When only one
// form is present the other is derived from the US state table so either
// form resolves later.
func stateTokens(stateID, stateName string) (abbrev, full string) {
	abbrev = strings.ToUpper(strings.TrimSpace(stateID))
	full = strings.TrimSpace(stateName)

	if abbrev != "" && full == "" {
		full = UsStateCodes[abbrev]
	}
	if abbrev == "" && full != "" {
		abbrev = stateAbbrevFor(full)
	}
	return abbrev, full
}

func displayState(abbrev, full string) string {
	if abbrev != "" {
		return abbrev
	}
	return full
}

// normalize produces the canonical key form of a city or state token:
// trimmed and case-folded. strings.ToLower is Unicode-aware, which
// matters for names like "Doña Ana".
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UsStateCodes maps US state abbreviations to full names, covering
// territories and armed-forces codes as they appear in reference data.
var UsStateCodes = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
	// Territories
	"AS": "American Samoa", "DC": "District of Columbia",
	"FM": "Federated States of Micronesia", "GU": "Guam",
	"MH": "Marshall Islands", "MP": "Northern Mariana Islands",
	"PW": "Palau", "PR": "Puerto Rico", "VI": "Virgin Islands",
	// Armed Forces
	"AA": "Armed Forces Americas", "AE": "Armed Forces Europe", "AP": "Armed Forces Pacific",
}

// usStateAbbrevs is the reverse of UsStateCodes, keyed by normalized
// full name. Computed once.
var usStateAbbrevs = sync.OnceValue(func() map[string]string {
	m := make(map[string]string, len(UsStateCodes))
	for abbrev, name := range UsStateCodes {
		m[normalize(name)] = abbrev
	}
	return m
})

// stateAbbrevFor returns the abbreviation for a full US state name, or
// "" when the name is not a known state.
func stateAbbrevFor(name string) string {
	return usStateAbbrevs()[normalize(name)]
}
