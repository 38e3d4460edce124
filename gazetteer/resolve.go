package gazetteer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrNotFound is returned when no matching tier can resolve the input.
// It is an explicit result, never a (0,0) default.
var ErrNotFound = errors.New("gazetteer: location not found")

// MatchKind identifies which lookup tier produced a match.
type MatchKind int

const (
	// MatchPostalCode is an exact postal code hit.
	MatchPostalCode MatchKind = iota
	// MatchCityState is an exact (city, state) hit.
	MatchCityState
	// MatchCity is a state-less city hit, first entry in insertion order.
	MatchCity
	// MatchFuzzy is an approximate city-name hit above the cutoff.
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchPostalCode:
		return "postal-code"
	case MatchCityState:
		return "city-state"
	case MatchCity:
		return "city"
	case MatchFuzzy:
		return "fuzzy"
	}
	return "unknown"
}

// Match is a successful resolution.
type Match struct {
	Place Place
	Kind  MatchKind
	// Ambiguous is set when a state-less city lookup found entries in
	// more than one state. The returned place is the first registered
	// for that name; callers wanting stricter behavior can reject
	// ambiguous matches.
	Ambiguous bool
}

// postalRe matches a 5-digit postal code anywhere in the input, with an
// optional "-NNNN" extension that is ignored.
var postalRe = regexp.MustCompile(`\b([0-9]{5})(?:-[0-9]{4})?\b`)

// maxResolveInputLen caps query length before any matching runs, keeping
// edit-distance cost bounded on hostile input.
const maxResolveInputLen = 256

// minFuzzyLen is the shortest place text eligible for fuzzy matching;
// one- and two-letter inputs match half the index at any useful cutoff.
const minFuzzyLen = 3

// Resolve converts free-form location text into a Match.
//
// A postal-code pattern in the input commits the lookup to the postal
// table: a miss there is a hard ErrNotFound with no fuzzy fallback,
// because codes are numerically dense and an approximate match would
// return a confidently wrong location. Otherwise the input is split on
// a comma into place and optional state token and resolved through
// exact (city, state), state-less city, and finally fuzzy city-name
// matching against the configured cutoff.
//
// Resolve is a pure function over the immutable index and is safe for
// concurrent use.
func (x *Index) Resolve(text string) (Match, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{}, ErrNotFound
	}
	if runes := []rune(text); len(runes) > maxResolveInputLen {
		text = string(runes[:maxResolveInputLen])
	}

	if m := postalRe.FindStringSubmatch(text); m != nil {
		if p, ok := x.byPostalCode[m[1]]; ok {
			return Match{Place: p, Kind: MatchPostalCode}, nil
		}
		return Match{}, ErrNotFound
	}

	place, stateToken := splitPlaceState(text)
	if place == "" {
		return Match{}, ErrNotFound
	}

	if stateToken != "" {
		if p, ok := x.byCityState[cityStateKey{place, stateToken}]; ok {
			return Match{Place: p, Kind: MatchCityState}, nil
		}
	}

	if m, ok := x.lookupCity(place); ok {
		return m, nil
	}

	if best, ok := x.fuzzyCityName(place); ok {
		if stateToken != "" {
			if p, ok := x.byCityState[cityStateKey{best, stateToken}]; ok {
				return Match{Place: p, Kind: MatchFuzzy}, nil
			}
		}
		if m, ok := x.lookupCity(best); ok {
			m.Kind = MatchFuzzy
			return m, nil
		}
	}

	return Match{}, ErrNotFound
}

// splitPlaceState splits "city[, state]" into normalized components.
// Extra commas beyond the first are folded into the state token.
func splitPlaceState(text string) (place, state string) {
	place, state, found := strings.Cut(text, ",")
	place = normalize(place)
	if !found {
		return place, ""
	}
	return place, normalize(strings.ReplaceAll(state, ",", " "))
}

// lookupCity is the state-less tier: the first place registered for the
// name, in reference-row insertion order. The result is flagged
// ambiguous when the name spans more than one state.
func (x *Index) lookupCity(city string) (Match, bool) {
	pool, ok := x.byCity[city]
	if !ok {
		return Match{}, false
	}
	return Match{
		Place:     pool[0],
		Kind:      MatchCity,
		Ambiguous: multiState(pool),
	}, true
}

func multiState(pool []Place) bool {
	for _, p := range pool[1:] {
		if !strings.EqualFold(p.State, pool[0].State) {
			return true
		}
	}
	return false
}

// fuzzyCityName finds the best approximate match for place in the city
// name pool, scored by normalized edit similarity. Ties keep the first
// name in insertion order so results are deterministic.
func (x *Index) fuzzyCityName(place string) (string, bool) {
	if len([]rune(place)) < minFuzzyLen {
		return "", false
	}

	best := ""
	bestScore := -1.0
	for _, name := range x.cityNames {
		score := similarity(place, name)
		if score >= x.cfg.fuzzyCutoff && score > bestScore {
			best = name
			bestScore = score
		}
	}
	return best, best != ""
}

// similarity is 1 - editDistance/maxLen on already-normalized strings,
// giving 1.0 for identical inputs and 0.0 for entirely different ones.
func similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
