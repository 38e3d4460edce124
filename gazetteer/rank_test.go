package gazetteer

import (
	"errors"
	"testing"
)

// hintCandidate is the simplest possible Candidate: its hint is itself.
type hintCandidate string

func (h hintCandidate) LocationHint() string { return string(h) }

func candidates(hints ...string) []Candidate {
	out := make([]Candidate, len(hints))
	for i, h := range hints {
		out[i] = hintCandidate(h)
	}
	return out
}

func TestRankOrderingAndFiltering(t *testing.T) {
	idx := Build(testPlaceRows())
	columbus := Coordinates{39.9612, -82.9988}

	ranked, dropped := idx.Rank(columbus, candidates(
		"Austin, TX",    // ~1070 mi, outside radius
		"Chicago, IL",   // ~275 mi
		"43215",         // Columbus itself, 0
		"Unknowntown",   // unresolvable, dropped
		"",              // no hint, dropped
		"60601",         // Chicago again, same coords as "Chicago, IL"
	), 500, Miles)

	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Distance < ranked[i-1].Distance {
			t.Errorf("results not in non-decreasing order at %d: %v < %v",
				i, ranked[i].Distance, ranked[i-1].Distance)
		}
	}

	if ranked[0].Distance != 0 || ranked[0].Match.Place.City != "Columbus" {
		t.Errorf("ranked[0] = %q at %v, want Columbus at 0", ranked[0].Match.Place.City, ranked[0].Distance)
	}

	// "Chicago, IL" and "60601" resolve to identical coordinates; the
	// tie must break by input order.
	if ranked[1].Candidate.(hintCandidate) != "Chicago, IL" {
		t.Errorf("ranked[1] = %q, want Chicago, IL (stable tie-break)", ranked[1].Candidate)
	}
	if ranked[2].Candidate.(hintCandidate) != "60601" {
		t.Errorf("ranked[2] = %q, want 60601", ranked[2].Candidate)
	}
}

func TestRankRadiusSubsetProperty(t *testing.T) {
	idx := Build(testPlaceRows())
	columbus := Coordinates{39.9612, -82.9988}
	cands := candidates("43215", "Chicago, IL", "Springfield, IL", "Austin, TX", "Naperville")

	var prev []RankedResult
	for _, radius := range []float64{5, 320, 1200} {
		ranked, _ := idx.Rank(columbus, cands, radius, Miles)
		for i, r := range prev {
			if i >= len(ranked) || ranked[i].Candidate != r.Candidate {
				t.Fatalf("radius %v results are not a prefix-preserving superset of the smaller radius", radius)
			}
		}
		prev = ranked
	}
	if len(prev) != len(cands) {
		t.Errorf("radius 1200 kept %d of %d candidates", len(prev), len(cands))
	}
}

func TestRankZeroRadiusInclusiveBoundary(t *testing.T) {
	idx := Build(testPlaceRows())
	columbus := Coordinates{39.9612, -82.9988}

	ranked, _ := idx.Rank(columbus, candidates("43215", "Chicago, IL"), 0, Miles)
	if len(ranked) != 1 {
		t.Fatalf("len(ranked) = %d, want 1", len(ranked))
	}
	if ranked[0].Distance != 0 {
		t.Errorf("distance = %v, want exactly 0", ranked[0].Distance)
	}
}

func TestRankEmptyInputs(t *testing.T) {
	idx := Build(testPlaceRows())

	ranked, dropped := idx.Rank(Coordinates{40, -83}, nil, 100, Miles)
	if ranked != nil || dropped != 0 {
		t.Errorf("Rank(nil) = %v, %d; want nil, 0", ranked, dropped)
	}

	ranked, dropped = idx.Rank(Coordinates{40, -83}, candidates("Unknowntown", ""), 100, Miles)
	if len(ranked) != 0 || dropped != 2 {
		t.Errorf("all-unresolvable Rank = %d results, %d dropped; want 0, 2", len(ranked), dropped)
	}
}

func TestResolveAndRank(t *testing.T) {
	idx := Build(testPlaceRows())

	t.Run("origin not found halts ranking", func(t *testing.T) {
		_, ranked, _, err := idx.ResolveAndRank("00000", candidates("43215"), 100, Miles)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if ranked != nil {
			t.Errorf("ranked = %v, want nil when origin fails", ranked)
		}
	})

	t.Run("reduced result set is not an error", func(t *testing.T) {
		origin, ranked, dropped, err := idx.ResolveAndRank("Columbus, OH", candidates("43215", "Unknowntown"), 100, Miles)
		if err != nil {
			t.Fatal(err)
		}
		if origin.Place.State != "OH" {
			t.Errorf("origin state = %q, want OH", origin.Place.State)
		}
		if len(ranked) != 1 || dropped != 1 {
			t.Errorf("got %d results, %d dropped; want 1, 1", len(ranked), dropped)
		}
	})
}
