package gazetteer

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Candidate is any record exposing a resolvable location hint: a postal
// code, a "city, state" pair, or free-form location text. An empty hint
// means the record carries no location and is skipped by Rank.
type Candidate interface {
	LocationHint() string
}

// RankedResult pairs a candidate with its resolved location and distance
// from the ranking origin.
type RankedResult struct {
	Candidate Candidate
	Match     Match
	Distance  float64
	Unit      Unit
}

// scored carries a per-candidate result through the worker fan-in along
// with its input position for the stable tie-break.
type scored struct {
	idx    int
	result RankedResult
}

// Rank resolves every candidate against the same index snapshot used for
// origin resolution, scores it by great-circle distance from origin,
// filters to distance <= radius, and returns the results in
// non-decreasing distance order with ties broken by input order.
//
// Candidates whose hint is empty or unresolvable are dropped, not
// errored; the second return value is how many were dropped, so callers
// can surface "some candidates excluded" separately from an empty
// result. Per-candidate resolution is fanned out across workers since
// the index is read-only and resolution is pure.
func (x *Index) Rank(origin Coordinates, candidates []Candidate, radius float64, unit Unit) ([]RankedResult, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	workers := runtime.NumCPU()
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan int, workers)
	results := make(chan scored, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				hint := candidates[i].LocationHint()
				if hint == "" {
					continue
				}
				m, err := x.Resolve(hint)
				if err != nil {
					continue
				}
				results <- scored{
					idx: i,
					result: RankedResult{
						Candidate: candidates[i],
						Match:     m,
						Distance:  Distance(origin, m.Place.Coordinates, unit),
						Unit:      unit,
					},
				}
			}
		}()
	}

	go func() {
		for i := range candidates {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	kept := make([]scored, 0, len(candidates))
	resolved := 0
	for s := range results {
		resolved++
		if s.result.Distance <= radius {
			kept = append(kept, s)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].result.Distance != kept[j].result.Distance {
			return kept[i].result.Distance < kept[j].result.Distance
		}
		return kept[i].idx < kept[j].idx
	})

	ranked := make([]RankedResult, len(kept))
	for i, s := range kept {
		ranked[i] = s.result
	}
	return ranked, len(candidates) - resolved
}

// ResolveAndRank resolves the origin query and ranks candidates around
// it. An unresolvable origin halts the whole operation with an error
// wrapping ErrNotFound, since there is nothing to rank against; this is
// distinct from candidates being excluded, which only reduces the
// result set.
func (x *Index) ResolveAndRank(query string, candidates []Candidate, radius float64, unit Unit) (Match, []RankedResult, int, error) {
	origin, err := x.Resolve(query)
	if err != nil {
		return Match{}, nil, 0, fmt.Errorf("resolving origin %q: %w", query, err)
	}
	ranked, dropped := x.Rank(origin.Place.Coordinates, candidates, radius, unit)
	return origin, ranked, dropped, nil
}
