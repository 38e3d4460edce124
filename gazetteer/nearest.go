package gazetteer

import (
	"math"

	"github.com/golang/geo/s2"
)

// s2CellLevel sets the granularity of the spatial cell index used by
// Nearest. Level 10 cells are roughly 10km x 10km at the equator, small
// enough to keep candidate lists short without fragmenting a metro area
// across many cells.
const s2CellLevel = 10

// maxNearestKm bounds how far Nearest will reach. Beyond this the query
// point is considered too remote to name.
const maxNearestKm = 100

// buildCellIndex groups indexed places by their level-10 S2 cell.
func (x *Index) buildCellIndex() {
	x.cellIndex = make(map[s2.CellID][]int)
	for i, p := range x.places {
		ll := s2.LatLngFromDegrees(p.Lat, p.Lng)
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		x.cellIndex[cell] = append(x.cellIndex[cell], i)
	}
}

// cellAndNeighbors returns the cell plus its edge and corner neighbors,
// deduplicated.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	cells = append(cells, edgeNeighbors[:]...)

	seen := make(map[s2.CellID]bool)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edgeNeighbors[i].EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

// Nearest returns the indexed place closest to the given coordinates, or
// false when the point is invalid, the index is empty, or nothing lies
// within maxNearestKm. Ties at equal distance break on city name so the
// result is deterministic.
func (x *Index) Nearest(lat, lng float64) (Place, bool) {
	q := Coordinates{Lat: lat, Lng: lng}
	if !q.Valid() {
		return Place{}, false
	}

	queryCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(s2CellLevel)

	best := Place{}
	bestDist := math.Inf(1)
	for _, cell := range cellAndNeighbors(queryCell) {
		for _, i := range x.cellIndex[cell] {
			p := x.places[i]
			d := Distance(q, p.Coordinates, Kilometers)
			if d < bestDist || (d == bestDist && p.City < best.City) {
				best = p
				bestDist = d
			}
		}
	}

	if bestDist > maxNearestKm {
		return Place{}, false
	}
	return best, true
}
