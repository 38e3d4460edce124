package gazetteer

import (
	"math"

	"github.com/umahmood/haversine"
)

// Unit selects the distance unit for the haversine formula.
type Unit int

const (
	// Kilometers uses the 6371 km Earth radius.
	Kilometers Unit = iota
	// Miles uses the 3958.8 mi Earth radius.
	Miles
)

func (u Unit) String() string {
	if u == Miles {
		return "mi"
	}
	return "km"
}

// Distance returns the great-circle distance between two coordinate
// pairs in the given unit. Either pair being invalid yields +Inf, which
// sorts last and is excluded by any finite radius without downstream
// special-casing. Distance is symmetric and zero for identical pairs.
func Distance(a, b Coordinates, unit Unit) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	mi, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lng},
		haversine.Coord{Lat: b.Lat, Lon: b.Lng},
	)
	if unit == Miles {
		return mi
	}
	return km
}
