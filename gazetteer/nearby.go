package gazetteer

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// kmPerMile converts a miles radius to kilometers for the bounding-rect
// estimate.
const kmPerMile = 1.609344

// kmPerDegreeLat is the approximate north-south extent of one degree of
// latitude.
const kmPerDegreeLat = 111.045

// placeItem adapts an indexed place to the rtreego Spatial interface.
// Places are stored as near-degenerate rects around their centroid.
type placeItem struct {
	rect rtreego.Rect
	idx  int
}

func (p *placeItem) Bounds() rtreego.Rect {
	return p.rect
}

// buildRtree indexes place centroids in an R-tree for radius scans.
func (x *Index) buildRtree() {
	x.rtree = rtreego.NewTree(2, 25, 50)
	for i, p := range x.places {
		rect, err := rtreego.NewRect(rtreego.Point{p.Lng, p.Lat}, []float64{1e-6, 1e-6})
		if err != nil {
			continue
		}
		x.rtree.Insert(&placeItem{rect: rect, idx: i})
	}
}

// Nearby returns every indexed place within radius of origin, closest
// first with ties broken by city name. The R-tree narrows candidates to
// a bounding rectangle padded past the radius; the exact haversine
// distance then applies the real, inclusive cutoff.
func (x *Index) Nearby(origin Coordinates, radius float64, unit Unit) []Place {
	if !origin.Valid() || radius < 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return nil
	}

	radiusKm := radius
	if unit == Miles {
		radiusKm = radius * kmPerMile
	}

	// Pad the rect 10% beyond the radius so boundary places survive the
	// degree approximation. Longitude degrees shrink with latitude. The
	// floor keeps the rect non-degenerate for a zero radius.
	latDelta := math.Max(radiusKm/kmPerDegreeLat*1.1, 1e-4)
	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	lngDelta := 180.0
	if cosLat > 0.01 {
		lngDelta = math.Min(latDelta/cosLat, 180)
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{origin.Lng - lngDelta, origin.Lat - latDelta},
		[]float64{2 * lngDelta, 2 * latDelta},
	)
	if err != nil {
		return nil
	}

	type hit struct {
		place Place
		dist  float64
	}
	var hits []hit
	for _, item := range x.rtree.SearchIntersect(rect) {
		p := x.places[item.(*placeItem).idx]
		d := Distance(origin, p.Coordinates, unit)
		if d <= radius {
			hits = append(hits, hit{place: p, dist: d})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].place.City < hits[j].place.City
	})

	places := make([]Place, len(hits))
	for i, h := range hits {
		places[i] = h.place
	}
	return places
}
