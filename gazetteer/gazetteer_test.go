package gazetteer

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type GazetteerSuite struct {
	idx *Index
}

var _ = Suite(&GazetteerSuite{})

func (s *GazetteerSuite) SetUpSuite(c *C) {
	s.idx = Build(testPlaceRows())
}

func (s *GazetteerSuite) TestBuild(c *C) {
	c.Assert(s.idx, Not(IsNil))
	c.Assert(s.idx.Len(), Equals, len(testPlaceRows()))
	c.Assert(s.idx.Skipped(), Equals, 0)
	c.Assert(s.idx.PostalCodeCount(), Not(Equals), 0)
}

func (s *GazetteerSuite) TestEndToEnd(c *C) {
	// The whole flow of the search tool: resolve a ZIP origin, rank the
	// record pool around it, radius-filtered and distance-sorted.
	origin, ranked, dropped, err := s.idx.ResolveAndRank(
		"60602",
		[]Candidate{
			hintCandidate("Naperville"),
			hintCandidate("Springfield, IL"),
			hintCandidate("nowhere at all zzz"),
		},
		250, Miles,
	)
	c.Assert(err, IsNil)
	c.Assert(origin.Place.City, Equals, "Chicago")
	c.Assert(dropped, Equals, 1)
	c.Assert(len(ranked), Equals, 2)
	c.Assert(ranked[0].Match.Place.City, Equals, "Naperville")
	c.Assert(ranked[1].Match.Place.City, Equals, "Springfield")
	c.Assert(ranked[0].Distance <= ranked[1].Distance, Equals, true)
}

func (s *GazetteerSuite) TestPostalMissNeverFallsBack(c *C) {
	_, err := s.idx.Resolve("99998")
	c.Assert(err, Equals, ErrNotFound)
}
