package game

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
)

// ReportLimit caps the matches listed per neighbor count in Groups.
const ReportLimit = 10

// Ranked returns the matches ordered by value (descending) then distance
// (ascending). Ties keep board scan order.
func (r Recommendation) Ranked() []Match {
	ranked := make([]Match, len(r.Matches))
	copy(ranked, r.Matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Distance < b.Distance
	})
	return ranked
}

// BestValue returns the highest valued match, closest to the centroid on
// equal value. It is confirmed unless the runner-up has the same value.
func (r Recommendation) BestValue() (Pick, bool) {
	ranked := r.Ranked()
	if len(ranked) == 0 {
		return Pick{}, false
	}
	confirmed := len(ranked) == 1 || ranked[0].Value != ranked[1].Value
	return Pick{Match: ranked[0], Confirmed: confirmed}, true
}

// BestMatch returns the match with the most full neighbors, falling back to
// value order on equal counts. It is confirmed unless the runner-up has as
// many neighbors.
func (r Recommendation) BestMatch() (Pick, bool) {
	ranked := r.Ranked()
	if len(ranked) == 0 {
		return Pick{}, false
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Neighbors > ranked[j].Neighbors
	})
	confirmed := len(ranked) == 1 || ranked[0].Neighbors != ranked[1].Neighbors
	return Pick{Match: ranked[0], Confirmed: confirmed}, true
}

// Groups buckets the ranked matches by neighbor count, fewest neighbors
// first, keeping at most limit matches per bucket (no cap when limit <= 0).
func (r Recommendation) Groups(limit int) []Group {
	buckets := treemap.NewWithIntComparator()
	for _, m := range r.Ranked() {
		var g *Group
		if v, ok := buckets.Get(m.Neighbors); ok {
			g = v.(*Group)
		} else {
			g = &Group{Neighbors: m.Neighbors}
			buckets.Put(m.Neighbors, g)
		}
		g.Total++
		if limit <= 0 || len(g.Matches) < limit {
			g.Matches = append(g.Matches, m)
		}
	}
	out := make([]Group, 0, buckets.Size())
	it := buckets.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*Group))
	}
	return out
}
