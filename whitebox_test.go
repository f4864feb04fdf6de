package journeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/journeys/model"
)

// Don't love this, but the cache's ancestry bookkeeping is finicky
// and needs testing.

func TestWhiteboxAppendComposites(t *testing.T) {
	a, b, c := &Stop{Name: "A"}, &Stop{Name: "B"}, &Stop{Name: "C"}
	bc := Edge{Departure: model.NewClock(8, 10), Arrival: model.NewClock(8, 20), Target: c}
	ab := Edge{Departure: model.NewClock(8, 0), Arrival: model.NewClock(8, 5), Target: b}

	sub := []Path{{
		Departure: bc.Departure,
		Stops:     []*Stop{b, c},
		Arrival:   bc.Arrival,
		Edges:     []Edge{bc},
	}}

	paths := appendComposites(nil, a, ab, sub)
	require.Equal(t, 1, len(paths))
	assert.Equal(t, "(08:00) A -> B -> C (08:20)", paths[0].String())
	assert.Equal(t, []Edge{ab, bc}, paths[0].Edges)

	// The sub-path is not modified
	assert.Equal(t, []*Stop{b, c}, sub[0].Stops)
	assert.Equal(t, 1, len(sub[0].Edges))
}

func TestWhiteboxTouches(t *testing.T) {
	a, b, c := &Stop{Name: "A"}, &Stop{Name: "B"}, &Stop{Name: "C"}
	p := Path{Stops: []*Stop{a, b, c}}

	// The origin itself doesn't count
	assert.False(t, touches(p, map[string]bool{"A": true}))
	assert.True(t, touches(p, map[string]bool{"B": true}))
	assert.True(t, touches(p, map[string]bool{"C": true}))
	assert.False(t, touches(p, map[string]bool{}))
}

func TestWhiteboxCacheLookup(t *testing.T) {
	a, b, c := &Stop{Name: "A"}, &Stop{Name: "B"}, &Stop{Name: "C"}
	key := cacheKey{origin: "A", terminus: "C", departure: model.NewClock(8, 0), day: model.DayTypeWeekday}
	paths := []Path{
		{Stops: []*Stop{a, b, c}},
		{Stops: []*Stop{a, c}},
	}

	for _, tc := range []struct {
		policy  CachePolicy
		visited map[string]bool
		hit     bool
		count   int
	}{
		{CacheChecked, map[string]bool{}, false, 0},
		{CacheChecked, map[string]bool{"X": true}, true, 2},
		{CacheChecked, map[string]bool{"X": true, "B": true}, true, 1},
		{CacheUnchecked, map[string]bool{}, true, 2},
		{CacheUnchecked, map[string]bool{"B": true}, true, 2},
	} {
		cache := NewCache(0, tc.policy)

		visited := map[string]bool{"X": true}
		cache.insert(key, visited, paths)

		// Later changes to the caller's map don't leak in
		visited["Y"] = true

		found, hit := cache.lookup(key, tc.visited)
		assert.Equal(t, tc.hit, hit, "%s %v", tc.policy, tc.visited)
		assert.Equal(t, tc.count, len(found), "%s %v", tc.policy, tc.visited)
	}
}

func TestWhiteboxCacheKeepsFirstEntry(t *testing.T) {
	a, b := &Stop{Name: "A"}, &Stop{Name: "B"}
	key := cacheKey{origin: "A", terminus: "B", departure: model.NewClock(8, 0)}

	cache := NewCache(0, CacheChecked)
	cache.insert(key, map[string]bool{}, []Path{{Stops: []*Stop{a, b}}})
	cache.insert(key, map[string]bool{}, nil)

	found, hit := cache.lookup(key, map[string]bool{})
	assert.True(t, hit)
	assert.Equal(t, 1, len(found))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, uint64(1), cache.Hits())
}
