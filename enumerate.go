package journeys

import (
	"context"

	"tidbyt.dev/journeys/model"
)

// One stop being expanded. Edges are walked in order; sub-paths
// found through the current edge are prefixed with stop and collected
// into paths.
type frame struct {
	stop      *Stop
	departure model.Clock
	edges     []Edge
	next      int
	edge      Edge
	paths     []Path
}

// Enumerates every simple path from origin to the stop named
// terminus, leaving no earlier than departure and using only edges of
// the given day type.
//
// An edge is taken if it departs no earlier than the time the
// traveller reaches its stop, and leads to a stop that is neither on
// the path so far nor in visited. Paths are returned in edge order,
// depth first. The visited map is not modified.
//
// The cache may be nil.
func Enumerate(
	ctx context.Context,
	origin *Stop,
	terminus string,
	departure model.Clock,
	day model.DayType,
	visited map[string]bool,
	cache *Cache,
) ([]Path, error) {
	// Stops on the current path plus those excluded by the caller.
	// When a frame is on top of the stack, this is exactly the set
	// its edges must avoid.
	onPath := make(map[string]bool, len(visited))
	for name, v := range visited {
		if v {
			onPath[name] = true
		}
	}

	key := func(s *Stop, t model.Clock) cacheKey {
		return cacheKey{origin: s.Name, terminus: terminus, departure: t, day: day}
	}

	// Resolves a stop without expanding it, if possible.
	resolve := func(s *Stop, t model.Clock) ([]Path, bool) {
		if s.Name == terminus {
			return []Path{{Departure: t, Stops: []*Stop{s}, Arrival: t}}, true
		}
		if cache != nil {
			return cache.lookup(key(s, t), onPath)
		}
		return nil, false
	}

	// Results may be shared with the cache, so callers get a copy.
	if paths, ok := resolve(origin, departure); ok {
		return append([]Path(nil), paths...), nil
	}

	stack := []*frame{}
	push := func(s *Stop, t model.Clock) {
		onPath[s.Name] = true
		stack = append(stack, &frame{
			stop:      s,
			departure: t,
			edges:     s.EdgesFor(day),
		})
	}
	push(origin, departure)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f := stack[len(stack)-1]

		if f.next >= len(f.edges) {
			stack = stack[:len(stack)-1]
			delete(onPath, f.stop.Name)
			if visited[f.stop.Name] {
				onPath[f.stop.Name] = true
			}
			if cache != nil {
				cache.insert(key(f.stop, f.departure), onPath, f.paths)
			}

			if len(stack) == 0 {
				return append([]Path(nil), f.paths...), nil
			}
			parent := stack[len(stack)-1]
			parent.paths = appendComposites(parent.paths, parent.stop, parent.edge, f.paths)
			continue
		}

		edge := f.edges[f.next]
		f.next += 1

		if edge.Departure.Before(f.departure) {
			continue
		}
		if onPath[edge.Target.Name] {
			continue
		}

		f.edge = edge
		if sub, ok := resolve(edge.Target, edge.Arrival); ok {
			f.paths = appendComposites(f.paths, f.stop, edge, sub)
			continue
		}
		push(edge.Target, edge.Arrival)
	}
}

// Prefixes each sub-path with stop, reached through edge.
func appendComposites(paths []Path, stop *Stop, edge Edge, sub []Path) []Path {
	for _, p := range sub {
		stops := make([]*Stop, 0, len(p.Stops)+1)
		stops = append(stops, stop)
		stops = append(stops, p.Stops...)

		edges := make([]Edge, 0, len(p.Edges)+1)
		edges = append(edges, edge)
		edges = append(edges, p.Edges...)

		paths = append(paths, Path{
			Departure: edge.Departure,
			Stops:     stops,
			Arrival:   p.Arrival,
			Edges:     edges,
		})
	}
	return paths
}
