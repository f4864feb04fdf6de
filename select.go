package journeys

import (
	"errors"
)

var ErrNoPath = errors.New("no path")

// The best of a set of paths under each criterion. The three may be
// the same path.
type Selection struct {
	Count    int
	Foremost Path
	Shortest Path
	Fastest  Path
}

// Picks the foremost, shortest and fastest paths in a single scan.
// Ties keep the earlier path, except where a criterion breaks ties on
// arrival.
func Select(paths []Path) (*Selection, error) {
	if len(paths) == 0 {
		return nil, ErrNoPath
	}

	foremost, shortest, fastest := paths[0], paths[0], paths[0]
	for _, p := range paths[1:] {
		if p.IsShorter(shortest) {
			shortest = p
		}
		if p.IsFaster(fastest) {
			fastest = p
		}
		if p.IsForemost(foremost) {
			foremost = p
		}
	}

	return &Selection{
		Count:    len(paths),
		Foremost: foremost,
		Shortest: shortest,
		Fastest:  fastest,
	}, nil
}
