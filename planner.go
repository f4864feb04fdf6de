package journeys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"tidbyt.dev/journeys/model"
)

// Answers journey queries over a network.
type Planner struct {
	Network     *Network
	CacheSize   int
	CachePolicy CachePolicy
	Logger      *log.Logger
}

func NewPlanner(network *Network) *Planner {
	return &Planner{
		Network:     network,
		CacheSize:   DefaultCacheSize,
		CachePolicy: CacheChecked,
		Logger:      log.New(io.Discard, "", 0),
	}
}

// Creates an empty cache matching the planner's settings.
func (p *Planner) NewCache() *Cache {
	return NewCache(p.CacheSize, p.CachePolicy)
}

// Best paths from origin to terminus leaving no earlier than
// departure. Returns ErrNoPath if there are none, ErrUnknownStop if
// either stop is missing from the network.
func (p *Planner) BestPaths(
	ctx context.Context,
	origin string,
	terminus string,
	departure model.Clock,
	day model.DayType,
) (*Selection, error) {
	from, err := p.Network.Stop(origin)
	if err != nil {
		return nil, err
	}
	if _, err := p.Network.Stop(terminus); err != nil {
		return nil, err
	}

	return p.bestPaths(ctx, from, terminus, departure, day, p.NewCache())
}

func (p *Planner) bestPaths(
	ctx context.Context,
	origin *Stop,
	terminus string,
	departure model.Clock,
	day model.DayType,
	cache *Cache,
) (*Selection, error) {
	paths, err := Enumerate(ctx, origin, terminus, departure, day, nil, cache)
	if err != nil {
		return nil, fmt.Errorf("enumerating paths: %w", err)
	}
	return Select(paths)
}

// Outcome of a single destination in a batch. Err is ErrNoPath when
// the destination can't be reached.
type Reachable struct {
	Destination string
	Selection   *Selection
	Err         error
	Elapsed     time.Duration
}

type Batch struct {
	Origin    string
	Departure model.Clock
	Day       model.DayType
	Results   []Reachable
	CacheHits uint64
	CacheLen  int
	Elapsed   time.Duration
}

// Best paths from origin to every stop of the network, leaving no
// earlier than departure. Destinations are those of the network
// filtered at departure, in network order.
//
// All queries in the batch share the cache, which is created if nil.
// Unreachable destinations are recorded in the batch rather than
// returned as errors.
func (p *Planner) BestPathsFrom(
	ctx context.Context,
	origin string,
	departure model.Clock,
	day model.DayType,
	cache *Cache,
) (*Batch, error) {
	from, err := p.Network.Stop(origin)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = p.NewCache()
	}

	batch := &Batch{
		Origin:    origin,
		Departure: departure,
		Day:       day,
	}
	start := time.Now()

	for _, dest := range p.Network.Filter(departure, day).Stops() {
		queryStart := time.Now()
		selection, err := p.bestPaths(ctx, from, dest.Name, departure, day, cache)
		if err != nil && !errors.Is(err, ErrNoPath) {
			return nil, fmt.Errorf("querying %s -> %s: %w", origin, dest.Name, err)
		}

		batch.Results = append(batch.Results, Reachable{
			Destination: dest.Name,
			Selection:   selection,
			Err:         err,
			Elapsed:     time.Since(queryStart),
		})
		p.Logger.Printf(
			"%s -> %s at %s (%s): cache has %d entries, %d hits",
			origin, dest.Name, departure, day, cache.Len(), cache.Hits(),
		)
	}

	batch.CacheHits = cache.Hits()
	batch.CacheLen = cache.Len()
	batch.Elapsed = time.Since(start)

	return batch, nil
}
