package journeys

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bluele/gcache"

	"tidbyt.dev/journeys/model"
)

const DefaultCacheSize = 2048

type CachePolicy int

const (
	// Entries are reused only when computed under a subset of the
	// current visited stops. Paths through stops visited since are
	// dropped on reuse.
	CacheChecked CachePolicy = iota

	// Entries are reused on key alone. Results may then include
	// paths that revisit a stop.
	CacheUnchecked
)

func (p CachePolicy) String() string {
	if p == CacheUnchecked {
		return "unchecked"
	}
	return "checked"
}

func ParseCachePolicy(s string) (CachePolicy, error) {
	switch strings.ToLower(s) {
	case "", "checked":
		return CacheChecked, nil
	case "unchecked":
		return CacheUnchecked, nil
	}
	return CacheChecked, fmt.Errorf("unknown cache policy '%s'", s)
}

type cacheKey struct {
	origin    string
	terminus  string
	departure model.Clock
	day       model.DayType
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s -> %s (%s, %s)", k.origin, k.terminus, k.departure, k.day)
}

type cacheEntry struct {
	paths   []Path
	visited map[string]bool
}

// Memoizes enumeration subtrees by (origin, terminus, departure, day
// type). The cache is bounded: once full, new results are dropped and
// nothing is evicted. Safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	store  gcache.Cache
	max    int
	policy CachePolicy
	hits   uint64
}

// Creates a cache holding at most max entries. A non-positive max
// means DefaultCacheSize.
func NewCache(max int, policy CachePolicy) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		store:  gcache.New(max).Simple().Build(),
		max:    max,
		policy: policy,
	}
}

func (c *Cache) Policy() CachePolicy {
	return c.policy
}

// Number of subqueries answered from the cache since the last reset.
func (c *Cache) Hits() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func (c *Cache) Len() int {
	return c.store.Len(false)
}

func (c *Cache) Full() bool {
	return c.Len() >= c.max
}

// Drops all entries and the hit counter.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Purge()
	c.hits = 0
}

func (c *Cache) lookup(key cacheKey, visited map[string]bool) ([]Path, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.store.Get(key)
	if err != nil {
		return nil, false
	}
	entry := value.(*cacheEntry)

	if c.policy == CacheUnchecked {
		c.hits += 1
		return entry.paths, true
	}

	for name := range entry.visited {
		if !visited[name] {
			return nil, false
		}
	}

	paths := make([]Path, 0, len(entry.paths))
	for _, p := range entry.paths {
		if !touches(p, visited) {
			paths = append(paths, p)
		}
	}
	c.hits += 1
	return paths, true
}

func (c *Cache) insert(key cacheKey, visited map[string]bool, paths []Path) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.Len(false) >= c.max {
		return
	}
	if c.store.Has(key) {
		return
	}

	v := make(map[string]bool, len(visited))
	for name := range visited {
		v[name] = true
	}
	// Simple caches only fail Set through a custom serializer, which
	// isn't configured.
	if err := c.store.Set(key, &cacheEntry{paths: paths, visited: v}); err != nil {
		return
	}
}

// Writes every entry and its paths, one path per line.
func (c *Cache) Dump(w io.Writer) error {
	c.mu.Lock()
	all := c.store.GetALL(false)
	c.mu.Unlock()

	keys := make([]cacheKey, 0, len(all))
	for k := range all {
		keys = append(keys, k.(cacheKey))
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].origin != keys[j].origin {
			return keys[i].origin < keys[j].origin
		}
		if keys[i].terminus != keys[j].terminus {
			return keys[i].terminus < keys[j].terminus
		}
		if keys[i].departure != keys[j].departure {
			return keys[i].departure.Before(keys[j].departure)
		}
		return keys[i].day < keys[j].day
	})

	for _, k := range keys {
		entry := all[k].(*cacheEntry)
		if _, err := fmt.Fprintf(w, "%s:\n", k); err != nil {
			return err
		}
		if len(entry.paths) == 0 {
			if _, err := fmt.Fprintf(w, "\tno path\n"); err != nil {
				return err
			}
			continue
		}
		for _, p := range entry.paths {
			if _, err := fmt.Fprintf(w, "\t%s\n", p); err != nil {
				return err
			}
		}
	}

	return nil
}

// True if any stop after the origin of p is in the set.
func touches(p Path, visited map[string]bool) bool {
	for _, s := range p.Stops[1:] {
		if visited[s.Name] {
			return true
		}
	}
	return false
}
