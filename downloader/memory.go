package downloader

import (
	"context"
	"sync"
	"time"
)

// Caches retrieved timetables in memory
type MemoryDownloader struct {
	mutex sync.Mutex
	cache map[string]downloaderCacheEntry

	TimeNow func() time.Time
	Fetch   func(ctx context.Context, source string, headers map[string]string, options GetOptions) ([]byte, error)
}

func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{
		cache:   make(map[string]downloaderCacheEntry),
		TimeNow: time.Now,
		Fetch:   Fetch,
	}
}

type downloaderCacheEntry struct {
	data       []byte
	expiration time.Time
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	source string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		defer d.mutex.Unlock()

		if entry, ok := d.cache[source]; ok {
			if entry.expiration.After(d.TimeNow()) {
				return entry.data, nil
			}
		}
	}

	body, err := d.Fetch(ctx, source, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.cache[source] = downloaderCacheEntry{
			data:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
	}

	return body, nil
}
