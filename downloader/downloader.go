package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type GetOptions struct {
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration
}

// A thing capable of retrieving a timetable, optionally with caching
type Downloader interface {
	Get(ctx context.Context, source string, headers map[string]string, options GetOptions) ([]byte, error)
}

// True if source should be fetched over HTTP rather than read from
// the local filesystem.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Gets a timetable from a URL or local path. Doesn't cache. Provided
// as convenience for implementing custom Downloaders.
func Fetch(ctx context.Context, source string, headers map[string]string, options GetOptions) ([]byte, error) {
	if IsRemote(source) {
		return HTTPGet(ctx, source, headers, options)
	}
	return FileGet(source, options)
}

// Reads a local file. A file:// prefix is accepted.
func FileGet(source string, options GetOptions) ([]byte, error) {
	path := strings.TrimPrefix(source, "file://")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	body, err := readLimited(f, options.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return body, nil
}

// Gets a file. Doesn't cache.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := readLimited(resp.Body, options.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return body, nil
}

// Reads all of r. Input longer than max is an error rather than
// being truncated. A non-positive max means no limit.
func readLimited(r io.Reader, max int) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}

	body, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return nil, err
	}
	if len(body) > max {
		return nil, fmt.Errorf("exceeds max size of %d bytes", max)
	}

	return body, nil
}
