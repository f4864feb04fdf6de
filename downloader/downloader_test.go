package downloader_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/journeys/downloader"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, downloader.IsRemote("http://example.com/line.txt"))
	assert.True(t, downloader.IsRemote("https://example.com/line.txt"))
	assert.False(t, downloader.IsRemote("data/line.txt"))
	assert.False(t, downloader.IsRemote("file:///tmp/line.txt"))
	assert.False(t, downloader.IsRemote("/tmp/line.txt"))
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.txt")
	require.NoError(t, os.WriteFile(path, []byte("A N B"), 0644))

	body, err := downloader.Fetch(context.Background(), path, nil, downloader.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "A N B", string(body))

	body, err = downloader.Fetch(context.Background(), "file://"+path, nil, downloader.GetOptions{MaxSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "A N B", string(body))

	// Oversize files are rejected, not truncated
	_, err = downloader.Fetch(context.Background(), "file://"+path, nil, downloader.GetOptions{MaxSize: 3})
	assert.Error(t, err)

	_, err = downloader.Fetch(context.Background(), path+".missing", nil, downloader.GetOptions{})
	assert.Error(t, err)
}

func TestHTTPGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "agent=%s", r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	body, err := downloader.Fetch(
		context.Background(),
		server.URL+"/line.txt",
		map[string]string{"User-Agent": "journeys"},
		downloader.GetOptions{Timeout: time.Second},
	)
	require.NoError(t, err)
	assert.Equal(t, "agent=journeys", string(body))

	body, err = downloader.Fetch(
		context.Background(),
		server.URL+"/line.txt",
		map[string]string{"User-Agent": "journeys"},
		downloader.GetOptions{MaxSize: len("agent=journeys")},
	)
	require.NoError(t, err)
	assert.Equal(t, "agent=journeys", string(body))

	_, err = downloader.Fetch(
		context.Background(),
		server.URL+"/line.txt",
		map[string]string{"User-Agent": "journeys"},
		downloader.GetOptions{MaxSize: 5},
	)
	assert.Error(t, err)

	_, err = downloader.Fetch(context.Background(), server.URL+"/missing", nil, downloader.GetOptions{})
	assert.Error(t, err)
}

func TestMemoryDownloaderCaching(t *testing.T) {
	calls := 0
	now := time.Unix(1700000000, 0)

	d := downloader.NewMemoryDownloader()
	d.TimeNow = func() time.Time { return now }
	d.Fetch = func(ctx context.Context, source string, headers map[string]string, options downloader.GetOptions) ([]byte, error) {
		calls += 1
		return []byte(fmt.Sprintf("%s-%d", source, calls)), nil
	}

	opts := downloader.GetOptions{Cache: true, CacheTTL: time.Minute}

	body, err := d.Get(context.Background(), "a", nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "a-1", string(body))

	// Cached
	body, err = d.Get(context.Background(), "a", nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "a-1", string(body))

	// Uncached request bypasses the cache
	body, err = d.Get(context.Background(), "a", nil, downloader.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a-2", string(body))

	// Expired
	now = now.Add(2 * time.Minute)
	body, err = d.Get(context.Background(), "a", nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "a-3", string(body))
}

func TestFilesystemDownloader(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "line.txt")
	require.NoError(t, os.WriteFile(source, []byte("first"), 0644))

	cacheFile := filepath.Join(dir, "cache.json")
	fs, err := downloader.NewFilesystem(cacheFile)
	require.NoError(t, err)

	opts := downloader.GetOptions{Cache: true, CacheTTL: time.Hour}
	body, err := fs.Get(context.Background(), source, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "first", string(body))

	// Source changes, but the cache (reloaded from disk) still
	// serves the first version.
	require.NoError(t, os.WriteFile(source, []byte("second"), 0644))
	fs, err = downloader.NewFilesystem(cacheFile)
	require.NoError(t, err)
	body, err = fs.Get(context.Background(), source, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "first", string(body))

	body, err = fs.Get(context.Background(), source, nil, downloader.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "second", string(body))
}
