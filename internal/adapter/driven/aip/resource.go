package aip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gregjones/httpcache"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// maxResourceBytes caps a downloaded document before it is base64 encoded.
const maxResourceBytes = 8 << 20

const (
	// resourceCacheEntries bounds how many responses the fetcher remembers.
	resourceCacheEntries = 16
	// maxCachedResponseBytes keeps large documents out of the cache entirely,
	// so the cache never holds more than entries * this many bytes.
	maxCachedResponseBytes = 1 << 20
)

// responseCache is an httpcache.Cache holding a bounded number of small
// responses, evicting the least recently used.
type responseCache struct {
	entries *lru.Cache[string, []byte]
}

var _ httpcache.Cache = (*responseCache)(nil)

func newResponseCache(size int) *responseCache {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		panic(fmt.Sprintf("resource cache size %d: %v", size, err))
	}
	return &responseCache{entries: entries}
}

func (c *responseCache) Get(key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *responseCache) Set(key string, resp []byte) {
	if len(resp) > maxCachedResponseBytes {
		c.entries.Remove(key)
		return
	}
	c.entries.Add(key, resp)
}

func (c *responseCache) Delete(key string) {
	c.entries.Remove(key)
}

// resourceFetcher downloads documents supplied by URL so they can be
// submitted inline. Every fetch reaches the origin: requests demand
// revalidation, so a cached copy is only reused when the origin answers
// 304 Not Modified to its ETag or Last-Modified validator.
type resourceFetcher struct {
	httpClient *http.Client
}

func newResourceFetcher(base *http.Client) *resourceFetcher {
	cacheTransport := httpcache.NewTransport(newResponseCache(resourceCacheEntries))
	if base != nil {
		cacheTransport.Transport = base.Transport
	}

	client := &http.Client{Transport: cacheTransport}
	if base != nil {
		client.Timeout = base.Timeout
	}

	return &resourceFetcher{httpClient: client}
}

// Fetch retrieves the document at rawURL. Every failure is a *model.ResourceFetchError.
func (f *resourceFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.ResourceFetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &model.ResourceFetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.ResourceFetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes+1))
	if err != nil {
		return nil, &model.ResourceFetchError{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	if len(data) > maxResourceBytes {
		return nil, &model.ResourceFetchError{URL: rawURL, Err: fmt.Errorf("document exceeds %d bytes", maxResourceBytes)}
	}

	slog.Debug("aip resource fetched",
		"url", rawURL,
		"bytes", len(data),
		"revalidated", resp.Header.Get(httpcache.XFromCache) != "",
	)

	return data, nil
}
