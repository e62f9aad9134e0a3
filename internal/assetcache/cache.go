// Package assetcache keeps an offline copy of the app's static assets on
// disk. It mirrors a service worker's lifecycle: install pre-caches a fixed
// asset list into a versioned cache, activate evicts caches from older
// versions, and fetch serves requests network-first or cache-first depending
// on what is being asked for.
package assetcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/julianstephens/tickcal/internal/errors"
	"github.com/julianstephens/tickcal/internal/logger"
)

// dynamicCacheName holds responses cached at fetch time. It is not
// versioned, so it survives activation of a new asset version.
const dynamicCacheName = "dynamic"

// DefaultAssets is the core asset list pre-cached at install time.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/style.css",
	"/script.js",
	"/logo.png",
	"/manifest.json",
}

// Source says where a fetched response came from.
type Source string

const (
	SourceNetwork   Source = "network"
	SourceCache     Source = "cache"
	SourceSynthetic Source = "synthetic"
)

// Result is the outcome of a Fetch.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Source      Source
}

// Worker serves asset requests from the network and a disk cache.
type Worker struct {
	version string
	dir     string
	baseURL string
	assets  []string
	client  *http.Client

	refreshes sync.WaitGroup
}

// Option configures a Worker.
type Option func(*Worker)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(w *Worker) { w.client = client }
}

// WithAssets overrides the pre-cached asset list.
func WithAssets(assets []string) Option {
	return func(w *Worker) { w.assets = assets }
}

// NewWorker creates a worker that caches assets from baseURL under dir,
// in a subdirectory named after version.
func NewWorker(version, dir, baseURL string, opts ...Option) *Worker {
	w := &Worker{
		version: version,
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		assets:  DefaultAssets,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) versionDir() string {
	return filepath.Join(w.dir, w.version)
}

func (w *Worker) dynamicDir() string {
	return filepath.Join(w.dir, dynamicCacheName)
}

// Install fetches every core asset and stores it in the versioned cache.
// Any failure fails the whole install; a partially warmed cache is left in
// place and retried on the next install.
func (w *Worker) Install(ctx context.Context) error {
	if err := os.MkdirAll(w.versionDir(), 0700); err != nil {
		return apperrors.Persistencef("failed to create cache directory: %v", err)
	}

	for _, asset := range w.assets {
		assetURL := w.baseURL + asset
		res, err := w.fetchNetwork(ctx, assetURL)
		if err != nil {
			return fmt.Errorf("failed to pre-cache %s: %w", asset, err)
		}
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to pre-cache %s: status %d", asset, res.StatusCode)
		}
		if err := w.put(w.versionDir(), assetURL, res); err != nil {
			return err
		}
	}
	return nil
}

// Activate removes caches left behind by other asset versions. The dynamic
// cache is kept.
func (w *Worker) Activate() error {
	entries, err := os.ReadDir(w.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.Persistencef("failed to read cache directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == w.version || name == dynamicCacheName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.dir, name)); err != nil {
			return apperrors.Persistencef("failed to evict stale cache %s: %v", name, err)
		}
		logger.Debug("Evicted stale asset cache", "name", name)
	}
	return nil
}

// Fetch resolves a request. Documents and API calls go network-first with a
// cache fallback; everything else is served from cache with a background
// refresh, falling back to the network. When both the network and the cache
// come up empty the caller gets a synthetic 503 rather than an error.
func (w *Worker) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if networkFirst(rawURL) {
		return w.fetchNetworkFirst(ctx, rawURL)
	}
	return w.fetchCacheFirst(ctx, rawURL)
}

// networkFirst reports whether the URL looks like a document or API call,
// which must be as fresh as the network allows.
func networkFirst(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	switch {
	case path == "" || strings.HasSuffix(path, "/"):
		return true
	case strings.HasSuffix(path, ".html"):
		return true
	case strings.Contains(path, "api"):
		return true
	}
	return false
}

func (w *Worker) fetchNetworkFirst(ctx context.Context, rawURL string) (*Result, error) {
	res, err := w.fetchNetwork(ctx, rawURL)
	if err == nil {
		if cacheErr := w.put(w.dynamicDir(), rawURL, res); cacheErr != nil {
			logger.Warn("Failed to cache response", "url", rawURL, "error", cacheErr)
		}
		return res, nil
	}

	if cached, ok := w.match(rawURL); ok {
		return cached, nil
	}
	return offlineResult(), nil
}

func (w *Worker) fetchCacheFirst(ctx context.Context, rawURL string) (*Result, error) {
	if cached, ok := w.match(rawURL); ok {
		w.refreshes.Add(1)
		go func() {
			defer w.refreshes.Done()
			w.refresh(rawURL)
		}()
		return cached, nil
	}

	res, err := w.fetchNetwork(ctx, rawURL)
	if err != nil {
		return offlineResult(), nil
	}
	if cacheable(rawURL) {
		if cacheErr := w.put(w.dynamicDir(), rawURL, res); cacheErr != nil {
			logger.Warn("Failed to cache response", "url", rawURL, "error", cacheErr)
		}
	}
	return res, nil
}

// refresh re-fetches a cached URL and updates the dynamic cache. Network
// errors are ignored; the cached copy keeps serving.
func (w *Worker) refresh(rawURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := w.fetchNetwork(ctx, rawURL)
	if err != nil {
		return
	}
	if err := w.put(w.dynamicDir(), rawURL, res); err != nil {
		logger.Warn("Failed to refresh cached asset", "url", rawURL, "error", err)
	}
}

// Wait blocks until in-flight background refreshes finish.
func (w *Worker) Wait() {
	w.refreshes.Wait()
}

func (w *Worker) fetchNetwork(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Source:      SourceNetwork,
	}, nil
}

func cacheable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func offlineResult() *Result {
	return &Result{
		StatusCode:  http.StatusServiceUnavailable,
		ContentType: "text/plain",
		Body:        []byte("Offline: Unable to fetch resource"),
		Source:      SourceSynthetic,
	}
}

func entryName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// put stores a response body and its content type under the given cache.
func (w *Worker) put(cacheDir, rawURL string, res *Result) error {
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return apperrors.Persistencef("failed to create cache directory: %v", err)
	}

	name := entryName(rawURL)
	meta := res.ContentType + "\n" + rawURL + "\n"
	if err := os.WriteFile(filepath.Join(cacheDir, name+".meta"), []byte(meta), 0600); err != nil {
		return apperrors.Persistencef("failed to write cache entry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, name+".body"), res.Body, 0600); err != nil {
		return apperrors.Persistencef("failed to write cache entry: %v", err)
	}
	return nil
}

// match looks a URL up in the versioned cache first, then the dynamic cache.
func (w *Worker) match(rawURL string) (*Result, bool) {
	for _, cacheDir := range []string{w.versionDir(), w.dynamicDir()} {
		name := entryName(rawURL)
		body, err := os.ReadFile(filepath.Join(cacheDir, name+".body"))
		if err != nil {
			continue
		}

		contentType := ""
		if meta, err := os.ReadFile(filepath.Join(cacheDir, name+".meta")); err == nil {
			lines := strings.SplitN(string(meta), "\n", 2)
			contentType = lines[0]
		}

		return &Result{
			StatusCode:  http.StatusOK,
			ContentType: contentType,
			Body:        body,
			Source:      SourceCache,
		}, true
	}
	return nil, false
}

// Status summarizes the on-disk cache.
type Status struct {
	Version      string
	StaticCount  int
	DynamicCount int
	TotalSize    int64
}

// Stat reports entry counts and total size for the current caches.
func (w *Worker) Stat() (Status, error) {
	st := Status{Version: w.version}

	count := func(dir string) (int, int64, error) {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		if err != nil {
			return 0, 0, apperrors.Persistencef("failed to read cache directory: %v", err)
		}
		n, size := 0, int64(0)
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".body") {
				continue
			}
			n++
			if info, err := entry.Info(); err == nil {
				size += info.Size()
			}
		}
		return n, size, nil
	}

	var err error
	var size int64
	if st.StaticCount, size, err = count(w.versionDir()); err != nil {
		return Status{}, err
	}
	st.TotalSize += size
	if st.DynamicCount, size, err = count(w.dynamicDir()); err != nil {
		return Status{}, err
	}
	st.TotalSize += size
	return st, nil
}

// Clean removes all cached assets, including the dynamic cache.
func (w *Worker) Clean() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return apperrors.Persistencef("failed to remove cache directory: %v", err)
	}
	return nil
}
