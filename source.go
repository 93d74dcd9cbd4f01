package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DataSource supplies listings. FetchAll returns the whole inventory;
// FetchOne returns a single listing or an error wrapping ErrNotFound.
type DataSource interface {
	FetchAll(ctx context.Context) ([]Property, error)
	FetchOne(ctx context.Context, id string) (Property, error)
}

// SourceConfig configures an HTTPSource.
type SourceConfig struct {
	ListURL   string        // GET returns every listing
	DetailURL string        // GET DetailURL+id returns one listing
	Timeout   time.Duration // Per-request timeout (default: 30s)
	CacheSize int           // Detail cache entries (default: 256)
	UserAgent string
}

// DefaultSourceConfig returns defaults for everything but the URLs.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Timeout:   30 * time.Second,
		CacheSize: 256,
		UserAgent: "listings/1.0",
	}
}

// HTTPSource fetches listings from a REST inventory API. Detail responses
// are kept in an LRU cache keyed by listing id.
type HTTPSource struct {
	config SourceConfig
	client *http.Client
	cache  *lru.Cache[string, Property]
}

// NewHTTPSource creates a source. client may be nil.
func NewHTTPSource(config SourceConfig, client *http.Client) (*HTTPSource, error) {
	if config.ListURL == "" {
		return nil, fmt.Errorf("list URL is required")
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultSourceConfig().CacheSize
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	cache, err := lru.New[string, Property](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail cache: %w", err)
	}

	return &HTTPSource{config: config, client: client, cache: cache}, nil
}

// FetchAll downloads the full inventory.
func (s *HTTPSource) FetchAll(ctx context.Context) ([]Property, error) {
	start := time.Now()

	var props []Property
	if err := s.get(ctx, s.config.ListURL, &props); err != nil {
		return nil, err
	}

	slog.Info("fetched listings",
		slog.Int("count", len(props)),
		slog.Duration("took", time.Since(start)))
	return props, nil
}

// FetchOne downloads a single listing, consulting the cache first.
func (s *HTTPSource) FetchOne(ctx context.Context, id string) (Property, error) {
	if p, ok := s.cache.Get(id); ok {
		slog.Debug("detail cache hit", slog.String("id", id))
		return p, nil
	}
	if s.config.DetailURL == "" {
		return Property{}, fmt.Errorf("%w: no detail URL configured", ErrFetchFailed)
	}

	var p Property
	if err := s.get(ctx, s.config.DetailURL+url.PathEscape(id), &p); err != nil {
		return Property{}, err
	}
	s.cache.Add(id, p)
	return p, nil
}

// CacheLen returns the number of cached detail responses.
func (s *HTTPSource) CacheLen() int { return s.cache.Len() }

// get performs a GET and decodes the (possibly enveloped) body into v.
func (s *HTTPSource) get(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.config.UserAgent != "" {
		req.Header.Set("User-Agent", s.config.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s returned %d", ErrFetchFailed, target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}
	if err := decodeEnvelope(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrFetchFailed, target, err)
	}
	return nil
}

// decodeEnvelope decodes body into v. The API answers either with the bare
// value or with {"data": value}; a missing or null "data" means bare.
func decodeEnvelope(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil &&
			len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			trimmed = env.Data
		}
	}
	return json.Unmarshal(trimmed, v)
}

// FileSource reads listings from JSON files in the same shape the HTTP API
// returns. Path is a file name or a doublestar pattern ("exports/**/*.json");
// matches are read in lexical order and concatenated. Files are read on
// every FetchAll.
type FileSource struct {
	Path string
}

// NewFileSource creates a source over path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Files resolves Path to the files it names. A plain path is returned as is,
// even if it does not exist yet.
func (s *FileSource) Files() ([]string, error) {
	if !strings.ContainsAny(s.Path, "*?[{") {
		return []string{s.Path}, nil
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(s.Path)) {
		return nil, fmt.Errorf("%w: invalid pattern %q", ErrFetchFailed, s.Path)
	}
	matches, err := doublestar.FilepathGlob(s.Path, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", ErrFetchFailed, s.Path)
	}
	sort.Strings(matches)
	return matches, nil
}

// FetchAll reads and decodes every file.
func (s *FileSource) FetchAll(ctx context.Context) ([]Property, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	var all []Property
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		var props []Property
		if err := decodeEnvelope(data, &props); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", ErrFetchFailed, path, err)
		}
		all = append(all, props...)
	}

	slog.Debug("read listing files",
		slog.Int("files", len(files)),
		slog.Int("count", len(all)))
	return all, nil
}

// FetchOne scans the files for the listing with the given id.
func (s *FileSource) FetchOne(ctx context.Context, id string) (Property, error) {
	props, err := s.FetchAll(ctx)
	if err != nil {
		return Property{}, err
	}
	for _, p := range props {
		if string(p.ID) == id {
			return p, nil
		}
	}
	return Property{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
