package provider

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// CachingTransport is an http.RoundTripper that keeps successful generation
// responses on disk, keyed by the SHA-256 of method, URL and request body.
// Resending the same diff then yields the same message without another API
// call. Non-POST requests and non-2xx responses bypass the cache, and cache
// I/O failures fall through to the inner transport.
type CachingTransport struct {
	inner http.RoundTripper
	dir   string
	ttl   time.Duration
	now   func() time.Time
}

// CacheOption configures a CachingTransport.
type CacheOption func(*CachingTransport)

// WithCacheTTL expires entries older than ttl. Zero keeps entries forever.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(t *CachingTransport) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// NewCachingTransport creates a CachingTransport storing entries under dir.
// If inner is nil, http.DefaultTransport is used.
func NewCachingTransport(dir string, inner http.RoundTripper, opts ...CacheOption) (*CachingTransport, error) {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	t := &CachingTransport{inner: inner, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type cacheEntry struct {
	StoredAt    time.Time `json:"stored_at"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
}

// RoundTrip implements http.RoundTripper.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return t.inner.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))

	path := t.entryPath(req, body)
	if entry, ok := t.load(path); ok {
		return entry.response(req), nil
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	t.store(path, cacheEntry{
		StoredAt:    t.now().UTC(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	})
	return resp, nil
}

func (t *CachingTransport) entryPath(req *http.Request, body []byte) string {
	h := sha256.New()
	_, _ = io.WriteString(h, req.Method+"\n"+req.URL.String()+"\n")
	_, _ = h.Write(body)
	return filepath.Join(t.dir, hex.EncodeToString(h.Sum(nil))+".json")
}

func (t *CachingTransport) load(path string) (cacheEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheEntry{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, false
	}
	if t.ttl > 0 && t.now().Sub(entry.StoredAt) > t.ttl {
		_ = os.Remove(path)
		return cacheEntry{}, false
	}
	return entry, true
}

// store writes through a temporary file so concurrent readers never see a
// partial entry.
func (t *CachingTransport) store(path string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	tmp, err := os.CreateTemp(t.dir, ".entry-*")
	if err != nil {
		return
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
	}
}

func (e cacheEntry) response(req *http.Request) *http.Response {
	header := http.Header{}
	if e.ContentType != "" {
		header.Set("Content-Type", e.ContentType)
	}
	return &http.Response{
		Status:        http.StatusText(e.StatusCode),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
