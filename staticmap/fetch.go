package staticmap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single download. Callers can give up sooner
// through their own context.
const DefaultTimeout = 10 * time.Second

// DefaultCacheTTL is how long fetched images stay in a ByteCache.
const DefaultCacheTTL = 24 * time.Hour

// maxBody caps the response size; a 2048x2048 PNG stays well below it.
const maxBody = 16 << 20

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = errors.New("staticmap: unexpected status")

// ErrBodyTooLarge is returned when a response exceeds the size cap.
var ErrBodyTooLarge = errors.New("staticmap: response too large")

// ByteCache stores fetched map images. Get reports a miss with a nil slice
// and nil error.
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Observer receives fetch outcomes. All methods may be called concurrently.
type Observer interface {
	ObserveFetch(d time.Duration, err error)
	ObserveCache(hit bool)
}

// Fetcher downloads static map images.
type Fetcher struct {
	client  *http.Client
	base    string
	creds   *Credentials
	cache   ByteCache
	ttl     time.Duration
	timeout time.Duration
	obs     Observer
	maxBody int64
	group   singleflight.Group
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) FetcherOption {
	return func(f *Fetcher) { f.base = base }
}

// WithCredentials enables premium requests.
func WithCredentials(c Credentials) FetcherOption {
	return func(f *Fetcher) { f.creds = &c }
}

// WithCache stores fetched images in c for ttl.
func WithCache(c ByteCache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithObserver reports fetch outcomes to o.
func WithObserver(o Observer) FetcherOption {
	return func(f *Fetcher) { f.obs = o }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  http.DefaultClient,
		base:    DefaultBaseURL,
		ttl:     DefaultCacheTTL,
		timeout: DefaultTimeout,
		maxBody: maxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Premium reports whether the fetcher signs requests.
func (f *Fetcher) Premium() bool {
	return f.creds != nil
}

// URL returns the request URL the fetcher would use.
func (f *Fetcher) URL(req Request) (string, error) {
	return req.URL(f.base, f.creds)
}

// Fetch returns the encoded image for req. Requests exceeding the tier
// limit fail before any network call. Concurrent fetches of the same URL
// share one download.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	u, err := f.URL(req)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("github.com/gogpu/heatmap/staticmap").Start(ctx, "staticmap.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("staticmap.width", req.Width),
		attribute.Int("staticmap.height", req.Height),
		attribute.Int("staticmap.zoom", req.Zoom),
	)

	key := cacheKey(u)
	if data := f.cached(ctx, key); data != nil {
		span.SetAttributes(attribute.Bool("staticmap.cache_hit", true))
		return data, nil
	}

	// The shared download outlives any single caller; each caller only
	// stops waiting on its own cancellation.
	ch := f.group.DoChan(key, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		start := time.Now()
		data, err := f.download(dctx, u)
		if f.obs != nil {
			f.obs.ObserveFetch(time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			if err := f.cache.Set(dctx, key, data, f.ttl); err != nil {
				span.RecordError(err)
			}
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		err := fmt.Errorf("staticmap: fetch: %w", ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
}

// FetchImage fetches and decodes the image for req.
func (f *Fetcher) FetchImage(ctx context.Context, req Request) (image.Image, error) {
	data, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("staticmap: decode: %w", err)
	}
	return img, nil
}

func (f *Fetcher) cached(ctx context.Context, key string) []byte {
	if f.cache == nil {
		return nil
	}
	data, err := f.cache.Get(ctx, key)
	hit := err == nil && len(data) > 0
	if f.obs != nil {
		f.obs.ObserveCache(hit)
	}
	if !hit {
		return nil
	}
	return data
}

func (f *Fetcher) download(ctx context.Context, u string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("staticmap: new request: %w", err)
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("staticmap: get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("staticmap: read body: %w", err)
	}
	if int64(len(data)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBody)
	}
	return data, nil
}

// cacheKey hashes the URL so signing keys never appear in cache keys.
func cacheKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return "staticmap:" + hex.EncodeToString(sum[:])
}
