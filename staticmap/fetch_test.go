package staticmap

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = val
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetcher_Fetch(t *testing.T) {
	body := pngBytes(t, 4, 3)
	var hits atomic.Int32
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	cache := &memCache{}
	f := NewFetcher(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithCache(cache, time.Minute))
	req := Request{Center: LatLng{Lat: 40, Lng: -75}, Zoom: 4, Width: 4, Height: 3}

	img, err := f.FetchImage(context.Background(), req)
	if err != nil {
		t.Fatalf("FetchImage: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(4, 3) {
		t.Errorf("size = %v, want 4x3", got)
	}
	if want := "center=40,-75&zoom=4&size=4x3&maptype=roadmap&sensor=false"; gotQuery.Load() != want {
		t.Errorf("query = %v, want %q", gotQuery.Load(), want)
	}

	// Second fetch is served from the cache.
	data, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, body) {
		t.Error("cached body differs")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestFetcher_TooLargeNoNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	f := NewFetcher(WithBaseURL(srv.URL))
	_, err := f.Fetch(context.Background(), Request{Width: 1000, Height: 1000})
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("err = %v, want ErrImageTooLarge", err)
	}
	if hits.Load() != 0 {
		t.Error("request reached the server")
	}
}

func TestFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(WithBaseURL(srv.URL))
	_, err := f.Fetch(context.Background(), Request{Width: 10, Height: 10})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("err = %v, want ErrUnexpectedStatus", err)
	}
}

func TestFetcher_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewFetcher(WithBaseURL(srv.URL))
	if _, err := f.Fetch(ctx, Request{Width: 10, Height: 10}); err == nil {
		t.Fatal("Fetch succeeded after deadline")
	}
}

func TestFetcher_SharedDownloadSurvivesCallerCancel(t *testing.T) {
	body := pngBytes(t, 2, 2)
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	req := Request{Width: 2, Height: 2}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(firstCtx, req)
		firstErr <- err
	}()
	<-started

	type result struct {
		data []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		data, err := f.Fetch(context.Background(), req)
		second <- result{data, err}
	}()
	// Let the second caller join the in-flight download.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller err = %v, want context.Canceled", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second caller err = %v", got.err)
	}
	if !bytes.Equal(got.data, body) {
		t.Error("second caller body differs")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestFetcher_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xff}, 64))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr error
	}{
		{"over limit", 63, ErrBodyTooLarge},
		{"at limit", 64, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
			f.maxBody = tt.limit
			data, err := f.Fetch(context.Background(), Request{Width: 10, Height: 10})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && len(data) != 64 {
				t.Errorf("len(data) = %d, want 64", len(data))
			}
		})
	}
}

type countingObserver struct {
	fetches, errs, hits, misses atomic.Int32
}

func (o *countingObserver) ObserveFetch(_ time.Duration, err error) {
	o.fetches.Add(1)
	if err != nil {
		o.errs.Add(1)
	}
}

func (o *countingObserver) ObserveCache(hit bool) {
	if hit {
		o.hits.Add(1)
	} else {
		o.misses.Add(1)
	}
}

func TestFetcher_Observer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	obs := &countingObserver{}
	f := NewFetcher(WithBaseURL(srv.URL), WithCache(&memCache{}, 0), WithObserver(obs))
	req := Request{Width: 1, Height: 1}
	for range 3 {
		if _, err := f.Fetch(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if got := obs.fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if got := obs.misses.Load(); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := obs.hits.Load(); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
}
