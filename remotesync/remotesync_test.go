package remotesync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/derktes/ir-remote/logging"
	"github.com/derktes/ir-remote/remote"
	"github.com/derktes/ir-remote/store"
)

var fastRetry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

func distributionServer(t *testing.T, configs map[string]remote.Config, order []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/configs", func(w http.ResponseWriter, r *http.Request) {
		list := make([]remote.Metadata, 0, len(order))
		for _, id := range order {
			list = append(list, remote.Metadata{ID: id, Name: id, Version: "1.0"})
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/api/configs/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/configs/")
		cfg, ok := configs[id]
		if !ok {
			http.Error(w, `{"error":"Config not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(cfg)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(url, time.Second, logging.Discard())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	c.SetRetry(fastRetry)
	return c
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.NewMemoryBackend(), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func remoteConfig(id string) remote.Config {
	return remote.Config{
		ID:       id,
		Name:     "Remote " + id,
		Protocol: 1,
		Header:   0x8890,
		Keys:     remote.Catalog{remote.NewKey("KEY_POWER", 1, "Power", remote.CategoryFunction)},
	}
}

func TestSyncAll(t *testing.T) {
	srv := distributionServer(t, map[string]remote.Config{
		"tv":  remoteConfig("tv"),
		"amp": remoteConfig("amp"),
	}, []string{"tv", "gone", "amp"})

	s := newStore(t)
	syncer := NewSyncer(newClient(t, srv.URL), s, logging.Discard())

	report, err := syncer.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report != (Report{Listed: 3, Saved: 2, Failed: 1}) {
		t.Fatalf("report = %+v", report)
	}
	for _, id := range []string{"tv", "amp"} {
		got, ok := s.Get(id)
		if !ok || got.Name != "Remote "+id || len(got.Keys) != 1 {
			t.Fatalf("Get(%s) = %+v, %v", id, got, ok)
		}
	}
}

func TestSyncAllEmptyListIsSuccess(t *testing.T) {
	srv := distributionServer(t, nil, nil)
	s := newStore(t)
	report, err := NewSyncer(newClient(t, srv.URL), s, logging.Discard()).SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report != (Report{}) {
		t.Fatalf("report = %+v", report)
	}
	if len(s.ListAll()) != 1 {
		t.Fatal("store changed")
	}
}

func TestSyncAllListingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSyncer(newClient(t, srv.URL), newStore(t), logging.Discard()).SyncAll(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want status 500", err)
	}
}

func TestSyncOneNotFound(t *testing.T) {
	srv := distributionServer(t, nil, nil)
	err := NewSyncer(newClient(t, srv.URL), newStore(t), logging.Discard()).SyncOne(context.Background(), "nope")
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Fatalf("err = %v, want ErrRemoteNotFound", err)
	}
}

func TestClientRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(remoteConfig("x"))
	}))
	defer srv.Close()

	cfg, err := newClient(t, srv.URL).FetchDefault(context.Background())
	if err != nil {
		t.Fatalf("FetchDefault: %v", err)
	}
	if cfg.ID != "x" || calls.Load() != 3 {
		t.Fatalf("cfg = %s after %d calls", cfg.ID, calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := newClient(t, srv.URL).Fetch(context.Background(), "x"); err == nil {
		t.Fatal("Fetch succeeded")
	}
	if calls.Load() != 1 {
		t.Fatalf("%d calls, want 1", calls.Load())
	}
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3000", "://nope"} {
		if _, err := NewHTTPClient(u, time.Second, logging.Discard()); err == nil {
			t.Errorf("NewHTTPClient(%q) accepted", u)
		}
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := WithRetry(ctx, fastRetry, func() error {
		calls++
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("err = %v after %d calls", err, calls)
	}
}

type countingFetcher struct {
	mu    sync.Mutex
	lists int
}

func (f *countingFetcher) ListMetadata(context.Context) ([]remote.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return nil, nil
}

func (f *countingFetcher) Fetch(context.Context, string) (remote.Config, error) {
	return remote.Config{}, errors.New("unused")
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func TestStartPeriodic(t *testing.T) {
	fetcher := &countingFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	NewSyncer(fetcher, newStore(t), logging.Discard()).StartPeriodic(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if fetcher.count() < 2 {
		t.Fatalf("periodic sync ran %d times", fetcher.count())
	}
}
