package microsoft

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// fakeUpstream serves every Microsoft, Xbox and Minecraft endpoint from one test server
type fakeUpstream struct {
	*httptest.Server
	mu       sync.Mutex
	calls    map[string]int
	auth     map[string][]string
	handlers map[string]http.HandlerFunc
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{
		calls:    map[string]int{},
		auth:     map[string][]string{},
		handlers: map[string]http.HandlerFunc{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.auth[r.URL.Path] = append(f.auth[r.URL.Path], r.Header.Get("Authorization"))
		h, ok := f.handlers[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

func (f *fakeUpstream) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeUpstream) authHeaders(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth[path]...)
}

func (f *fakeUpstream) client(opts ...Option) *MicrosoftClient {
	config := &oauth2.Config{
		ClientID: "test-client",
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: f.URL + "/devicecode",
			TokenURL:      f.URL + "/token",
		},
	}
	opts = append([]Option{
		WithEndpoints(Endpoints{
			XboxAuthenticate: f.URL + "/xbl",
			XSTSAuthorize:    f.URL + "/xsts",
			MinecraftLogin:   f.URL + "/login",
			Entitlements:     f.URL + "/entitlements",
			Profile:          f.URL + "/profile",
		}),
		WithXBLClient(f.Client()),
	}, opts...)
	return New(f.Client(), config, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respond(status int, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { writeJSON(w, status, v) }
}

// fakeClock advances instantly whenever the poll loop sleeps
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
