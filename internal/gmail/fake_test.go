package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

// fakeGmail serves canned JSON for Gmail REST paths and records requests.
type fakeGmail struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	calls  []string
	bodies map[string][]byte
}

func newFakeGmail(t *testing.T) *fakeGmail {
	return &fakeGmail{
		t:      t,
		routes: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		bodies: make(map[string][]byte),
	}
}

func (f *fakeGmail) handle(method, path string, fn func(w http.ResponseWriter, r *http.Request)) {
	f.routes[method+" /gmail/v1/users/me/"+path] = fn
}

func (f *fakeGmail) json(method, path, body string) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls = append(f.calls, key)
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		f.bodies[key] = data
	}
	f.mu.Unlock()

	fn, ok := f.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found: ` + key + `"}}`))
		return
	}
	fn(w, r)
}

func (f *fakeGmail) body(method, path string, into any) {
	f.t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.bodies[method+" /gmail/v1/users/me/"+path]
	require.True(f.t, ok, "no request recorded for %s %s", method, path)
	require.NoError(f.t, json.Unmarshal(data, into))
}

func (f *fakeGmail) client() *Client {
	f.t.Helper()
	srv := httptest.NewServer(f)
	f.t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), srv.Client(), "default", WithEndpoint(srv.URL+"/"))
	require.NoError(f.t, err)
	return c
}
