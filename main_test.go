// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/asyncmon/xhrxray/xhr"
)

// fakeRecorder collects recorded events for inspection. It stands in
// for the telemetry client's event buffer.
type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	eventType string
	payload   any
}

func (r *fakeRecorder) Record(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{eventType, payload})
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *fakeRecorder) ofType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeSessions stands in for the telemetry client's session manager.
type fakeSessions struct {
	session *Session
}

func (s *fakeSessions) GetSession() *Session {
	return s.session
}

func sampledIn() *fakeSessions {
	return &fakeSessions{session: &Session{Record: true}}
}

func sampledOut() *fakeSessions {
	return &fakeSessions{session: &Session{Record: false}}
}

// fixture assembles a test server, an xhr client targeting it, and an
// enabled plugin recording into a fakeRecorder.
type fixture struct {
	server *httptest.Server
	client *xhr.Client
	rec    *fakeRecorder
	plugin *Plugin
}

func newFixture(t *testing.T, handler http.Handler, cfg Config, sessions SessionProvider, opts ...xhr.Option) *fixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]xhr.Option{xhr.WithHTTPClient(server.Client())}, opts...)
	client := xhr.NewClient(opts...)
	t.Cleanup(client.Close)

	rec := &fakeRecorder{}
	plugin := New(client, NopLogger{})
	plugin.Load(Context{Recorder: rec, Sessions: sessions, Config: cfg})
	if err := plugin.Enable(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(plugin.Disable)

	return &fixture{server: server, client: client, rec: rec, plugin: plugin}
}

// get opens and synchronously sends a GET to url, returning the
// request after its terminal listeners have run.
func (f *fixture) get(url string) *xhr.Request {
	req := f.client.NewRequest()
	f.client.Open(req, "GET", url, false)
	f.client.Send(req)
	return req
}

// okHandler serves a small 200 body on every path.
func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})
}

// statusHandler serves an empty response with the given status code.
func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// stallHandler blocks until the client gives up on the request.
func stallHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
}
