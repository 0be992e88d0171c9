// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command example wires the xhrxray plugin into a minimal telemetry
// client and prints every event the plugin records.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/asyncmon/xhrxray"
	"github.com/asyncmon/xhrxray/urlfilter"
	"github.com/asyncmon/xhrxray/xhr"
)

// printRecorder stands in for the telemetry client's event buffer.
type printRecorder struct{}

func (printRecorder) Record(eventType string, payload any) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n%s\n", eventType, b)
}

// recordedSession stands in for the telemetry client's session
// manager: every visit is sampled in.
type recordedSession struct{}

func (recordedSession) GetSession() *xhrxray.Session {
	return &xhrxray.Session{Record: true}
}

func main() {
	// Start a test server: success on /ok, a server error on anything
	// else.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, "Success!")
	}))
	defer server.Close()

	// Create the request facility and install the plugin.
	client := xhr.NewClient(xhr.WithHTTPClient(server.Client()))
	defer client.Close()

	logger := log.New(os.Stdout, "xhrxray", log.Ldate|log.Ltime)
	plugin := xhrxray.New(client, logger)
	plugin.Load(xhrxray.Context{
		Recorder: printRecorder{},
		Sessions: recordedSession{},
		Config: xhrxray.Config{
			EnableXRay:           true,
			AddXRayTraceIDHeader: true,
			LogicalServiceName:   "example",
			Filter:               urlfilter.MustNew(nil, []string{`/private`}),
		},
	})
	if err := plugin.Enable(); err != nil {
		log.Fatal(err)
	}

	// A 200: traced, but no HTTP summary since RecordAllRequests is
	// off.
	req := client.NewRequest()
	client.Open(req, "GET", server.URL+"/ok", false)
	client.Send(req)
	fmt.Printf("Status: %d\nBody:   %s\n", req.Status, req.Body)

	// A 500: traced and summarized.
	req = client.NewRequest()
	client.Open(req, "GET", server.URL+"/boom", false)
	client.Send(req)
	fmt.Printf("Status: %d\n", req.Status)

	// Filtered out: not observed at all.
	req = client.NewRequest()
	client.Open(req, "GET", server.URL+"/private", false)
	client.Send(req)
	fmt.Printf("Status: %d\n", req.Status)
}
