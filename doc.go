// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package xhrxray is a telemetry-client plugin that adds AWS X-Ray trace
collection to the xhr asynchronous request facility.

The plugin intercepts the facility's Open and Send operations. Every
request to a URL accepted by the configured filter is tracked; when it
is sent, the plugin attaches listeners for the four terminal outcomes
(load, error, abort, timeout), starts an X-Ray trace for it, and may
inject the x-amzn-trace-id correlation header on the outgoing request.
When the terminal outcome arrives, the plugin finalizes the trace and
records an X-Ray trace event and/or an HTTP summary event through the
telemetry client's recorder, according to configuration and the
session sampling decision.

Install the plugin into a telemetry client:

	client := xhr.NewClient()
	plugin := xhrxray.New(client, nil)
	plugin.Load(xhrxray.Context{
		Recorder: recorder,         // the client's event buffer
		Sessions: sessions,         // the client's session manager
		Config: xhrxray.Config{
			EnableXRay:           true,
			AddXRayTraceIDHeader: true,
			LogicalServiceName:   "storefront",
		},
	})
	if err := plugin.Enable(); err != nil {
		// the facility's operations could not be intercepted
	}

Interception is strictly observational: requests resolve with the same
responses, errors and timing whether or not the plugin is enabled, the
optional correlation header aside.
*/
package xhrxray
