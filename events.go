// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import "github.com/asyncmon/xhrxray/errdesc"

const (
	// HTTPEventType tags HTTP summary events handed to the recorder.
	HTTPEventType = "com.asyncmon.http_event"
	// XRayTraceEventType tags X-Ray trace events handed to the recorder.
	XRayTraceEventType = "com.asyncmon.xray_trace_event"

	httpEventVersion = "1.0.0"
)

// XRayTraceEvent is the trace document for one logical request: a root
// span holding exactly one subsegment that describes the network call.
// Once both end times are set the document is immutable and is
// recorded at most once.
type XRayTraceEvent struct {
	Name        string        `json:"name,omitempty"`
	ID          string        `json:"id"`
	TraceID     string        `json:"trace_id"`
	StartTime   float64       `json:"start_time"`
	EndTime     *float64      `json:"end_time,omitempty"`
	Subsegments []*Subsegment `json:"subsegments"`
}

// Subsegment is the single child span describing the network call. Its
// name is the destination host.
type Subsegment struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	StartTime float64        `json:"start_time"`
	EndTime   *float64       `json:"end_time,omitempty"`
	Namespace string         `json:"namespace"`
	HTTP      SubsegmentHTTP `json:"http"`
	Error     bool           `json:"error,omitempty"`
	Cause     *Cause         `json:"cause,omitempty"`
}

// SubsegmentHTTP carries the request and, on success, response facets
// of the subsegment.
type SubsegmentHTTP struct {
	Request  RequestData   `json:"request"`
	Response *ResponseData `json:"response,omitempty"`
}

// RequestData describes the outgoing request inside a subsegment.
type RequestData struct {
	Method string `json:"method"`
	URL    string `json:"url,omitempty"`
	Traced bool   `json:"traced"`
}

// ResponseData describes a received response inside a subsegment.
// ContentLength is nil when the response did not declare a parseable,
// non-negative Content-Length.
type ResponseData struct {
	Status        int    `json:"status"`
	ContentLength *int64 `json:"content_length,omitempty"`
}

// Cause lists the exceptions behind a failed subsegment. This design
// produces exactly one.
type Cause struct {
	Exceptions []Exception `json:"exceptions"`
}

// Exception is one entry in a Cause. For abort and timeout outcomes
// only the fixed category type is present.
type Exception struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// HTTPEvent is the summary of one request. Exactly one of Response and
// Error is set: a response description for completed requests, an
// error description otherwise.
type HTTPEvent struct {
	Version  string              `json:"version"`
	Request  HTTPRequest         `json:"request"`
	Response *HTTPResponse       `json:"response,omitempty"`
	Error    *errdesc.Descriptor `json:"error,omitempty"`
}

// HTTPRequest identifies the summarized request.
type HTTPRequest struct {
	Method string `json:"method"`
	URL    string `json:"url,omitempty"`
}

// HTTPResponse summarizes a received response.
type HTTPResponse struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText,omitempty"`
}
