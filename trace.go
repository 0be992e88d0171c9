// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// now is the single epoch-seconds clock shared by every trace
// timestamp, so elapsed durations stay internally consistent.
// Overridable in tests.
var now = func() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// beginTrace opens a trace for a request: a root span named after the
// logical service, containing one in-progress subsegment named after
// the destination host.
func beginTrace(serviceName, method, rawurl string) *XRayTraceEvent {
	start := now()
	return &XRayTraceEvent{
		Name:      serviceName,
		ID:        xray.NewSegmentID(),
		TraceID:   xray.NewTraceID(),
		StartTime: start,
		Subsegments: []*Subsegment{
			{
				ID:        xray.NewSegmentID(),
				Name:      destinationHost(rawurl),
				StartTime: start,
				Namespace: "remote",
				HTTP: SubsegmentHTTP{
					Request: RequestData{
						Method: method,
						URL:    rawurl,
						Traced: true,
					},
				},
			},
		},
	}
}

// closeOK finalizes a trace for a completed request. contentLength is
// the raw Content-Length header value; it is attached only when it
// parses as a non-negative integer, since an absent or garbled header
// means the length is unknown, not zero.
func closeOK(t *XRayTraceEvent, status int, contentLength string) {
	end := now()
	sub := t.Subsegments[0]
	resp := &ResponseData{Status: status}
	if n, err := strconv.ParseInt(contentLength, 10, 64); err == nil && n >= 0 {
		resp.ContentLength = &n
	}
	sub.HTTP.Response = resp
	sub.EndTime = &end
	t.EndTime = &end
}

// closeFailed finalizes a trace for a request that ended in a network
// error, an abort, or a timeout.
func closeFailed(t *XRayTraceEvent, category, message string) {
	end := now()
	sub := t.Subsegments[0]
	sub.Error = true
	sub.Cause = &Cause{
		Exceptions: []Exception{
			{Type: category, Message: message},
		},
	}
	sub.EndTime = &end
	t.EndTime = &end
}

// destinationHost names the subsegment after the request target. If
// the URL does not parse, or carries no host, the raw string stands in
// so the subsegment is never anonymous.
func destinationHost(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return rawurl
	}
	return u.Host
}
