// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"strconv"

	"github.com/aws/aws-xray-sdk-go/header"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/asyncmon/xhrxray/errdesc"
	"github.com/asyncmon/xhrxray/xhr"
)

// Failure categories the telemetry backend groups request failures
// under. They are wire constants, not descriptions of this module.
const (
	categoryError   = "XMLHttpRequest error"
	categoryAbort   = "XMLHttpRequest abort"
	categoryTimeout = "XMLHttpRequest timeout"
)

// openWrapper tracks requests whose URL passes the filter. A request
// reconfigured by a later Open is re-filtered: the latest Open decides
// whether, and as what, the request is tracked.
func (p *Plugin) openWrapper(orig func(*xhr.Request, string, string, bool)) func(*xhr.Request, string, string, bool) {
	return func(req *xhr.Request, method, url string, async bool) {
		orig(req, method, url, async)
		if p.ctx.Config.Filter.Allowed(url) {
			p.store.put(req, &tracking{method: method, url: url, async: async})
		} else {
			p.store.take(req)
		}
	}
}

// sendWrapper is the OPENED to SENT transition: the only place
// listeners are attached. Untracked requests fall straight through.
func (p *Plugin) sendWrapper(orig func(*xhr.Request)) func(*xhr.Request) {
	return func(req *xhr.Request) {
		rec := p.store.get(req)
		if rec != nil {
			if p.tracingEnabled() && p.sessionRecorded() {
				rec.trace = beginTrace(p.ctx.Config.LogicalServiceName, rec.method, rec.url)
				if p.ctx.Config.AddXRayTraceIDHeader {
					req.SetRequestHeader(xray.TraceIDHeaderKey, downstreamHeader(rec.trace))
				}
			}
			req.On(xhr.Load, p.onLoad)
			req.On(xhr.ErrorEvent, p.onError)
			req.On(xhr.Abort, p.onAbort)
			req.On(xhr.Timeout, p.onTimeout)
		}
		orig(req)
	}
}

// downstreamHeader encodes the correlation header value propagated to
// the destination: the trace ID, the subsegment as the parent, and a
// positive sampling decision.
func downstreamHeader(t *XRayTraceEvent) string {
	h := header.Header{
		TraceID:          t.TraceID,
		ParentID:         t.Subsegments[0].ID,
		SamplingDecision: header.Sampled,
	}
	return h.String()
}

func (p *Plugin) onLoad(req *xhr.Request) {
	rec := p.store.take(req)
	if rec == nil {
		return
	}
	status := req.Status
	if rec.trace != nil {
		closeOK(rec.trace, status, req.ResponseHeader("Content-Length"))
		p.recordTrace(rec)
	}
	if p.ctx.Config.RecordAllRequests || !statusOK(status) {
		p.record(HTTPEventType, HTTPEvent{
			Version: httpEventVersion,
			Request: HTTPRequest{Method: rec.method, URL: rec.url},
			Response: &HTTPResponse{
				Status:     status,
				StatusText: req.StatusText,
			},
		}, rec.url)
	}
}

func (p *Plugin) onError(req *xhr.Request) {
	rec := p.store.take(req)
	if rec == nil {
		return
	}
	desc := networkFailure(req, p.ctx.Config.StackTraceLength)
	if rec.trace != nil {
		closeFailed(rec.trace, desc.Type, desc.Message)
		p.recordTrace(rec)
	}
	p.recordFailure(rec, desc)
}

func (p *Plugin) onAbort(req *xhr.Request) {
	p.finishWithCategory(req, categoryAbort)
}

func (p *Plugin) onTimeout(req *xhr.Request) {
	p.finishWithCategory(req, categoryTimeout)
}

// finishWithCategory handles the terminal outcomes for which the
// platform supplies no response metadata: the cause carries only the
// fixed category name.
func (p *Plugin) finishWithCategory(req *xhr.Request, category string) {
	rec := p.store.take(req)
	if rec == nil {
		return
	}
	if rec.trace != nil {
		closeFailed(rec.trace, category, "")
		p.recordTrace(rec)
	}
	p.recordFailure(rec, errdesc.Category(category, ""))
}

// recordTrace emits a finalized trace, or discards it if tracing was
// turned off or the session stopped being recorded since the trace was
// started. Discarded traces are not buffered or retried.
func (p *Plugin) recordTrace(rec *tracking) {
	if !p.tracingEnabled() || !p.sessionRecorded() {
		return
	}
	p.record(XRayTraceEventType, *rec.trace, rec.url)
}

// recordFailure emits the HTTP summary for a failed request. Summary
// emission on the failure paths is unconditional.
func (p *Plugin) recordFailure(rec *tracking, desc *errdesc.Descriptor) {
	p.record(HTTPEventType, HTTPEvent{
		Version: httpEventVersion,
		Request: HTTPRequest{Method: rec.method, URL: rec.url},
		Error:   desc,
	}, rec.url)
}

// networkFailure describes a network-level failure. When the facility
// reports an error value its text becomes the message; otherwise the
// status and status text, when present, are folded in.
func networkFailure(req *xhr.Request, stackDepth int) *errdesc.Descriptor {
	if req.Err != nil {
		desc := errdesc.Normalize(req.Err, stackDepth)
		desc.Type = categoryError
		return desc
	}
	message := strconv.Itoa(req.Status)
	if req.StatusText != "" {
		message += ": " + req.StatusText
	}
	return errdesc.Category(categoryError, message)
}

// statusOK reports whether status is in the 2xx success range. This is
// the sole success criterion; redirects the facility already followed
// are not distinguished.
func statusOK(status int) bool {
	return status >= 200 && status < 300
}
