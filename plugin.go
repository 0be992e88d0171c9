// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"errors"

	"github.com/asyncmon/xhrxray/seam"
	"github.com/asyncmon/xhrxray/urlfilter"
	"github.com/asyncmon/xhrxray/xhr"
)

// PluginID is the stable identifier this plugin reports to the
// telemetry client.
const PluginID = "xhr"

const (
	nilClientMsg = "xhrxray: nil client"
	notLoadedMsg = "xhrxray: plugin not loaded"
	noRecorderF  = "xhrxray: [WARN] no recorder, dropping %s for %s"
	defaultDepth = 200
)

// Recorder is the telemetry client's event sink. Record hands over one
// event payload tagged with its type; buffering and delivery are the
// recorder's business. Implementations must be safe for concurrent
// use.
type Recorder interface {
	Record(eventType string, payload any)
}

// Session is the sampling state of the current visit. Record reports
// whether the session was sampled in.
type Session struct {
	Record bool
}

// SessionProvider exposes the telemetry client's session management.
// GetSession may return nil, which is treated the same as a session
// that is not recorded.
type SessionProvider interface {
	GetSession() *Session
}

// Config holds the options this plugin recognizes. The surrounding
// telemetry client owns parsing and defaulting; the plugin reads the
// struct as given.
type Config struct {
	// EnableXRay turns distributed tracing on. Without it no trace is
	// started, no trace event recorded and no header injected.
	EnableXRay bool
	// RecordAllRequests records an HTTP summary event for successful
	// 2xx requests too; without it only non-2xx and failed requests
	// are summarized.
	RecordAllRequests bool
	// AddXRayTraceIDHeader injects the x-amzn-trace-id correlation
	// header on traced requests.
	AddXRayTraceIDHeader bool
	// LogicalServiceName names the root span of every trace.
	LogicalServiceName string
	// StackTraceLength caps the stack attached to normalized errors.
	StackTraceLength int
	// Filter gates which URLs are tracked. Nil tracks everything.
	Filter *urlfilter.Filter
}

// Context is everything the telemetry client hands the plugin at load
// time.
type Context struct {
	Recorder Recorder
	Sessions SessionProvider
	Config   Config
}

// Plugin intercepts an xhr.Client and records X-Ray trace events and
// HTTP summary events for the requests it sends.
type Plugin struct {
	client  *xhr.Client
	logger  Logger
	ctx     Context
	loaded  bool
	enabled bool
	patches seam.Patches
	store   *store
}

// New creates a plugin for the given facility. Logger is used to log
// anomalies the plugin encounters; nil is interpreted as NopLogger.
func New(client *xhr.Client, logger Logger) *Plugin {
	if client == nil {
		panic(nilClientMsg)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Plugin{
		client: client,
		logger: logger,
		store:  newStore(),
	}
}

// ID returns the plugin's stable identifier.
func (p *Plugin) ID() string {
	return PluginID
}

// Load receives the telemetry client's context: the event recorder,
// the session provider and the active configuration. Load must be
// called before Enable.
func (p *Plugin) Load(ctx Context) {
	p.ctx = ctx
	if p.ctx.Config.StackTraceLength == 0 {
		p.ctx.Config.StackTraceLength = defaultDepth
	}
	p.loaded = true
}

// Enable intercepts the facility's Open and Send operations. It fails
// if the plugin was not loaded or if either operation is absent, since
// partial instrumentation would be misleading. Enable is idempotent.
func (p *Plugin) Enable() error {
	if p.enabled {
		return nil
	}
	if !p.loaded {
		return errors.New(notLoadedMsg)
	}
	if err := seam.Install(&p.patches, &p.client.Open, p.openWrapper); err != nil {
		p.patches.Restore()
		return err
	}
	if err := seam.Install(&p.patches, &p.client.Send, p.sendWrapper); err != nil {
		p.patches.Restore()
		return err
	}
	p.enabled = true
	return nil
}

// Disable restores the original Open and Send operations. Requests
// already sent keep their listeners and finish being observed.
// Disable is idempotent.
func (p *Plugin) Disable() {
	if !p.enabled {
		return
	}
	p.patches.Restore()
	p.enabled = false
}

func (p *Plugin) tracingEnabled() bool {
	return p.ctx.Config.EnableXRay
}

func (p *Plugin) sessionRecorded() bool {
	if p.ctx.Sessions == nil {
		return false
	}
	s := p.ctx.Sessions.GetSession()
	return s != nil && s.Record
}

func (p *Plugin) record(eventType string, payload any, url string) {
	if p.ctx.Recorder == nil {
		p.logger.Printf(noRecorderF, eventType, url)
		return
	}
	p.ctx.Recorder.Record(eventType, payload)
}
