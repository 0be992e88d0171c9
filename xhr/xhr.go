// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package xhr provides an asynchronous HTTP request facility in the style
of the XMLHttpRequest interface: a request is configured with Open, put
on the wire with Send, and reports exactly one terminal outcome (load,
error, abort or timeout) to listeners registered on it.

Network transfers are performed by a robust httpx.Client. All listener
callbacks are delivered on a single dispatcher goroutine owned by the
Client, so listeners for the same request never run concurrently with
one another.

The Open and Send operations are exported function fields so that
instrumentation (for example the xhrxray telemetry plugin) can wrap
them and fall through to the originals without changing behavior
observable by callers.
*/
package xhr

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gogama/httpx"
	"github.com/gogama/httpx/request"
	"github.com/gogama/httpx/timeout"
)

const (
	nilRequestMsg   = "xhr: nil request"
	foreignRequest  = "xhr: request belongs to a different client"
	alreadySentMsg  = "xhr: request already sent"
	neverOpenedMsg  = "xhr: request was never opened"
	nilListenerMsg  = "xhr: nil listener"
	unknownEventMsg = "xhr: unknown event"
)

// Event identifies one of the terminal outcomes a sent request can
// report. Exactly one terminal event fires per sent request.
type Event int

const (
	// Load fires when a response was received, whatever its status code.
	Load Event = iota
	// ErrorEvent fires when the transfer failed at the network level.
	ErrorEvent
	// Abort fires when the request was withdrawn with Request.Abort.
	Abort
	// Timeout fires when the client's timeout elapsed before a response
	// arrived.
	Timeout

	numEvents
)

func (e Event) String() string {
	switch e {
	case Load:
		return "load"
	case ErrorEvent:
		return "error"
	case Abort:
		return "abort"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Listener receives the request whose terminal event fired.
type Listener func(*Request)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient directs the underlying httpx.Client to send requests
// through doer instead of the default HTTP client. Tests use this to
// target an httptest server.
func WithHTTPClient(doer *http.Client) Option {
	return func(c *Client) {
		c.hx.HTTPDoer = doer
	}
}

// WithTimeout bounds each sent request to d. A request still in flight
// when d elapses reports the Timeout event. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client is the shared request facility. The zero value is not usable;
// construct with NewClient and release the dispatcher with Close.
type Client struct {
	// Open configures req with a method, a URL, and the asynchronous
	// flag. Opening an already-opened request reconfigures it; the
	// latest call wins. Replaceable for instrumentation.
	Open func(req *Request, method, url string, async bool)

	// Send puts an opened request on the wire. Sending twice panics.
	// Replaceable for instrumentation.
	Send func(req *Request)

	hx      *httpx.Client
	timeout time.Duration

	cb        chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a Client and starts its dispatcher goroutine.
func NewClient(opts ...Option) *Client {
	c := &Client{
		hx:   &httpx.Client{},
		cb:   make(chan func(), 16),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		// Per-attempt ceiling above the overall deadline, so the
		// deadline alone decides when a request times out.
		c.hx.TimeoutPolicy = timeout.Fixed(2 * c.timeout)
	}
	c.Open = c.open
	c.Send = c.send
	go c.loop()
	return c
}

// Close stops the dispatcher goroutine. Terminal events of requests
// still in flight are dropped. Close is idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// NewRequest returns an unopened request bound to c.
func (c *Client) NewRequest() *Request {
	return &Request{
		client:    c,
		header:    make(http.Header),
		listeners: make(map[Event][]Listener),
		finished:  make(chan struct{}),
	}
}

func (c *Client) loop() {
	for {
		select {
		case fn := <-c.cb:
			fn()
		case <-c.done:
			return
		}
	}
}

// post hands fn to the dispatcher goroutine. It reports false if the
// client was closed before fn could be queued.
func (c *Client) post(fn func()) bool {
	select {
	case c.cb <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) open(r *Request, method, url string, async bool) {
	if r == nil {
		panic(nilRequestMsg)
	}
	if r.client != c {
		panic(foreignRequest)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Method = method
	r.URL = url
	r.Async = async
	r.opened = true
}

func (c *Client) send(r *Request) {
	if r == nil {
		panic(nilRequestMsg)
	}
	if r.client != c {
		panic(foreignRequest)
	}

	r.mu.Lock()
	if !r.opened {
		r.mu.Unlock()
		panic(neverOpenedMsg)
	}
	if r.sent {
		r.mu.Unlock()
		panic(alreadySentMsg)
	}
	r.sent = true

	var ctx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	r.cancel = cancel

	method, url, async := r.Method, r.URL, r.Async
	header := make(http.Header, len(r.header))
	for k, vs := range r.header {
		header[k] = append([]string(nil), vs...)
	}
	r.mu.Unlock()

	run := func() {
		p, err := request.NewPlanWithContext(ctx, method, url, nil)
		if err != nil {
			c.finish(r, ctx, nil, err)
			return
		}
		if p.Header == nil {
			p.Header = make(http.Header, len(header))
		}
		for k, vs := range header {
			p.Header[k] = vs
		}
		e, err := c.hx.Do(p)
		c.finish(r, ctx, e, err)
	}

	if async {
		go run()
		return
	}
	run()
	<-r.finished
}

// finish classifies the outcome, fills in the response fields, and
// delivers the terminal event on the dispatcher goroutine. It runs at
// most once per request, on the goroutine that executed the transfer.
func (c *Client) finish(r *Request, ctx context.Context, e *request.Execution, err error) {
	evt := Load
	switch {
	case r.isAborted():
		evt = Abort
	case ctx.Err() == context.DeadlineExceeded:
		evt = Timeout
	case err != nil:
		evt = ErrorEvent
	}
	r.cancel()

	if evt == Load && e != nil && e.Response != nil {
		r.Status = e.StatusCode()
		r.StatusText = http.StatusText(r.Status)
		r.Body = e.Body
		r.mu.Lock()
		r.respHeader = e.Response.Header
		r.mu.Unlock()
	} else if err != nil {
		r.Err = err
	}

	delivered := c.post(func() {
		r.dispatch(evt)
		close(r.finished)
	})
	if !delivered {
		// Client closed mid-flight: unblock a synchronous sender.
		close(r.finished)
	}
}

// Request is one in-flight or completed request. Status, StatusText,
// Body and Err are populated before the terminal event is delivered
// and must not be read until a listener fires (or, for a synchronous
// send, until Send returns).
type Request struct {
	Method string
	URL    string
	Async  bool

	// Status and StatusText describe the response after Load fires.
	Status     int
	StatusText string
	// Body holds the full response body after Load fires.
	Body []byte
	// Err holds the transport error after ErrorEvent fires.
	Err error

	client *Client

	mu         sync.Mutex
	header     http.Header
	respHeader http.Header
	listeners  map[Event][]Listener
	opened     bool
	sent       bool
	aborted    bool
	cancel     context.CancelFunc
	finished   chan struct{}
}

// On registers fn for the given terminal event. Listeners registered
// for the event that fires run in registration order on the client's
// dispatcher goroutine.
func (r *Request) On(evt Event, fn Listener) {
	if fn == nil {
		panic(nilListenerMsg)
	}
	if evt < 0 || evt >= numEvents {
		panic(unknownEventMsg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[evt] = append(r.listeners[evt], fn)
}

// SetRequestHeader adds a header to the outgoing request. It has no
// effect once the request has been sent.
func (r *Request) SetRequestHeader(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header.Set(key, value)
}

// RequestHeader returns the value set for an outgoing header.
func (r *Request) RequestHeader(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header.Get(key)
}

// ResponseHeader reads a response header. It returns the empty string
// before Load has fired or if the header is absent.
func (r *Request) ResponseHeader(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.respHeader == nil {
		return ""
	}
	return r.respHeader.Get(key)
}

// Abort withdraws an in-flight request. The request reports the Abort
// terminal event. Aborting a request that was never sent, or one that
// already completed, has no effect.
func (r *Request) Abort() {
	r.mu.Lock()
	cancel := r.cancel
	abort := r.sent && cancel != nil
	if abort {
		r.aborted = true
	}
	r.mu.Unlock()
	if abort {
		cancel()
	}
}

func (r *Request) isAborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

func (r *Request) dispatch(evt Event) {
	r.mu.Lock()
	fns := append([]Listener(nil), r.listeners[evt]...)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}
